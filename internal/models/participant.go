package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/shared"
)

// Participant names a person playing at an event and, optionally, their instrument.
type Participant struct {
	Record
	EventID    string
	Name       string
	Instrument string
}

// NewParticipant creates an unsaved [Participant].
func NewParticipant(eventID, name, instrument string) *Participant {
	return &Participant{
		Record:     newRecord(),
		EventID:    eventID,
		Name:       strings.TrimSpace(name),
		Instrument: strings.TrimSpace(instrument),
	}
}

func (p *Participant) Validate() error {
	if p.EventID == "" {
		return fmt.Errorf("%w: participant event is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: participant name is required", shared.ErrInvalidInput)
	}
	return nil
}
