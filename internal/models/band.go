package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/shared"
)

// Band is a group that performs events.
type Band struct {
	Record
	Name        string
	Description string
}

// NewBand creates an unsaved [Band].
func NewBand(name, description string) *Band {
	return &Band{Record: newRecord(), Name: strings.TrimSpace(name), Description: description}
}

// Validate requires a non-empty name.
func (b *Band) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: band name is required", shared.ErrInvalidInput)
	}
	return nil
}
