package models

import (
	"encoding/json"
	"time"
)

// recordJSON is the wire form of [Record]; sequence and deletion are internal.
type recordJSON struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Record) toJSON() recordJSON {
	return recordJSON{ID: r.id, CreatedAt: r.createdAt, UpdatedAt: r.updatedAt}
}

func (b *Band) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		recordJSON
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}{b.toJSON(), b.Name, b.Description})
}

func (s *Song) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		recordJSON
		Name        string `json:"name"`
		OriginalKey string `json:"original_key,omitempty"`
		Author      string `json:"author,omitempty"`
		Lyrics      string `json:"lyrics,omitempty"`
	}{s.toJSON(), s.Name, s.OriginalKey, s.Author, s.Lyrics})
}

// MarshalJSON writes the event day as YYYY-MM-DD.
func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		recordJSON
		BandID      string    `json:"band_id"`
		Name        string    `json:"name"`
		Date        string    `json:"date"`
		Kind        EventKind `json:"kind"`
		Notes       string    `json:"notes,omitempty"`
		YouTubeLink string    `json:"youtube_link,omitempty"`
		Leader      string    `json:"leader,omitempty"`
	}{e.toJSON(), e.BandID, e.Name, e.DateString(), e.Kind, e.Notes, e.YouTubeLink, e.Leader})
}

func (p *Participant) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		recordJSON
		EventID    string `json:"event_id"`
		Name       string `json:"name"`
		Instrument string `json:"instrument,omitempty"`
	}{p.toJSON(), p.EventID, p.Name, p.Instrument})
}

func (t *Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		recordJSON
		Name  string `json:"name"`
		Color string `json:"color"`
	}{t.toJSON(), t.Name, t.Color})
}
