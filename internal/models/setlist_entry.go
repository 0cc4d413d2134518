package models

// SongRef carries the song fields a setlist entry displays without a second lookup.
type SongRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OriginalKey string `json:"original_key,omitempty"`
}

// SetlistEntry places one song within one event's setlist.
//
// ID is empty until the entry has been persisted. MedleyGroup is 0 exactly when IsMedley is false;
// group numbers are scoped to the event, not global.
type SetlistEntry struct {
	ID          string  `json:"id,omitempty"`
	EventID     string  `json:"event_id"`
	SongID      string  `json:"song_id"`
	Order       int     `json:"order"`
	KeyPlayed   string  `json:"key_played,omitempty"`
	IsMedley    bool    `json:"is_medley"`
	MedleyGroup int     `json:"medley_group,omitempty"`
	Song        SongRef `json:"song"`
}

// Key returns the key the song is performed in: KeyPlayed when set, else the song's original key.
func (e SetlistEntry) Key() string {
	if e.KeyPlayed != "" {
		return e.KeyPlayed
	}
	return e.Song.OriginalKey
}

// IsPersisted reports whether the entry has a database identity.
func (e SetlistEntry) IsPersisted() bool { return e.ID != "" }
