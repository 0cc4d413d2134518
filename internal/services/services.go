package services

import (
	"database/sql"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/repositories"
	"github.com/desertthunder/setlistx/internal/setlist"
)

// SetlistStore loads and persists one event's setlist.
type SetlistStore interface {
	// Load returns the stored setlist; an event without entries yields an empty setlist.
	Load(eventID string) (setlist.Setlist, error)

	// Edit passes the stored setlist to op and writes the resulting changes in one transaction. It returns
	// the saved setlist and the changes written; an op error comes back unchanged.
	Edit(eventID string, op func(setlist.Setlist) (setlist.Setlist, error)) (setlist.Setlist, setlist.Changes, error)
}

// Stores bundles the persistence dependencies of [SetlistService].
type Stores struct {
	Bands        models.Repository[*models.Band]
	Songs        models.Repository[*models.Song]
	Events       models.Repository[*models.Event]
	Participants models.Repository[*models.Participant]
	Setlists     SetlistStore
}

// SQLiteStores wires every store to the sqlite repositories.
func SQLiteStores(db *sql.DB) Stores {
	return Stores{
		Bands:        repositories.NewBandRepository(db),
		Songs:        repositories.NewSongRepository(db),
		Events:       repositories.NewEventRepository(db),
		Participants: repositories.NewParticipantRepository(db),
		Setlists:     repositories.NewSetlistRepository(db),
	}
}
