package services

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
)

// SetlistService edits event setlists through the stores.
type SetlistService struct {
	stores Stores
	logger *log.Logger
}

// NewSetlistService creates a SetlistService. A nil logger falls back to [log.Default].
func NewSetlistService(stores Stores, logger *log.Logger) *SetlistService {
	if logger == nil {
		logger = log.Default()
	}
	return &SetlistService{stores: stores, logger: shared.WithLogger(logger, "service", "setlist")}
}

// Get returns the event's setlist after confirming the event exists.
func (s *SetlistService) Get(eventID string) (setlist.Setlist, error) {
	if _, err := s.stores.Events.Get(eventID); err != nil {
		return setlist.Setlist{}, err
	}
	return s.stores.Setlists.Load(eventID)
}

// Detail loads the event together with its band, setlist and roster.
//
// A band that has since been deleted leaves Sheet.Band nil.
func (s *SetlistService) Detail(eventID string) (formatter.Sheet, error) {
	event, err := s.stores.Events.Get(eventID)
	if err != nil {
		return formatter.Sheet{}, err
	}

	band, err := s.stores.Bands.Get(event.BandID)
	if err != nil && !errors.Is(err, shared.ErrBandNotFound) {
		return formatter.Sheet{}, err
	}

	current, err := s.stores.Setlists.Load(eventID)
	if err != nil {
		return formatter.Sheet{}, err
	}

	participants, err := s.stores.Participants.List(map[string]any{"event_id": eventID})
	if err != nil {
		return formatter.Sheet{}, err
	}

	return formatter.Sheet{Event: event, Band: band, Setlist: current, Participants: participants}, nil
}

// Add appends an existing song to the event's setlist.
func (s *SetlistService) Add(eventID, songID string, opts setlist.AddOptions) (setlist.Setlist, error) {
	song, err := s.stores.Songs.Get(songID)
	if err != nil {
		return setlist.Setlist{}, err
	}
	return s.add(eventID, song, opts)
}

// CreateAndAdd saves a new song to the repertoire and appends it to the event's setlist.
//
// The event is checked first so a bad event ID never leaves an orphan song behind.
func (s *SetlistService) CreateAndAdd(eventID string, song *models.Song, opts setlist.AddOptions) (setlist.Setlist, error) {
	if _, err := s.stores.Events.Get(eventID); err != nil {
		return setlist.Setlist{}, err
	}
	if err := s.stores.Songs.Create(song); err != nil {
		return setlist.Setlist{}, fmt.Errorf("failed to create song: %w", err)
	}
	s.logger.Info("song created", "song", song.Name, "id", song.ID())
	return s.add(eventID, song, opts)
}

func (s *SetlistService) add(eventID string, song *models.Song, opts setlist.AddOptions) (setlist.Setlist, error) {
	return s.edit(eventID, "add", func(current setlist.Setlist) (setlist.Setlist, error) {
		next, entry, err := current.Add(song.Ref(), opts)
		if err == nil {
			s.logger.Debug("adding song", "event", eventID, "song", song.Name, "order", entry.Order, "medley", entry.MedleyGroup)
		}
		return next, err
	})
}

// Remove deletes the entry at index and renumbers the rest.
func (s *SetlistService) Remove(eventID string, index int) (setlist.Setlist, error) {
	return s.edit(eventID, "remove", func(current setlist.Setlist) (setlist.Setlist, error) {
		return current.Remove(index)
	})
}

// Move swaps the entry at index with its neighbour in the given direction.
func (s *SetlistService) Move(eventID string, index int, dir setlist.Direction) (setlist.Setlist, error) {
	return s.edit(eventID, "move", func(current setlist.Setlist) (setlist.Setlist, error) {
		return current.Move(index, dir)
	})
}

// ToggleMedley puts the entry at index into a medley group or takes it out.
//
// With on set, group [setlist.NewGroup] starts a fresh group.
func (s *SetlistService) ToggleMedley(eventID string, index int, on bool, group int) (setlist.Setlist, error) {
	return s.edit(eventID, "medley", func(current setlist.Setlist) (setlist.Setlist, error) {
		return current.ToggleMedley(index, on, group)
	})
}

// SetKey changes the key the entry at index is played in.
func (s *SetlistService) SetKey(eventID string, index int, keyPlayed string) (setlist.Setlist, error) {
	return s.edit(eventID, "key", func(current setlist.Setlist) (setlist.Setlist, error) {
		return current.SetKey(index, keyPlayed)
	})
}

// Candidates lists repertoire songs not yet in the event's setlist.
func (s *SetlistService) Candidates(eventID string) ([]*models.Song, error) {
	current, err := s.Get(eventID)
	if err != nil {
		return nil, err
	}
	songs, err := s.stores.Songs.List(nil)
	if err != nil {
		return nil, err
	}
	return current.Candidates(songs), nil
}

// Groups returns the event's medley groups in ascending group order.
func (s *SetlistService) Groups(eventID string) ([]setlist.MedleyGroup, error) {
	current, err := s.Get(eventID)
	if err != nil {
		return nil, err
	}
	return current.MedleyGroups(), nil
}

// edit applies op to the stored setlist and persists only the rows op changed.
//
// The load and the write share one transaction, so concurrent edits of an event never compute their
// changes from the same stale setlist.
func (s *SetlistService) edit(eventID, action string, op func(setlist.Setlist) (setlist.Setlist, error)) (setlist.Setlist, error) {
	if _, err := s.stores.Events.Get(eventID); err != nil {
		return setlist.Setlist{}, err
	}

	var rejected error
	saved, changes, err := s.stores.Setlists.Edit(eventID, func(before setlist.Setlist) (setlist.Setlist, error) {
		after, err := op(before)
		rejected = err
		return after, err
	})

	switch {
	case rejected != nil:
		s.logger.Warn("setlist edit rejected", "event", eventID, "action", action, "error", rejected)
		return saved, rejected
	case err != nil:
		s.logger.Error("failed to save setlist", "event", eventID, "action", action, "error", err)
		return saved, fmt.Errorf("failed to save setlist: %w", err)
	case changes.Empty():
		return saved, nil
	}

	s.logger.Info("setlist updated",
		"event", eventID, "action", action,
		"inserts", len(changes.Inserts), "updates", len(changes.Updates), "deletes", len(changes.Deletes),
	)
	return saved, nil
}
