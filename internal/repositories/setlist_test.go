package repositories

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
	tu "github.com/desertthunder/setlistx/internal/testing"
)

func TestSetlistRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSetlistRepository(db)
	band := mustBand(t, db, "Band")
	event := mustEvent(t, db, band.ID(), "Sunday", "2025-03-02")
	grace := mustSong(t, db, "Amazing Grace", "G")
	oceans := mustSong(t, db, "Oceans", "D")
	holy := mustSong(t, db, "Holy Spirit", "E")

	apply := func(t *testing.T, before, after setlist.Setlist) setlist.Setlist {
		t.Helper()
		if err := repo.Apply(event.ID(), setlist.Diff(before, after)); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		loaded, err := repo.Load(event.ID())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if err := loaded.Validate(); err != nil {
			t.Fatalf("loaded setlist is invalid: %v", err)
		}
		return loaded
	}

	t.Run("LoadEmpty", func(t *testing.T) {
		s, err := repo.Load(event.ID())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if s.Len() != 0 || s.EventID() != event.ID() {
			t.Errorf("expected empty setlist for %s", event.ID())
		}
	})

	var current setlist.Setlist
	t.Run("AddPersistsInOrder", func(t *testing.T) {
		before, _ := repo.Load(event.ID())
		after, _, err := before.Add(grace.Ref(), setlist.AddOptions{KeyPlayed: "A"})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		after, _, _ = after.Add(oceans.Ref(), setlist.AddOptions{Medley: true})
		after, _, _ = after.Add(holy.Ref(), setlist.AddOptions{Medley: true, Group: 1})

		current = apply(t, before, after)
		entries := current.Entries()
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		for i, e := range entries {
			if e.ID == "" {
				t.Errorf("entry %d should have an ID after load", i)
			}
			if e.Order != i+1 {
				t.Errorf("entry %d: expected order %d, got %d", i, i+1, e.Order)
			}
		}
		if entries[0].KeyPlayed != "A" || entries[0].Song.Name != "Amazing Grace" || entries[0].Song.OriginalKey != "G" {
			t.Errorf("unexpected first entry %+v", entries[0])
		}
		if entries[0].IsMedley || entries[0].MedleyGroup != 0 {
			t.Errorf("first entry should not be in a medley")
		}
		if !entries[1].IsMedley || entries[1].MedleyGroup != 1 || entries[2].MedleyGroup != 1 {
			t.Errorf("expected entries 2 and 3 in medley 1")
		}
	})

	t.Run("MoveUpdatesTwoRows", func(t *testing.T) {
		after, err := current.Move(2, setlist.Up)
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		changes := setlist.Diff(current, after)
		if len(changes.Updates) != 2 || len(changes.Inserts) != 0 || len(changes.Deletes) != 0 {
			t.Fatalf("expected 2 updates, got %+v", changes)
		}

		current = apply(t, current, after)
		names := []string{}
		for _, e := range current.Entries() {
			names = append(names, e.Song.Name)
		}
		if names[1] != "Holy Spirit" || names[2] != "Oceans" {
			t.Errorf("unexpected order after move: %v", names)
		}
	})

	t.Run("RemoveRenumbers", func(t *testing.T) {
		after, err := current.Remove(0)
		if err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		current = apply(t, current, after)
		if current.Len() != 2 {
			t.Fatalf("expected 2 entries, got %d", current.Len())
		}
		first, _ := current.At(0)
		if first.Order != 1 || first.Song.Name != "Holy Spirit" {
			t.Errorf("expected Holy Spirit at order 1, got %+v", first)
		}
	})

	t.Run("ToggleOffClearsGroup", func(t *testing.T) {
		after, err := current.ToggleMedley(0, false, 0)
		if err != nil {
			t.Fatalf("ToggleMedley failed: %v", err)
		}
		current = apply(t, current, after)
		first, _ := current.At(0)
		if first.IsMedley || first.MedleyGroup != 0 {
			t.Errorf("expected medley cleared, got %+v", first)
		}
	})

	t.Run("EmptyChangesAreNoop", func(t *testing.T) {
		if err := repo.Apply(event.ID(), setlist.Changes{}); err != nil {
			t.Errorf("empty apply should succeed, got %v", err)
		}
	})

	t.Run("DuplicateSongRejectedByStore", func(t *testing.T) {
		dup := current.Entries()[0]
		dup.ID = ""
		dup.Order = 3
		err := repo.Apply(event.ID(), setlist.Changes{Inserts: []models.SetlistEntry{dup}})
		if err == nil {
			t.Error("expected unique constraint violation")
		}
	})

	t.Run("PlayCounts", func(t *testing.T) {
		later := mustEvent(t, db, band.ID(), "Later", "2025-06-01")
		empty := setlist.New(later.ID(), nil)
		withOceans, _, _ := empty.Add(oceans.Ref(), setlist.AddOptions{})
		if err := repo.Apply(later.ID(), setlist.Diff(empty, withOceans)); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		all, err := repo.PlayCounts(time.Time{})
		if err != nil {
			t.Fatalf("PlayCounts failed: %v", err)
		}
		if all[oceans.ID()] != 2 || all[holy.ID()] != 1 || all[grace.ID()] != 0 {
			t.Errorf("unexpected counts %v", all)
		}

		early, err := repo.PlayCounts(tu.MustDate(t, "2025-04-01"))
		if err != nil {
			t.Fatalf("PlayCounts failed: %v", err)
		}
		if early[oceans.ID()] != 1 {
			t.Errorf("expected 1 play before April, got %d", early[oceans.ID()])
		}
	})
}

func TestSetlistRepositoryEdit(t *testing.T) {
	t.Run("writes the diff and returns saved entries", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSetlistRepository(db)
		band := mustBand(t, db, "Band")
		event := mustEvent(t, db, band.ID(), "Sunday", "2025-03-02")
		grace := mustSong(t, db, "Amazing Grace", "G")

		saved, changes, err := repo.Edit(event.ID(), func(s setlist.Setlist) (setlist.Setlist, error) {
			next, _, err := s.Add(grace.Ref(), setlist.AddOptions{})
			return next, err
		})
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		if len(changes.Inserts) != 1 {
			t.Errorf("expected one insert, got %+v", changes)
		}
		if first, _ := saved.At(0); first.ID == "" {
			t.Error("saved entry should carry its ID")
		}
	})

	t.Run("op error writes nothing", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSetlistRepository(db)
		band := mustBand(t, db, "Band")
		event := mustEvent(t, db, band.ID(), "Sunday", "2025-03-02")

		_, changes, err := repo.Edit(event.ID(), func(s setlist.Setlist) (setlist.Setlist, error) {
			return s.Remove(0)
		})
		if !errors.Is(err, setlist.ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange, got %v", err)
		}
		if !changes.Empty() {
			t.Errorf("expected no changes, got %+v", changes)
		}
	})

	t.Run("concurrent edits on a file database stay contiguous", func(t *testing.T) {
		db, err := shared.OpenDatabase(shared.DatabaseConfig{
			Path:         filepath.Join(t.TempDir(), "setlistx.db"),
			MaxOpenConns: 4,
		})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { db.Close() })

		repo := NewSetlistRepository(db)
		band := mustBand(t, db, "Band")
		event := mustEvent(t, db, band.ID(), "Sunday", "2025-03-02")

		var songs []*models.Song
		for i := range 8 {
			songs = append(songs, mustSong(t, db, fmt.Sprintf("Song %d", i), ""))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(songs))
		for _, song := range songs {
			wg.Add(1)
			go func(ref models.SongRef) {
				defer wg.Done()
				_, _, err := repo.Edit(event.ID(), func(s setlist.Setlist) (setlist.Setlist, error) {
					next, _, err := s.Add(ref, setlist.AddOptions{})
					return next, err
				})
				errs <- err
			}(song.Ref())
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent Edit failed: %v", err)
			}
		}

		s, err := repo.Load(event.ID())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if s.Len() != len(songs) {
			t.Fatalf("expected %d entries, got %d", len(songs), s.Len())
		}
		if err := s.Validate(); err != nil {
			t.Errorf("orders are not contiguous: %v", err)
		}
	})
}
