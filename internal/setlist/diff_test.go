package setlist

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	t.Run("add is a single insert", func(t *testing.T) {
		before := threeSongs()
		after, _, _ := before.Add(song("s4"), AddOptions{})

		c := Diff(before, after)
		if len(c.Inserts) != 1 || len(c.Updates) != 0 || len(c.Deletes) != 0 {
			t.Fatalf("unexpected changes %+v", c)
		}
		if c.Inserts[0].SongID != "s4" {
			t.Errorf("expected s4 inserted, got %s", c.Inserts[0].SongID)
		}
	})

	t.Run("move updates exactly two rows", func(t *testing.T) {
		before := threeSongs()
		after, _ := before.Move(0, Down)

		c := Diff(before, after)
		if len(c.Updates) != 2 || len(c.Inserts) != 0 || len(c.Deletes) != 0 {
			t.Fatalf("unexpected changes %+v", c)
		}
		ids := []string{c.Updates[0].ID, c.Updates[1].ID}
		if !reflect.DeepEqual(ids, []string{"e2", "e1"}) {
			t.Errorf("expected updates for e2 and e1, got %v", ids)
		}
	})

	t.Run("remove deletes and renumbers followers", func(t *testing.T) {
		before := threeSongs()
		after, _ := before.Remove(0)

		c := Diff(before, after)
		if !reflect.DeepEqual(c.Deletes, []string{"e1"}) {
			t.Errorf("expected e1 deleted, got %v", c.Deletes)
		}
		if len(c.Updates) != 2 {
			t.Errorf("expected 2 renumbered rows, got %d", len(c.Updates))
		}
	})

	t.Run("removing the last entry touches one row", func(t *testing.T) {
		before := threeSongs()
		after, _ := before.Remove(2)

		c := Diff(before, after)
		if len(c.Deletes) != 1 || len(c.Updates) != 0 {
			t.Errorf("unexpected changes %+v", c)
		}
	})

	t.Run("toggle updates one row", func(t *testing.T) {
		before := threeSongs()
		after, _ := before.ToggleMedley(1, true, NewGroup)

		c := Diff(before, after)
		if len(c.Updates) != 1 || c.Updates[0].ID != "e2" {
			t.Errorf("unexpected changes %+v", c)
		}
	})

	t.Run("no-op move is empty", func(t *testing.T) {
		before := threeSongs()
		after, _ := before.Move(0, Up)

		if c := Diff(before, after); !c.Empty() {
			t.Errorf("expected no changes, got %+v", c)
		}
	})
}
