package setlist

import (
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/samber/lo"
)

// Changes is the write set that turns one persisted setlist into another.
type Changes struct {
	Inserts []models.SetlistEntry // entries without an ID
	Deletes []string              // IDs no longer present
	Updates []models.SetlistEntry // persisted entries whose order, key or medley fields changed
}

// Empty reports whether there is nothing to write.
func (c Changes) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Deletes) == 0 && len(c.Updates) == 0
}

// Diff compares two versions of the same event's setlist and returns only the rows that differ.
//
// Unpersisted entries in after become inserts; persisted IDs missing from after become deletes; persisted
// entries whose mutable fields changed become updates. Unchanged rows are never rewritten.
func Diff(before, after Setlist) Changes {
	previous := lo.KeyBy(
		lo.Filter(before.entries, func(e models.SetlistEntry, _ int) bool { return e.IsPersisted() }),
		func(e models.SetlistEntry) string { return e.ID },
	)

	var c Changes
	kept := make(map[string]bool, len(after.entries))
	for _, e := range after.entries {
		if !e.IsPersisted() {
			c.Inserts = append(c.Inserts, e)
			continue
		}
		kept[e.ID] = true
		if old, ok := previous[e.ID]; !ok || changed(old, e) {
			c.Updates = append(c.Updates, e)
		}
	}

	for _, e := range before.entries {
		if e.IsPersisted() && !kept[e.ID] {
			c.Deletes = append(c.Deletes, e.ID)
		}
	}
	return c
}

func changed(a, b models.SetlistEntry) bool {
	return a.Order != b.Order ||
		a.KeyPlayed != b.KeyPlayed ||
		a.IsMedley != b.IsMedley ||
		a.MedleyGroup != b.MedleyGroup
}
