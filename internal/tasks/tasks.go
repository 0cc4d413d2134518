// package tasks implements event reports and bulk setlist exports.
package tasks

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/samber/lo"
)

// EventFilter narrows an event list. Zero fields match everything.
type EventFilter struct {
	Search string    // case-insensitive substring of the event or band name
	BandID string    // exact band
	From   time.Time // inclusive first day
	To     time.Time // inclusive last day

	// SongEvents restricts results to these event IDs (events whose setlist contains a chosen song).
	// nil disables the restriction; an empty non-nil set matches nothing.
	SongEvents map[string]bool
}

// FilterEvents returns the events matching f, preserving input order.
//
// bandNames maps band IDs to names so searches can match the band too; it may be nil.
func FilterEvents(events []*models.Event, bandNames map[string]string, f EventFilter) []*models.Event {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	from, to := models.Day(f.From), models.Day(f.To)

	return lo.Filter(events, func(e *models.Event, _ int) bool {
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(bandNames[e.BandID]), search) {
			return false
		}
		if f.BandID != "" && e.BandID != f.BandID {
			return false
		}
		day := models.Day(e.Date)
		if !f.From.IsZero() && day.Before(from) {
			return false
		}
		if !f.To.IsZero() && day.After(to) {
			return false
		}
		if f.SongEvents != nil && !f.SongEvents[e.ID()] {
			return false
		}
		return true
	})
}

// Partition splits events into those after today and the rest (today counts as past).
func Partition(events []*models.Event, now time.Time) (upcoming, past []*models.Event) {
	return lo.FilterReject(events, func(e *models.Event, _ int) bool { return e.IsUpcoming(now) })
}

// EventStats are the dashboard counters.
type EventStats struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	ThisMonth int `json:"this_month"`
}

// Stats counts all events, those after today, and those in the calendar month containing now.
func Stats(events []*models.Event, now time.Time) EventStats {
	return EventStats{
		Total:    len(events),
		Upcoming: lo.CountBy(events, func(e *models.Event) bool { return e.IsUpcoming(now) }),
		ThisMonth: lo.CountBy(events, func(e *models.Event) bool {
			return e.Date.Year() == now.Year() && e.Date.Month() == now.Month()
		}),
	}
}

// SongStat pairs a song with how many events it has been played at.
type SongStat struct {
	Song  *models.Song `json:"song"`
	Plays int          `json:"plays"`
}

// SongStats ranks songs by play count, most played first, ties broken by name.
//
// Songs never played are included with zero plays. A positive limit truncates the result.
func SongStats(playCounts map[string]int, songs []*models.Song, limit int) []SongStat {
	stats := lo.Map(songs, func(s *models.Song, _ int) SongStat {
		return SongStat{Song: s, Plays: playCounts[s.ID()]}
	})

	slices.SortStableFunc(stats, func(a, b SongStat) int {
		if c := cmp.Compare(b.Plays, a.Plays); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Song.Name), strings.ToLower(b.Song.Name))
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}
