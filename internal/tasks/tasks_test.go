package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	tu "github.com/desertthunder/setlistx/internal/testing"
)

func events(t *testing.T) []*models.Event {
	t.Helper()
	specs := []struct{ id, band, name, day string }{
		{"e1", "b1", "Sunday service", "2025-02-23"},
		{"e2", "b2", "Youth night", "2025-03-05"},
		{"e3", "b1", "Easter", "2025-03-20"},
		{"e4", "b1", "Sunday service", "2025-04-06"},
	}
	out := make([]*models.Event, 0, len(specs))
	for _, s := range specs {
		e := tu.Event(t, s.band, s.name, s.day)
		e.SetID(s.id)
		out = append(out, e)
	}
	return out
}

func ids(events []*models.Event) string {
	var out []string
	for _, e := range events {
		out = append(out, e.ID())
	}
	return strings.Join(out, ",")
}

func TestFilterEvents(t *testing.T) {
	all := events(t)
	bands := map[string]string{"b1": "Worship Team", "b2": "Youth Band"}

	tests := []struct {
		name   string
		filter EventFilter
		want   string
	}{
		{"empty filter", EventFilter{}, "e1,e2,e3,e4"},
		{"search event name", EventFilter{Search: "SUNDAY"}, "e1,e4"},
		{"search band name", EventFilter{Search: "youth band"}, "e2"},
		{"band", EventFilter{BandID: "b1"}, "e1,e3,e4"},
		{"from inclusive", EventFilter{From: tu.MustDate(t, "2025-03-05")}, "e2,e3,e4"},
		{"to inclusive", EventFilter{To: tu.MustDate(t, "2025-03-20")}, "e1,e2,e3"},
		{"range and band", EventFilter{BandID: "b1", From: tu.MustDate(t, "2025-03-01"), To: tu.MustDate(t, "2025-03-31")}, "e3"},
		{"song events", EventFilter{SongEvents: map[string]bool{"e2": true, "e4": true}}, "e2,e4"},
		{"empty song events", EventFilter{SongEvents: map[string]bool{}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterEvents(all, bands, tt.filter))
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("nil band names", func(t *testing.T) {
		if got := ids(FilterEvents(all, nil, EventFilter{Search: "easter"})); got != "e3" {
			t.Errorf("expected e3, got %q", got)
		}
	})
}

func TestPartitionAndStats(t *testing.T) {
	all := events(t)
	now := time.Date(2025, 3, 20, 15, 0, 0, 0, time.Local)

	t.Run("Partition", func(t *testing.T) {
		upcoming, past := Partition(all, now)
		if ids(upcoming) != "e4" {
			t.Errorf("expected only e4 upcoming, got %q", ids(upcoming))
		}
		if ids(past) != "e1,e2,e3" {
			t.Errorf("an event today should count as past, got %q", ids(past))
		}
	})

	t.Run("Stats", func(t *testing.T) {
		got := Stats(all, now)
		want := EventStats{Total: 4, Upcoming: 1, ThisMonth: 2}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("StatsEmpty", func(t *testing.T) {
		if got := Stats(nil, now); got != (EventStats{}) {
			t.Errorf("expected zero stats, got %+v", got)
		}
	})
}

func TestSongStats(t *testing.T) {
	var songs []*models.Song
	for i, name := range []string{"Oceans", "amazing grace", "Way Maker", "Holy Spirit"} {
		s := models.NewSong(name, "")
		s.SetID(string(rune('a' + i)))
		songs = append(songs, s)
	}
	counts := map[string]int{"a": 3, "b": 5, "c": 3}

	got := SongStats(counts, songs, 0)
	var names []string
	for _, s := range got {
		names = append(names, s.Song.Name)
	}
	if strings.Join(names, ",") != "amazing grace,Oceans,Way Maker,Holy Spirit" {
		t.Errorf("unexpected ranking %v", names)
	}
	if got[3].Plays != 0 {
		t.Errorf("unplayed song should have 0 plays, got %d", got[3].Plays)
	}

	if limited := SongStats(counts, songs, 2); len(limited) != 2 {
		t.Errorf("expected 2 results, got %d", len(limited))
	}
}
