package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/services"
	"github.com/desertthunder/setlistx/internal/setlist"
	tu "github.com/desertthunder/setlistx/internal/testing"
)

type fixture struct {
	model *Model
	svc   *services.SetlistService
	event *models.Event
	songs []*models.Song
}

func setup(t *testing.T, inSetlist int) *fixture {
	t.Helper()

	db := tu.MustOpenDB(t)
	stores := services.SQLiteStores(db)

	band := models.NewBand("Worship Team", "")
	if err := stores.Bands.Create(band); err != nil {
		t.Fatalf("failed to create band: %v", err)
	}
	event := tu.Event(t, band.ID(), "Sunday", "2025-03-02")
	if err := stores.Events.Create(event); err != nil {
		t.Fatalf("failed to create event: %v", err)
	}

	svc := services.NewSetlistService(stores, nil)
	var songs []*models.Song
	for i, name := range []string{"Amazing Grace", "Oceans", "Holy Spirit", "Way Maker"} {
		song := models.NewSong(name, "G")
		if err := stores.Songs.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		songs = append(songs, song)
		if i < inSetlist {
			if _, err := svc.Add(event.ID(), song.ID(), setlist.AddOptions{}); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}
	}

	m := NewModel(svc, event.ID(), nil)
	run(t, m, m.Init())
	return &fixture{model: m, svc: svc, event: event, songs: songs}
}

// run executes cmd synchronously and feeds its message back into m.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		m.Update(msg)
	}
}

// press sends each key in turn, running any command it produces.
func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		run(t, m, cmd)
	}
}

func order(m *Model) string {
	var names []string
	for _, e := range m.setlist.Entries() {
		names = append(names, e.Song.Name)
	}
	return strings.Join(names, ",")
}

func TestModelLoad(t *testing.T) {
	t.Run("renders the setlist", func(t *testing.T) {
		f := setup(t, 2)
		view := f.model.View()
		for _, want := range []string{"Worship Team", "Sunday", "2025-03-02", "1. Amazing Grace (G)", "2. Oceans (G)"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("empty setlist", func(t *testing.T) {
		f := setup(t, 0)
		if view := f.model.View(); !strings.Contains(view, "No songs yet") {
			t.Errorf("view = %s", view)
		}
		press(t, f.model, "K", "d", "m")
		if f.model.err != nil {
			t.Errorf("edits on an empty setlist should be ignored, got %v", f.model.err)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		f := setup(t, 0)
		m := NewModel(f.svc, "missing", nil)
		run(t, m, m.Init())
		if m.err == nil || !strings.Contains(m.View(), "Error") {
			t.Errorf("expected load error, view = %s", m.View())
		}
	})
}

func TestModelNavigation(t *testing.T) {
	f := setup(t, 3)
	m := f.model

	press(t, m, "j", "j", "j")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", m.cursor)
	}
	press(t, m, "k", "k", "k")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestModelEdits(t *testing.T) {
	t.Run("move follows the entry", func(t *testing.T) {
		f := setup(t, 3)
		m := f.model

		press(t, m, "J")
		if got := order(m); got != "Oceans,Amazing Grace,Holy Spirit" {
			t.Errorf("after J = %s", got)
		}
		if m.cursor != 1 {
			t.Errorf("cursor = %d, want 1", m.cursor)
		}

		press(t, m, "K", "K")
		if got := order(m); got != "Amazing Grace,Oceans,Holy Spirit" {
			t.Errorf("after K K = %s", got)
		}
		if m.cursor != 0 {
			t.Errorf("cursor = %d, want 0", m.cursor)
		}
	})

	t.Run("remove last clamps cursor", func(t *testing.T) {
		f := setup(t, 3)
		m := f.model

		press(t, m, "j", "j", "d")
		if got := order(m); got != "Amazing Grace,Oceans" {
			t.Errorf("after d = %s", got)
		}
		if m.cursor != 1 {
			t.Errorf("cursor = %d, want 1", m.cursor)
		}
	})

	t.Run("medley grouping", func(t *testing.T) {
		f := setup(t, 3)
		m := f.model

		press(t, m, "m", "j", "M")
		groups := m.setlist.MedleyGroups()
		if len(groups) != 1 || groups[0].Label() != "Amazing Grace + Oceans" {
			t.Fatalf("groups = %+v", groups)
		}
		if view := m.View(); !strings.Contains(view, "Medley 1: Amazing Grace + Oceans") || !strings.Contains(view, "♪ medley 1") {
			t.Errorf("view missing medley rendering:\n%s", view)
		}

		press(t, m, "m")
		if e, _ := m.setlist.At(1); e.IsMedley {
			t.Error("m on a medley entry should remove it from the medley")
		}
	})

	t.Run("join without medley above keeps state", func(t *testing.T) {
		f := setup(t, 2)
		m := f.model
		before := order(m)

		press(t, m, "M")
		if !errors.Is(m.err, errNoMedleyAbove) {
			t.Errorf("err = %v, want errNoMedleyAbove", m.err)
		}
		press(t, m, "j", "M")
		if !errors.Is(m.err, errNoMedleyAbove) {
			t.Errorf("err = %v, want errNoMedleyAbove", m.err)
		}
		if order(m) != before {
			t.Errorf("setlist changed to %s", order(m))
		}
		if !strings.Contains(m.View(), "Error: the entry above is not in a medley") {
			t.Error("error should be shown in the footer")
		}
	})

	t.Run("edit key", func(t *testing.T) {
		f := setup(t, 1)
		m := f.model

		press(t, m, "e")
		if m.view != KeyView {
			t.Fatalf("view = %d, want KeyView", m.view)
		}
		press(t, m, "A", "b", "enter")
		if m.view != SetlistView {
			t.Errorf("view = %d, want SetlistView", m.view)
		}
		if e, _ := m.setlist.At(0); e.KeyPlayed != "Ab" {
			t.Errorf("KeyPlayed = %q, want Ab", e.KeyPlayed)
		}

		press(t, m, "e", "esc")
		if m.view != SetlistView {
			t.Error("esc should cancel key editing")
		}
	})
}

func TestModelPicker(t *testing.T) {
	t.Run("adds the selected candidate", func(t *testing.T) {
		f := setup(t, 2)
		m := f.model
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

		press(t, m, "a")
		if m.view != PickerView {
			t.Fatalf("view = %d, want PickerView", m.view)
		}
		if n := len(m.picker.Items()); n != 2 {
			t.Errorf("picker has %d items, want 2 candidates", n)
		}

		press(t, m, "enter")
		if m.view != SetlistView {
			t.Errorf("view = %d, want SetlistView", m.view)
		}
		if got := order(m); got != "Amazing Grace,Oceans,Holy Spirit" {
			t.Errorf("after add = %s", got)
		}
		if m.cursor != 2 {
			t.Errorf("cursor = %d, want 2", m.cursor)
		}
	})

	t.Run("esc returns without adding", func(t *testing.T) {
		f := setup(t, 1)
		m := f.model

		press(t, m, "a", "esc")
		if m.view != SetlistView || m.setlist.Len() != 1 {
			t.Errorf("view = %d len = %d", m.view, m.setlist.Len())
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		f := setup(t, 4)
		m := f.model

		press(t, m, "a")
		if m.view != SetlistView {
			t.Error("picker should not open without candidates")
		}
		if !strings.Contains(m.View(), "already in this setlist") {
			t.Errorf("view = %s", m.View())
		}
	})
}
