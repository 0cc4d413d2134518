package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// RenderSetlistTable prints the setlist with one row per entry.
func RenderSetlistTable(w io.Writer, s setlist.Setlist) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Song", "Key", "Medley"})
	for _, e := range s.Entries() {
		medley := ""
		if e.IsMedley {
			medley = text.FgCyan.Sprint(strconv.Itoa(e.MedleyGroup))
		}
		t.AppendRow(table.Row{e.Order, e.Song.Name, e.Key(), medley})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d songs", s.Len()), "", fmt.Sprintf("%d medleys", len(s.MedleyGroups()))})
	t.Render()
}

// RenderMedleysTable prints each medley group with its label.
func RenderMedleysTable(w io.Writer, groups []setlist.MedleyGroup) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Medley", "Songs", "Count"})
	for _, g := range groups {
		t.AppendRow(table.Row{g.Number, g.Label(), len(g.Entries)})
	}
	t.Render()
}

// RenderSongsTable prints the repertoire. plays may be nil.
func RenderSongsTable(w io.Writer, songs []*models.Song, plays map[string]int) {
	t := newTable(w)
	header := table.Row{"ID", "Name", "Key", "Author"}
	if plays != nil {
		header = append(header, "Plays")
	}
	t.AppendHeader(header)
	for _, s := range songs {
		row := table.Row{s.ID(), s.Name, s.OriginalKey, s.Author}
		if plays != nil {
			row = append(row, plays[s.ID()])
		}
		t.AppendRow(row)
	}
	t.Render()
}

// RenderEventsTable prints events; bands maps band IDs to names and may be nil.
func RenderEventsTable(w io.Writer, events []*models.Event, bands map[string]string) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Date", "Name", "Kind", "Band", "Leader"})
	for _, e := range events {
		t.AppendRow(table.Row{e.ID(), e.DateString(), e.Name, e.Kind.String(), bands[e.BandID], e.Leader})
	}
	t.Render()
}

// RenderBandsTable prints bands.
func RenderBandsTable(w io.Writer, bands []*models.Band) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Description"})
	for _, b := range bands {
		t.AppendRow(table.Row{b.ID(), b.Name, b.Description})
	}
	t.Render()
}

// RenderRosterTable prints an event's participants.
func RenderRosterTable(w io.Writer, participants []*models.Participant) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Instrument"})
	for _, p := range participants {
		t.AppendRow(table.Row{p.ID(), p.Name, p.Instrument})
	}
	t.Render()
}

// RenderTagsTable prints tags with a color swatch and how many songs carry each one.
func RenderTagsTable(w io.Writer, tags []*models.Tag, counts map[string]int) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Color", "Songs"})
	for _, tag := range tags {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(tag.Color)).Render("●")
		t.AppendRow(table.Row{tag.ID(), tag.Name, swatch + " " + tag.Color, counts[tag.ID()]})
	}
	t.Render()
}
