package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSheetLoaded MsgKind = iota
	MsgSetlistSaved
	MsgCandidatesLoaded
)

type sheetLoaded struct {
	sheet formatter.Sheet
	err   error
}

type setlistSaved struct {
	setlist setlist.Setlist
	cursor  int
	status  string
	err     error
}

type candidatesLoaded struct {
	songs []*models.Song
	err   error
}

// sheetLoadedMsg is the constructor for [MsgSheetLoaded]
func sheetLoadedMsg(sheet formatter.Sheet, err error) Msg {
	return Msg{kind: MsgSheetLoaded, data: sheetLoaded{sheet, err}}
}

// setlistSavedMsg is the constructor for [MsgSetlistSaved]. cursor is where the selection should land on success.
func setlistSavedMsg(s setlist.Setlist, cursor int, status string, err error) Msg {
	return Msg{kind: MsgSetlistSaved, data: setlistSaved{s, cursor, status, err}}
}

// candidatesLoadedMsg is the constructor for [MsgCandidatesLoaded]
func candidatesLoadedMsg(songs []*models.Song, err error) Msg {
	return Msg{kind: MsgCandidatesLoaded, data: candidatesLoaded{songs, err}}
}
