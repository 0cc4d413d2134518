package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	remove     key.Binding
	medley     key.Binding
	joinMedley key.Binding
	add        key.Binding
	editKey    key.Binding
	enter      key.Binding
	back       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		moveUp:     key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		moveDown:   key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		remove:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		medley:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "medley on/off")),
		joinMedley: key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "join medley above")),
		add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add song")),
		editKey:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit key")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.add, k.medley, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.moveUp, k.moveDown},
		{k.add, k.remove, k.editKey},
		{k.medley, k.joinMedley, k.quit},
	}
}
