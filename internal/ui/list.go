package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/setlistx/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song *models.Song
}

func (i songItem) FilterValue() string { return i.song.Name }
func (i songItem) Title() string       { return i.song.Name }
func (i songItem) Description() string {
	desc := "no key"
	if i.song.OriginalKey != "" {
		desc = fmt.Sprintf("key %s", i.song.OriginalKey)
	}
	if i.song.Author != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Author)
	}
	return desc
}

func newSongList(songs []*models.Song, width, height int) list.Model {
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Add a song"
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("song", "songs")
	return l
}
