package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/setlistx/internal/shared"
)

// Song is a reusable repertoire entry.
//
// Songs are created independently of any event and are referenced, never owned, by setlist entries.
type Song struct {
	Record
	Name        string
	OriginalKey string
	Author      string
	Lyrics      string
}

// NewSong creates an unsaved [Song].
func NewSong(name, originalKey string) *Song {
	return &Song{Record: newRecord(), Name: strings.TrimSpace(name), OriginalKey: strings.TrimSpace(originalKey)}
}

// Validate requires a non-empty name.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: song name is required", shared.ErrInvalidInput)
	}
	return nil
}

// Ref returns the denormalized fields a [SetlistEntry] carries for this song.
func (s *Song) Ref() SongRef {
	return SongRef{ID: s.ID(), Name: s.Name, OriginalKey: s.OriginalKey}
}

// Label is the display name used in pickers, e.g. "Amazing Grace (G)".
func (s *Song) Label() string {
	if s.OriginalKey == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.OriginalKey)
}

// SongSort orders song listings.
type SongSort string

const (
	SortByName    SongSort = "name"    // alphabetical
	SortByKey     SongSort = "key"     // original key, then name
	SortByRecent  SongSort = "recent"  // newest first
	SortByPopular SongSort = "popular" // most setlist appearances first
)

// SongSorts lists every valid [SongSort].
var SongSorts = []SongSort{SortByName, SortByKey, SortByRecent, SortByPopular}

// ParseSongSort converts user input into a [SongSort]. Empty input yields [SortByName].
func ParseSongSort(s string) (SongSort, error) {
	if s == "" {
		return SortByName, nil
	}
	for _, sort := range SongSorts {
		if string(sort) == strings.ToLower(s) {
			return sort, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sort %q (want name, key, recent or popular)", shared.ErrInvalidArgument, s)
}
