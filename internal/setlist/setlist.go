package setlist

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/samber/lo"
)

// Direction is the way [Setlist.Move] shifts an entry.
type Direction int

const (
	Up Direction = iota
	Down
)

// ParseDirection converts "up" or "down" into a [Direction].
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "down", "d":
		return Down, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// NewGroup asks [Setlist.Add] or [Setlist.ToggleMedley] to mint a fresh medley group.
const NewGroup = 0

// AddOptions configures [Setlist.Add].
type AddOptions struct {
	KeyPlayed string
	Medley    bool
	Group     int // existing group to join; NewGroup mints one
}

// Setlist is the ordered sequence of entries for one event.
type Setlist struct {
	eventID string
	entries []models.SetlistEntry
}

// New builds a Setlist from entries in any order. Entries are copied and stably sorted by Order,
// since the store does not guarantee read order.
func New(eventID string, entries []models.SetlistEntry) Setlist {
	s := Setlist{eventID: eventID, entries: slices.Clone(entries)}
	s.sort()
	return s
}

// EventID returns the owning event.
func (s Setlist) EventID() string { return s.eventID }

// Len returns the number of entries.
func (s Setlist) Len() int { return len(s.entries) }

// Entries returns a copy of the entries in playback order.
func (s Setlist) Entries() []models.SetlistEntry { return slices.Clone(s.entries) }

// At returns the entry at index.
func (s Setlist) At(index int) (models.SetlistEntry, error) {
	if err := s.checkIndex(index); err != nil {
		return models.SetlistEntry{}, err
	}
	return s.entries[index], nil
}

// Contains reports whether songID already has an entry.
func (s Setlist) Contains(songID string) bool {
	return lo.ContainsBy(s.entries, func(e models.SetlistEntry) bool { return e.SongID == songID })
}

// Add appends song with Order one above the current maximum (1 when empty).
//
// A medley request with Group == NewGroup mints a group one above the highest in use; any other group must
// already exist. The returned entry is unpersisted.
func (s Setlist) Add(song models.SongRef, opts AddOptions) (Setlist, models.SetlistEntry, error) {
	if s.Contains(song.ID) {
		return s, models.SetlistEntry{}, fmt.Errorf("%w: %s", ErrDuplicateSong, songName(song))
	}

	group := 0
	if opts.Medley {
		g, err := s.resolveGroup(opts.Group)
		if err != nil {
			return s, models.SetlistEntry{}, err
		}
		group = g
	}

	entry := models.SetlistEntry{
		EventID:     s.eventID,
		SongID:      song.ID,
		Order:       s.maxOrder() + 1,
		KeyPlayed:   strings.TrimSpace(opts.KeyPlayed),
		IsMedley:    opts.Medley,
		MedleyGroup: group,
		Song:        song,
	}

	next := s.clone()
	next.entries = append(next.entries, entry)
	return next, entry, nil
}

// Remove deletes the entry at index and renumbers the rest 1..n, keeping their relative order.
// Medley group numbers are left as they are.
func (s Setlist) Remove(index int) (Setlist, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}
	next := s.clone()
	next.entries = slices.Delete(next.entries, index, index+1)
	return next.Renumber(), nil
}

// Move swaps the Order values of the entry at index and its neighbour in dir, then re-sorts.
// Moving the first entry up or the last entry down returns the setlist unchanged.
func (s Setlist) Move(index int, dir Direction) (Setlist, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}

	other := index - 1
	if dir == Down {
		other = index + 1
	}
	if other < 0 || other >= len(s.entries) {
		return s, nil
	}

	next := s.clone()
	next.entries[index].Order, next.entries[other].Order = next.entries[other].Order, next.entries[index].Order
	next.sort()
	return next, nil
}

// ToggleMedley marks or unmarks the entry at index as part of a medley.
//
// Turning it on with group == NewGroup mints a new group; any other group must already be in use.
// Turning it off clears the group whatever it was.
func (s Setlist) ToggleMedley(index int, on bool, group int) (Setlist, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}

	next := s.clone()
	entry := &next.entries[index]
	if !on {
		entry.IsMedley = false
		entry.MedleyGroup = 0
	} else {
		g, err := s.resolveGroup(group)
		if err != nil {
			return s, err
		}
		entry.IsMedley = true
		entry.MedleyGroup = g
	}

	if err := next.validateMedleys(); err != nil {
		return s, err
	}
	return next, nil
}

// SetKey changes the key the entry at index is performed in. An empty key falls back to the song's original.
func (s Setlist) SetKey(index int, keyPlayed string) (Setlist, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}
	next := s.clone()
	next.entries[index].KeyPlayed = strings.TrimSpace(keyPlayed)
	return next, nil
}

// Renumber assigns Order = position+1 to every entry. On a settled setlist this is the identity.
func (s Setlist) Renumber() Setlist {
	next := s.clone()
	for i := range next.entries {
		next.entries[i].Order = i + 1
	}
	return next
}

// Candidates filters songs down to those that can still be added.
func (s Setlist) Candidates(songs []*models.Song) []*models.Song {
	return lo.Filter(songs, func(song *models.Song, _ int) bool {
		return !s.Contains(song.ID())
	})
}

// Validate checks contiguous ordering, medley consistency and song uniqueness.
func (s Setlist) Validate() error {
	seen := make(map[string]bool, len(s.entries))
	for i, e := range s.entries {
		if e.Order != i+1 {
			return fmt.Errorf("%w: entry %d has order %d, want %d", ErrInvalidSetlist, i, e.Order, i+1)
		}
		if seen[e.SongID] {
			return fmt.Errorf("%w: song %s appears more than once", ErrInvalidSetlist, e.SongID)
		}
		seen[e.SongID] = true
	}
	return s.validateMedleys()
}

func (s Setlist) validateMedleys() error {
	for i, e := range s.entries {
		if e.IsMedley != (e.MedleyGroup != 0) {
			return fmt.Errorf("%w: entry %d medley flag %t with group %d", ErrInvalidSetlist, i, e.IsMedley, e.MedleyGroup)
		}
		if e.MedleyGroup < 0 {
			return fmt.Errorf("%w: entry %d has negative medley group %d", ErrInvalidSetlist, i, e.MedleyGroup)
		}
	}
	return nil
}

// resolveGroup returns the group number a medley request refers to.
func (s Setlist) resolveGroup(group int) (int, error) {
	if group == NewGroup {
		return s.maxGroup() + 1, nil
	}
	if !lo.Contains(s.groupNumbers(), group) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGroup, group)
	}
	return group, nil
}

func (s Setlist) checkIndex(index int) error {
	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.entries))
	}
	return nil
}

func (s Setlist) maxOrder() int {
	return lo.Max(lo.Map(s.entries, func(e models.SetlistEntry, _ int) int { return e.Order }))
}

func (s Setlist) maxGroup() int {
	return lo.Max(s.groupNumbers())
}

func (s Setlist) clone() Setlist {
	return Setlist{eventID: s.eventID, entries: slices.Clone(s.entries)}
}

func (s *Setlist) sort() {
	slices.SortStableFunc(s.entries, func(a, b models.SetlistEntry) int { return a.Order - b.Order })
}

func songName(song models.SongRef) string {
	if song.Name != "" {
		return song.Name
	}
	return song.ID
}
