package setlist

import "errors"

var (
	// ErrDuplicateSong is returned when a song already has an entry in the event's setlist.
	ErrDuplicateSong = errors.New("song already in setlist")
	// ErrInvalidGroup is returned when a referenced medley group is not in use in the setlist.
	ErrInvalidGroup = errors.New("medley group does not exist")
	// ErrIndexOutOfRange is returned when a position falls outside [0, len).
	ErrIndexOutOfRange = errors.New("setlist index out of range")
	// ErrInvalidSetlist is returned by [Setlist.Validate] when an ordering or grouping invariant is broken.
	ErrInvalidSetlist = errors.New("invalid setlist")
)
