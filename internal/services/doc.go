// Package services composes the repositories with the setlist model.
//
// # Setlist Editing
//
// [SetlistService] runs every edit the same way: load the stored setlist, apply the value operation from
// package setlist, compute the [setlist.Changes] between the two versions and write only those rows in one
// transaction. The stored setlist is reloaded afterwards so callers always see persisted IDs.
//
// # Error Handling
//
// Domain errors pass through wrapped so callers can match them with errors.Is:
//   - [setlist.ErrDuplicateSong] : song already in the event
//   - [setlist.ErrInvalidGroup] : medley group does not exist
//   - [setlist.ErrIndexOutOfRange] : position outside the setlist
//   - [shared.ErrEventNotFound], [shared.ErrSongNotFound] : unknown IDs
//
// A failed edit leaves the stored setlist untouched.
package services
