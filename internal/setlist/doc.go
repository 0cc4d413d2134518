// Package setlist implements the ordered, optionally medley-grouped sequence of songs attached to one event.
//
// A [Setlist] is a value: every operation validates its input first, then returns a new Setlist and leaves
// the receiver untouched. Nothing in this package performs I/O; callers load entries, apply an operation,
// compute the write set with [Diff], and persist it.
//
// # Ordering
//
// Each entry's Order field is authoritative. Settled setlists are numbered 1..n with no gaps or duplicates,
// and on-screen position is always derived by sorting on Order. [Setlist.Move] swaps two Order values
// instead of re-inserting, so a move touches exactly two rows.
//
// # Medleys
//
// Entries performed back-to-back share a MedleyGroup number scoped to the event. A new group is always
// numbered one above the highest group in use. Removing entries never renumbers groups, so a medley may be
// left with a single member.
package setlist
