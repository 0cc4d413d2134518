// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Bands, songs and events support soft deletes via deleted_at timestamps and exclude deleted records from
// queries by default. Roster rows and setlist entries are owned by their event and are hard-deleted.
//
// Key Implementations:
//   - [BandRepository] : Band persistence with name lookups
//   - [SongRepository] : The shared repertoire; refuses to delete songs still used by a setlist
//   - [EventRepository] : Events filtered by band, date range and setlist contents
//   - [ParticipantRepository] : Per-event roster
//   - [SetlistRepository] : The event_songs join; loads a setlist and applies a [setlist.Changes] write set
//     in one transaction
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
