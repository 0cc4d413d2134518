// Package models defines domain entities and persistence interfaces for setlistx.
//
// The package contains two categories of types:
//
// 1. Persistent Entities: Database-backed models with full lifecycle management
//   - [Band] : A group that performs events
//   - [Song] : A reusable repertoire entry shared by every band
//   - [Event] : A scheduled performance or service with a date and a setlist
//   - [Participant] : A roster row naming who plays at an event and on what
//   - [Tag] : A colored label attached to any number of songs
//
// 2. Value Types: Plain structs passed between the setlist core and its callers
//   - [SetlistEntry] : One song's placement within one event's setlist (the event_songs join)
//   - [SongRef] : The denormalized song fields a setlist entry carries for display
//
// All persistent entities embed [Record] for ID, sequence, timestamps and soft delete support,
// and implement the [Model] interface. The [Repository] interface defines standard CRUD operations for database access.
package models
