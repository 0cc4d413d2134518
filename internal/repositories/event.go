package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
)

// EventRepository implements models.Repository[*models.Event].
//
// Event days are stored as YYYY-MM-DD text so range filters compare lexically.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository with the given database connection
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `e.id, e.sequence, e.band_id, e.name, e.event_date, e.kind, e.notes, e.youtube_link, e.leader,
	e.created_at, e.updated_at, e.deleted_at`

// Create inserts a new event with generated ID and sequence
func (r *EventRepository) Create(event *models.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "events")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	event.SetID(id)
	event.SetSequence(sequence)

	query := `
		INSERT INTO events (id, sequence, band_id, name, event_date, kind, notes, youtube_link, leader, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		id, sequence, event.BandID, event.Name, event.DateString(), string(event.Kind),
		event.Notes, event.YouTubeLink, event.Leader, event.CreatedAt(), event.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID, excluding soft-deleted events
func (r *EventRepository) Get(id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = ? AND e.deleted_at IS NULL`
	event, err := scanEvent(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrEventNotFound, id)
	}
	return event, err
}

// Update modifies an existing event
func (r *EventRepository) Update(event *models.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	event.SetUpdatedAt(now)

	query := `
		UPDATE events
		SET band_id = ?, name = ?, event_date = ?, kind = ?, notes = ?, youtube_link = ?, leader = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		event.BandID, event.Name, event.DateString(), string(event.Kind),
		event.Notes, event.YouTubeLink, event.Leader, now, event.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrEventNotFound, event.ID()))
}

// Delete soft-deletes an event by ID
func (r *EventRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE events SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrEventNotFound, id))
}

// List retrieves all events matching the given criteria, ordered by date then sequence.
//
// Supported criteria:
//   - "band_id" (string)
//   - "from", "to" (time.Time, inclusive calendar days)
//   - "song_id" (string): only events whose setlist contains the song
//   - "search" (string): case-insensitive substring of the event name or notes
//   - "descending" (bool): newest first
func (r *EventRepository) List(criteria map[string]any) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.deleted_at IS NULL`
	args := []any{}

	if bandID, ok := criteria["band_id"].(string); ok && bandID != "" {
		query += " AND e.band_id = ?"
		args = append(args, bandID)
	}
	if from, ok := criteria["from"].(time.Time); ok && !from.IsZero() {
		query += " AND e.event_date >= ?"
		args = append(args, from.Format(models.DateLayout))
	}
	if to, ok := criteria["to"].(time.Time); ok && !to.IsZero() {
		query += " AND e.event_date <= ?"
		args = append(args, to.Format(models.DateLayout))
	}
	if songID, ok := criteria["song_id"].(string); ok && songID != "" {
		query += " AND EXISTS (SELECT 1 FROM event_songs es WHERE es.event_id = e.id AND es.song_id = ?)"
		args = append(args, songID)
	}
	if search, ok := criteria["search"].(string); ok && search != "" {
		query += ` AND (lower(e.name) LIKE ? ESCAPE '\' OR lower(e.notes) LIKE ? ESCAPE '\')`
		pattern := likePattern(search)
		args = append(args, pattern, pattern)
	}

	if desc, ok := criteria["descending"].(bool); ok && desc {
		query += " ORDER BY e.event_date DESC, e.sequence DESC"
	} else {
		query += " ORDER BY e.event_date ASC, e.sequence ASC"
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		id, bandID, name, date, kind string
		notes, youtubeLink, leader   string
		sequence                     int
		createdAt, updatedAt         time.Time
		deletedAt                    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &bandID, &name, &date, &kind, &notes, &youtubeLink, &leader,
		&createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	day, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event date: %w", err)
	}

	event := &models.Event{
		BandID:      bandID,
		Name:        name,
		Date:        day,
		Kind:        models.EventKind(kind),
		Notes:       notes,
		YouTubeLink: youtubeLink,
		Leader:      leader,
	}
	event.SetID(id)
	event.SetSequence(sequence)
	event.SetCreatedAt(createdAt)
	event.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		event.SetDeletedAt(&deletedAt.Time)
	}
	return event, nil
}
