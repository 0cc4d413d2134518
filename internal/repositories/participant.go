package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
)

// ParticipantRepository implements models.Repository[*models.Participant].
//
// Roster rows belong to their event: they have no sequence and are deleted outright.
type ParticipantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new ParticipantRepository with the given database connection
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create inserts a new participant with a generated ID
func (r *ParticipantRepository) Create(p *models.Participant) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	p.SetID(id)

	query := `
		INSERT INTO event_participants (id, event_id, name, instrument, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, id, p.EventID, p.Name, p.Instrument, p.CreatedAt(), p.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// Get retrieves a participant by ID
func (r *ParticipantRepository) Get(id string) (*models.Participant, error) {
	query := `SELECT id, event_id, name, instrument, created_at, updated_at FROM event_participants WHERE id = ?`
	p, err := scanParticipant(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: participant %s", shared.ErrNotFound, id)
	}
	return p, err
}

// Update modifies an existing participant's name and instrument
func (r *ParticipantRepository) Update(p *models.Participant) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	p.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE event_participants SET name = ?, instrument = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Instrument, now, p.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: participant %s", shared.ErrNotFound, p.ID()))
}

// Delete removes a participant by ID
func (r *ParticipantRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM event_participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: participant %s", shared.ErrNotFound, id))
}

// List retrieves participants in insertion order.
//
// Supported criteria: "event_id" (string).
func (r *ParticipantRepository) List(criteria map[string]any) ([]*models.Participant, error) {
	query := `SELECT id, event_id, name, instrument, created_at, updated_at FROM event_participants`
	args := []any{}

	if eventID, ok := criteria["event_id"].(string); ok && eventID != "" {
		query += " WHERE event_id = ?"
		args = append(args, eventID)
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return participants, nil
}

func scanParticipant(row scanner) (*models.Participant, error) {
	var (
		id, eventID, name, instrument string
		createdAt, updatedAt          time.Time
	)

	err := row.Scan(&id, &eventID, &name, &instrument, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}

	p := &models.Participant{EventID: eventID, Name: name, Instrument: instrument}
	p.SetID(id)
	p.SetCreatedAt(createdAt)
	p.SetUpdatedAt(updatedAt)
	return p, nil
}
