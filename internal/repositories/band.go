package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
)

// BandRepository implements models.Repository[*models.Band].
type BandRepository struct {
	db *sql.DB
}

// NewBandRepository creates a new BandRepository with the given database connection
func NewBandRepository(db *sql.DB) *BandRepository {
	return &BandRepository{db: db}
}

const bandColumns = `id, sequence, name, description, created_at, updated_at, deleted_at`

// Create inserts a new band with generated ID and sequence
func (r *BandRepository) Create(band *models.Band) error {
	if err := band.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "bands")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	band.SetID(id)
	band.SetSequence(sequence)

	query := `
		INSERT INTO bands (id, sequence, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, id, sequence, band.Name, band.Description, band.CreatedAt(), band.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert band: %w", err)
	}
	return nil
}

// Get retrieves a band by ID, excluding soft-deleted bands
func (r *BandRepository) Get(id string) (*models.Band, error) {
	query := `SELECT ` + bandColumns + ` FROM bands WHERE id = ? AND deleted_at IS NULL`
	band, err := scanBand(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrBandNotFound, id)
	}
	return band, err
}

// FindByName retrieves a band by case-insensitive name
func (r *BandRepository) FindByName(name string) (*models.Band, error) {
	query := `SELECT ` + bandColumns + ` FROM bands WHERE lower(name) = lower(?) AND deleted_at IS NULL ORDER BY sequence LIMIT 1`
	band, err := scanBand(r.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrBandNotFound, name)
	}
	return band, err
}

// Update modifies an existing band
func (r *BandRepository) Update(band *models.Band) error {
	if err := band.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	band.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE bands SET name = ?, description = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		band.Name, band.Description, now, band.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update band: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrBandNotFound, band.ID()))
}

// Delete soft-deletes a band by ID.
//
// A band with live events cannot be deleted; delete or move those events first.
func (r *BandRepository) Delete(id string) error {
	var events int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE band_id = ? AND deleted_at IS NULL`, id).Scan(&events); err != nil {
		return fmt.Errorf("failed to count band events: %w", err)
	}
	if events > 0 {
		return fmt.Errorf("%w: %s has %d event(s)", shared.ErrBandInUse, id, events)
	}

	result, err := r.db.Exec(`UPDATE bands SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete band: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrBandNotFound, id))
}

// List retrieves all bands matching the given criteria, ordered by name.
//
// Supported criteria: "name" (case-insensitive substring).
func (r *BandRepository) List(criteria map[string]any) ([]*models.Band, error) {
	query := `SELECT ` + bandColumns + ` FROM bands WHERE deleted_at IS NULL`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += ` AND lower(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(name))
	}

	query += " ORDER BY name COLLATE NOCASE ASC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bands: %w", err)
	}
	defer rows.Close()

	var bands []*models.Band
	for rows.Next() {
		band, err := scanBand(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, band)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return bands, nil
}

func scanBand(row scanner) (*models.Band, error) {
	var (
		id, name, description string
		sequence              int
		createdAt, updatedAt  time.Time
		deletedAt             sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &description, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan band: %w", err)
	}

	band := &models.Band{Name: name, Description: description}
	band.SetID(id)
	band.SetSequence(sequence)
	band.SetCreatedAt(createdAt)
	band.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		band.SetDeletedAt(&deletedAt.Time)
	}
	return band, nil
}
