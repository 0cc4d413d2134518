package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
)

// TagRepository implements models.Repository[*models.Tag] and manages the song_tags links.
type TagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new TagRepository with the given database connection
func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

const tagColumns = `id, sequence, name, color, created_at, updated_at, deleted_at`

// Create inserts a new tag. Names are unique among live tags, ignoring case.
func (r *TagRepository) Create(tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.requireUniqueName(tag.Name, ""); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "tags")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	tag.SetID(id)
	tag.SetSequence(sequence)

	query := `
		INSERT INTO tags (id, sequence, name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, id, sequence, tag.Name, tag.Color, tag.CreatedAt(), tag.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}
	return nil
}

// Get retrieves a tag by ID, excluding soft-deleted tags
func (r *TagRepository) Get(id string) (*models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE id = ? AND deleted_at IS NULL`
	tag, err := scanTag(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTagNotFound, id)
	}
	return tag, err
}

// FindByName retrieves a tag by case-insensitive name
func (r *TagRepository) FindByName(name string) (*models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE lower(name) = lower(?) AND deleted_at IS NULL LIMIT 1`
	tag, err := scanTag(r.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTagNotFound, name)
	}
	return tag, err
}

// Update renames or recolors an existing tag
func (r *TagRepository) Update(tag *models.Tag) error {
	if err := tag.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.requireUniqueName(tag.Name, tag.ID()); err != nil {
		return err
	}

	now := time.Now()
	tag.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE tags SET name = ?, color = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		tag.Name, tag.Color, now, tag.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrTagNotFound, tag.ID()))
}

// Delete soft-deletes a tag and detaches it from every song.
func (r *TagRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE tags SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if err := requireAffected(result, fmt.Errorf("%w: %s", shared.ErrTagNotFound, id)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM song_tags WHERE tag_id = ?`, id); err != nil {
		return fmt.Errorf("failed to detach tag: %w", err)
	}
	return tx.Commit()
}

// List retrieves all tags matching the given criteria, ordered by name.
//
// Supported criteria: "name" (case-insensitive substring), "song_id" (tags attached to that song).
func (r *TagRepository) List(criteria map[string]any) ([]*models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE deleted_at IS NULL`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += ` AND lower(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(name))
	}
	if songID, ok := criteria["song_id"].(string); ok && songID != "" {
		query += ` AND id IN (SELECT tag_id FROM song_tags WHERE song_id = ?)`
		args = append(args, songID)
	}

	query += " ORDER BY name COLLATE NOCASE ASC, sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tags, nil
}

// SongCounts maps each live tag ID to the number of live songs carrying it.
// Tags with no songs are absent from the map.
func (r *TagRepository) SongCounts() (map[string]int, error) {
	query := `
		SELECT st.tag_id, COUNT(*)
		FROM song_tags st
		JOIN songs s ON s.id = st.song_id AND s.deleted_at IS NULL
		JOIN tags t ON t.id = st.tag_id AND t.deleted_at IS NULL
		GROUP BY st.tag_id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to count tagged songs: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			tagID string
			count int
		)
		if err := rows.Scan(&tagID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count: %w", err)
		}
		counts[tagID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

// Attach labels a song with a tag. Attaching twice is a no-op.
func (r *TagRepository) Attach(songID, tagID string) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO song_tags (song_id, tag_id, created_at) VALUES (?, ?, ?)`,
		songID, tagID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to tag song: %w", err)
	}
	return nil
}

// Detach removes a tag from a song, reporting [shared.ErrTagNotFound] when the song did not carry it.
func (r *TagRepository) Detach(songID, tagID string) error {
	result, err := r.db.Exec(`DELETE FROM song_tags WHERE song_id = ? AND tag_id = ?`, songID, tagID)
	if err != nil {
		return fmt.Errorf("failed to untag song: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s is not tagged %s", shared.ErrTagNotFound, songID, tagID))
}

func (r *TagRepository) requireUniqueName(name, exceptID string) error {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM tags WHERE lower(name) = lower(?) AND id != ? AND deleted_at IS NULL`,
		name, exceptID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check tag name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", shared.ErrTagExists, name)
	}
	return nil
}

func scanTag(row scanner) (*models.Tag, error) {
	var (
		id, name, color      string
		sequence             int
		createdAt, updatedAt time.Time
		deletedAt            sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &color, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tag: %w", err)
	}

	tag := &models.Tag{Name: name, Color: color}
	tag.SetID(id)
	tag.SetSequence(sequence)
	tag.SetCreatedAt(createdAt)
	tag.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		tag.SetDeletedAt(&deletedAt.Time)
	}
	return tag, nil
}
