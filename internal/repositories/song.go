package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/shared"
)

// SongRepository implements models.Repository[*models.Song].
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

const songColumns = `id, sequence, name, original_key, author, lyrics, created_at, updated_at, deleted_at`

// Create inserts a new song with generated ID and sequence
func (r *SongRepository) Create(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	song.SetID(id)
	song.SetSequence(sequence)

	query := `
		INSERT INTO songs (id, sequence, name, original_key, author, lyrics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		id, sequence, song.Name, song.OriginalKey, song.Author, song.Lyrics, song.CreatedAt(), song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`
	song, err := scanSong(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return song, err
}

// FindByName retrieves a song by case-insensitive name
func (r *SongRepository) FindByName(name string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE lower(name) = lower(?) AND deleted_at IS NULL ORDER BY sequence LIMIT 1`
	song, err := scanSong(r.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, name)
	}
	return song, err
}

// Update modifies an existing song
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET name = ?, original_key = ?, author = ?, lyrics = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, song.Name, song.OriginalKey, song.Author, song.Lyrics, now, song.ID())
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID()))
}

// Delete soft-deletes a song by ID.
//
// A song still placed in any setlist cannot be deleted; it must be removed from those events first.
func (r *SongRepository) Delete(id string) error {
	var uses int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM event_songs WHERE song_id = ?`, id).Scan(&uses); err != nil {
		return fmt.Errorf("failed to count song uses: %w", err)
	}
	if uses > 0 {
		return fmt.Errorf("%w: %s appears in %d setlist(s)", shared.ErrSongInUse, id, uses)
	}

	result, err := r.db.Exec(`UPDATE songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return requireAffected(result, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id))
}

// List retrieves all songs matching the given criteria, ordered by name unless "sort" says otherwise.
//
// Supported criteria: "name" (case-insensitive substring), "key" (case-insensitive original key),
// "tag_id" (songs carrying that tag), "sort" ([models.SongSort]), "limit" (int).
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += ` AND lower(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(name))
	}
	if key, ok := criteria["key"].(string); ok && key != "" {
		query += ` AND lower(original_key) = lower(?)`
		args = append(args, strings.TrimSpace(key))
	}
	if tagID, ok := criteria["tag_id"].(string); ok && tagID != "" {
		query += ` AND id IN (SELECT song_id FROM song_tags WHERE tag_id = ?)`
		args = append(args, tagID)
	}

	sort, _ := criteria["sort"].(models.SongSort)
	query += songOrder(sort)

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// songOrder returns the ORDER BY clause for sort; unknown values fall back to name order.
func songOrder(sort models.SongSort) string {
	switch sort {
	case models.SortByKey:
		return " ORDER BY original_key COLLATE NOCASE ASC, name COLLATE NOCASE ASC, sequence ASC"
	case models.SortByRecent:
		return " ORDER BY created_at DESC, sequence DESC"
	case models.SortByPopular:
		return ` ORDER BY (
			SELECT COUNT(*) FROM event_songs es
			JOIN events e ON e.id = es.event_id AND e.deleted_at IS NULL
			WHERE es.song_id = songs.id
		) DESC, name COLLATE NOCASE ASC, sequence ASC`
	default:
		return " ORDER BY name COLLATE NOCASE ASC, sequence ASC"
	}
}

func scanSong(row scanner) (*models.Song, error) {
	var (
		id, name, originalKey, author, lyrics string
		sequence                              int
		createdAt, updatedAt                  time.Time
		deletedAt                             sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &originalKey, &author, &lyrics, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := &models.Song{Name: name, OriginalKey: originalKey, Author: author, Lyrics: lyrics}
	song.SetID(id)
	song.SetSequence(sequence)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}
	return song, nil
}
