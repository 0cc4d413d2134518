package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
	"github.com/desertthunder/setlistx/internal/shared"
)

// SetlistRepository persists the event_songs join rows that make up each event's setlist.
type SetlistRepository struct {
	db *sql.DB
}

// NewSetlistRepository creates a new SetlistRepository with the given database connection
func NewSetlistRepository(db *sql.DB) *SetlistRepository {
	return &SetlistRepository{db: db}
}

// Load reads an event's entries joined to their songs.
//
// Rows are fetched by song_order but [setlist.New] re-sorts them anyway. An event without entries yields an
// empty setlist, not an error.
func (r *SetlistRepository) Load(eventID string) (setlist.Setlist, error) {
	return loadSetlist(r.db, eventID)
}

// Apply writes a change set for one event in a single transaction.
//
// Deletes run first, then updates, then inserts. Any failure rolls back the whole set so the stored setlist
// is never left half-renumbered.
func (r *SetlistRepository) Apply(eventID string, changes setlist.Changes) error {
	if changes.Empty() {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyChanges(tx, eventID, changes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit setlist changes: %w", err)
	}
	return nil
}

// Edit loads the setlist, hands it to op and writes the difference, all in one transaction.
//
// Concurrent edits of the same event run one after another, so each op sees the previous edit's result.
// If op fails its error is returned unchanged together with the setlist op was given. On success Edit
// returns the re-read setlist, whose inserted entries carry their new IDs, and the changes it wrote.
func (r *SetlistRepository) Edit(eventID string, op func(setlist.Setlist) (setlist.Setlist, error)) (setlist.Setlist, setlist.Changes, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return setlist.Setlist{}, setlist.Changes{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	before, err := loadSetlist(tx, eventID)
	if err != nil {
		return setlist.Setlist{}, setlist.Changes{}, err
	}

	after, err := op(before)
	if err != nil {
		return before, setlist.Changes{}, err
	}

	changes := setlist.Diff(before, after)
	if changes.Empty() {
		return before, changes, nil
	}

	if err := applyChanges(tx, eventID, changes); err != nil {
		return before, setlist.Changes{}, err
	}
	saved, err := loadSetlist(tx, eventID)
	if err != nil {
		return before, setlist.Changes{}, err
	}

	if err := tx.Commit(); err != nil {
		return before, setlist.Changes{}, fmt.Errorf("failed to commit setlist changes: %w", err)
	}
	return saved, changes, nil
}

func loadSetlist(q querier, eventID string) (setlist.Setlist, error) {
	query := `
		SELECT es.id, es.event_id, es.song_id, es.song_order, es.key_played, es.is_medley, es.medley_group,
			s.name, s.original_key
		FROM event_songs es
		JOIN songs s ON s.id = es.song_id
		WHERE es.event_id = ?
		ORDER BY es.song_order ASC, es.created_at ASC
	`
	rows, err := q.Query(query, eventID)
	if err != nil {
		return setlist.Setlist{}, fmt.Errorf("failed to query setlist: %w", err)
	}
	defer rows.Close()

	var entries []models.SetlistEntry
	for rows.Next() {
		var (
			entry       models.SetlistEntry
			keyPlayed   sql.NullString
			medleyGroup sql.NullInt64
		)
		err := rows.Scan(
			&entry.ID, &entry.EventID, &entry.SongID, &entry.Order, &keyPlayed, &entry.IsMedley, &medleyGroup,
			&entry.Song.Name, &entry.Song.OriginalKey,
		)
		if err != nil {
			return setlist.Setlist{}, fmt.Errorf("failed to scan setlist entry: %w", err)
		}
		entry.Song.ID = entry.SongID
		entry.KeyPlayed = keyPlayed.String
		if medleyGroup.Valid {
			entry.MedleyGroup = int(medleyGroup.Int64)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return setlist.Setlist{}, fmt.Errorf("row iteration error: %w", err)
	}
	return setlist.New(eventID, entries), nil
}

// applyChanges runs deletes, then updates, then inserts.
func applyChanges(q querier, eventID string, changes setlist.Changes) error {
	now := time.Now()

	for _, id := range changes.Deletes {
		result, err := q.Exec(`DELETE FROM event_songs WHERE id = ? AND event_id = ?`, id, eventID)
		if err != nil {
			return fmt.Errorf("failed to delete setlist entry: %w", err)
		}
		if err := requireAffected(result, fmt.Errorf("%w: setlist entry %s", shared.ErrNotFound, id)); err != nil {
			return err
		}
	}

	for _, e := range changes.Updates {
		result, err := q.Exec(`
			UPDATE event_songs
			SET song_order = ?, key_played = ?, is_medley = ?, medley_group = ?, updated_at = ?
			WHERE id = ? AND event_id = ?`,
			e.Order, nullString(e.KeyPlayed), e.IsMedley, nullInt(e.MedleyGroup), now, e.ID, eventID,
		)
		if err != nil {
			return fmt.Errorf("failed to update setlist entry: %w", err)
		}
		if err := requireAffected(result, fmt.Errorf("%w: setlist entry %s", shared.ErrNotFound, e.ID)); err != nil {
			return err
		}
	}

	for _, e := range changes.Inserts {
		_, err := q.Exec(`
			INSERT INTO event_songs
				(id, event_id, song_id, song_order, key_played, is_medley, medley_group, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			shared.GenerateID(), eventID, e.SongID, e.Order, nullString(e.KeyPlayed), e.IsMedley,
			nullInt(e.MedleyGroup), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert setlist entry: %w", err)
		}
	}
	return nil
}

// PlayCounts returns how many events each song has been played at.
//
// Only events on or before until are counted; a zero until counts everything. Soft-deleted events are ignored.
func (r *SetlistRepository) PlayCounts(until time.Time) (map[string]int, error) {
	query := `
		SELECT es.song_id, COUNT(*)
		FROM event_songs es
		JOIN events e ON e.id = es.event_id
		WHERE e.deleted_at IS NULL
	`
	args := []any{}
	if !until.IsZero() {
		query += " AND e.event_date <= ?"
		args = append(args, until.Format(models.DateLayout))
	}
	query += " GROUP BY es.song_id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query play counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			songID string
			count  int
		)
		if err := rows.Scan(&songID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan play count: %w", err)
		}
		counts[songID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}
