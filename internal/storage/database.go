package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lingoreps/lingoreps/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// ErrVersionConflict reports that an update's expected version did not
// match the stored row: another writer got there first. The caller
// should re-read the record and retry.
var ErrVersionConflict = errors.New("storage: review record version conflict")

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from splitting across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Source is one origin of vocabulary items, either a local directory of
// word lists or a git repository URL.
type Source struct {
	ID         int64
	Path       string
	Type       string // "local" or "git"
	LastSynced sql.NullTime
}

// Item is a single vocabulary item, keyed by the hash of its normalized term.
type Item struct {
	Key      string
	Term     string
	SourceID sql.NullInt64
}

// ReviewRow is a stored scheduling record with its row version.
type ReviewRow struct {
	LearnerID string
	ItemKey   string
	Record    domain.Record
	Version   int64
}

// InsertSource inserts a new source and returns its ID.
func (db *DB) InsertSource(path, sourceType string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO sources (path, type)
		VALUES (?, ?)
	`, path, sourceType)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. Returns nil if not found.
func (db *DB) FindSourceByPath(path string) (*Source, error) {
	var s Source
	row := db.conn.QueryRow(`
		SELECT id, path, type, last_synced
		FROM sources WHERE path = ?
	`, path)

	err := row.Scan(&s.ID, &s.Path, &s.Type, &s.LastSynced)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves all stored sources.
func (db *DB) GetAllSources() ([]Source, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, type, last_synced
		FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Type, &s.LastSynced); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// UpdateSourceLastSynced stamps the source with the current time.
func (db *DB) UpdateSourceLastSynced(sourceID int64) error {
	_, err := db.conn.Exec(`
		UPDATE sources
		SET last_synced = ?
		WHERE id = ?
	`, time.Now(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last synced for source ID %d: %w", sourceID, err)
	}
	return nil
}

// InsertItem inserts a new vocabulary item.
func (db *DB) InsertItem(item Item) error {
	_, err := db.conn.Exec(`
		INSERT INTO items (key, term, source_id)
		VALUES (?, ?, ?)
	`, item.Key, item.Term, item.SourceID)
	if err != nil {
		return fmt.Errorf("failed to insert item %s: %w", item.Key, err)
	}
	return nil
}

// FindItemByKey retrieves an item by key. Returns nil if not found.
func (db *DB) FindItemByKey(key string) (*Item, error) {
	var it Item
	row := db.conn.QueryRow(`
		SELECT key, term, source_id
		FROM items WHERE key = ?
	`, key)

	err := row.Scan(&it.Key, &it.Term, &it.SourceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item by key %s: %w", key, err)
	}
	return &it, nil
}

// GetItemsBySourceID retrieves all items belonging to a source.
func (db *DB) GetItemsBySourceID(sourceID int64) ([]Item, error) {
	rows, err := db.conn.Query(`
		SELECT key, term, source_id
		FROM items WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for source ID %d: %w", sourceID, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Key, &it.Term, &it.SourceID); err != nil {
			return nil, fmt.Errorf("failed to scan item row for source ID %d: %w", sourceID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeleteItemByKey removes an item. Review records for the item go with
// it (cascade on the foreign key).
func (db *DB) DeleteItemByKey(key string) error {
	_, err := db.conn.Exec(`
		DELETE FROM items
		WHERE key = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to delete item with key %s: %w", key, err)
	}
	return nil
}

// ItemKeysWithoutRecord returns keys of items the learner has no review
// record for yet.
func (db *DB) ItemKeysWithoutRecord(learnerID string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT key FROM items
		WHERE key NOT IN (
			SELECT item_key FROM reviews WHERE learner_id = ?
		)
	`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unenrolled items for learner %s: %w", learnerID, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan item key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetRecord retrieves the review record for a (learner, item) pair.
// Returns nil if no record exists.
func (db *DB) GetRecord(learnerID, itemKey string) (*ReviewRow, error) {
	row := db.conn.QueryRow(`
		SELECT learner_id, item_key, ease_factor, interval_days, next_review,
		       review_count, quality_history, version
		FROM reviews WHERE learner_id = ? AND item_key = ?
	`, learnerID, itemKey)

	rr, err := scanReviewRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record for %s/%s: %w", learnerID, itemKey, err)
	}
	return rr, nil
}

// InsertRecord stores a fresh review record at version 1.
func (db *DB) InsertRecord(learnerID, itemKey string, rec domain.Record) error {
	_, err := db.conn.Exec(`
		INSERT INTO reviews (learner_id, item_key, ease_factor, interval_days,
		                     next_review, review_count, quality_history, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
	`,
		learnerID,
		itemKey,
		rec.EaseFactor,
		rec.IntervalDays,
		nullableTime(rec.NextReview),
		rec.ReviewCount,
		rec.History.Encode(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record for %s/%s: %w", learnerID, itemKey, err)
	}
	return nil
}

// UpdateRecord writes an updated record, guarded by an optimistic
// version check: the update only applies if the stored version still
// equals expectedVersion. On a stale version it returns ErrVersionConflict.
func (db *DB) UpdateRecord(learnerID, itemKey string, rec domain.Record, expectedVersion int64) error {
	res, err := db.conn.Exec(`
		UPDATE reviews
		SET ease_factor = ?, interval_days = ?, next_review = ?,
		    review_count = ?, quality_history = ?, version = version + 1
		WHERE learner_id = ? AND item_key = ? AND version = ?
	`,
		rec.EaseFactor,
		rec.IntervalDays,
		nullableTime(rec.NextReview),
		rec.ReviewCount,
		rec.History.Encode(),
		learnerID,
		itemKey,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update record for %s/%s: %w", learnerID, itemKey, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of record for %s/%s: %w", learnerID, itemKey, err)
	}
	if n == 0 {
		return fmt.Errorf("record %s/%s at version %d: %w", learnerID, itemKey, expectedVersion, ErrVersionConflict)
	}
	return nil
}

// DueRecords returns the learner's records due as of the given time,
// never-scheduled records first, then earliest due date. limit <= 0
// means no limit.
func (db *DB) DueRecords(learnerID string, asOf time.Time, limit int) ([]ReviewRow, error) {
	if limit <= 0 {
		limit = -1 // sqlite treats a negative LIMIT as unlimited
	}
	rows, err := db.conn.Query(`
		SELECT learner_id, item_key, ease_factor, interval_days, next_review,
		       review_count, quality_history, version
		FROM reviews
		WHERE learner_id = ? AND (next_review IS NULL OR next_review <= ?)
		ORDER BY next_review IS NOT NULL, next_review
		LIMIT ?
	`, learnerID, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due records for learner %s: %w", learnerID, err)
	}
	defer rows.Close()

	var out []ReviewRow
	for rows.Next() {
		rr, err := scanReviewRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due record for learner %s: %w", learnerID, err)
		}
		out = append(out, *rr)
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReviewRow(s scanner) (*ReviewRow, error) {
	var (
		rr         ReviewRow
		ease       float64
		interval   int
		nextReview sql.NullTime
		count      int
		history    string
	)
	if err := s.Scan(&rr.LearnerID, &rr.ItemKey, &ease, &interval, &nextReview, &count, &history, &rr.Version); err != nil {
		return nil, err
	}

	h, err := domain.ParseHistory(history)
	if err != nil {
		return nil, err
	}
	var next *time.Time
	if nextReview.Valid {
		next = &nextReview.Time
	}
	rec, err := domain.Restore(ease, interval, next, count, h)
	if err != nil {
		return nil, err
	}
	rr.Record = rec
	return &rr, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
