// Package store implements the persistent-store collaborator: a single
// SQLite table keyed by internal id, unique on the caller-supplied post id,
// holding the luminance triple and the raw signature blob.
//
// Durability is delegated entirely to SQLite; this package never
// interprets the signature blob's contents.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS images (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id INTEGER NOT NULL UNIQUE,
	avglf1  REAL NOT NULL,
	avglf2  REAL NOT NULL,
	avglf3  REAL NOT NULL,
	sig     BLOB NOT NULL
);
`

// Row is one persisted image record.
type Row struct {
	ID     int64
	PostID int64
	AvgLF  [3]float64
	Sig    []byte
}

// Store wraps the SQLite connection pool backing the images table.
type Store struct {
	db *sql.DB
}

// Open creates or attaches to the SQLite database file at path and ensures
// the images table exists. maxOpenConns and busyTimeoutMS mirror the
// pack's standard SQLite tuning: a small connection pool so writers queue
// instead of contending under WAL, and a busy timeout so a writer never
// fails outright under contention.
func Open(path string, maxOpenConns, busyTimeoutMS int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns(maxOpenConns))

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMS),
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: apply pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// maxIdleConns keeps half the open pool idle, at least one, so a burst of
// sequential requests doesn't pay reconnect cost between them.
func maxIdleConns(maxOpenConns int) int {
	if maxOpenConns <= 1 {
		return 1
	}
	return maxOpenConns / 2
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetByPostID looks up the row for postID. A nil row with a nil error means
// no such row exists.
func (s *Store) GetByPostID(ctx context.Context, postID int64) (*Row, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, post_id, avglf1, avglf2, avglf3, sig FROM images WHERE post_id = ?`,
		postID,
	)

	var r Row
	err := row.Scan(&r.ID, &r.PostID, &r.AvgLF[0], &r.AvgLF[1], &r.AvgLF[2], &r.Sig)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get by post_id %d: %w", postID, err)
	}
	return &r, nil
}

// Insert atomically replaces any existing row for postID and inserts a
// fresh one, returning the newly assigned internal id. Because ids are
// AUTOINCREMENT, a replace always yields a new id even when postID was
// already present — the old internal index is never reused.
func (s *Store) Insert(ctx context.Context, postID int64, avglf [3]float64, sigBlob []byte) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin insert tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE post_id = ?`, postID); err != nil {
		return 0, fmt.Errorf("store: delete existing row for post_id %d: %w", postID, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO images (post_id, avglf1, avglf2, avglf3, sig) VALUES (?, ?, ?, ?, ?)`,
		postID, avglf[0], avglf[1], avglf[2], sigBlob,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert post_id %d: %w", postID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: read inserted id for post_id %d: %w", postID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit insert for post_id %d: %w", postID, err)
	}
	return id, nil
}

// DeleteByPostID removes the row for postID, if any.
func (s *Store) DeleteByPostID(ctx context.Context, postID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE post_id = ?`, postID); err != nil {
		return fmt.Errorf("store: delete post_id %d: %w", postID, err)
	}
	return nil
}

// ForEach streams every row in ascending id (primary key) order, invoking
// fn for each. Used by the mutation manager's Load to rebuild in-memory
// state.
func (s *Store) ForEach(ctx context.Context, fn func(Row) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, post_id, avglf1, avglf2, avglf3, sig FROM images ORDER BY id ASC`,
	)
	if err != nil {
		return fmt.Errorf("store: scan images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.PostID, &r.AvgLF[0], &r.AvgLF[1], &r.AvgLF[2], &r.Sig); err != nil {
			return fmt.Errorf("store: scan row: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}
