package favorites

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteSlot stores the collection as a JSON blob in a single row of a
// key/payload table.
type SQLiteSlot struct {
	db     *sql.DB
	bucket string
	owned  bool
}

// OpenSQLiteSlot opens (creating if needed) the database at path.
func OpenSQLiteSlot(ctx context.Context, path, bucket string) (*SQLiteSlot, error) {
	if path == "" {
		path = "console.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, errors.Wrap(err, "create dirs")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	slot, err := NewSQLiteSlot(ctx, db, bucket)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	slot.owned = true
	return slot, nil
}

// NewSQLiteSlot uses an existing handle. The caller keeps ownership of db.
func NewSQLiteSlot(ctx context.Context, db *sql.DB, bucket string) (*SQLiteSlot, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, errors.Wrap(err, "create state table")
	}
	return &SQLiteSlot{db: db, bucket: bucket}, nil
}

func (s *SQLiteSlot) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, s.bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "select state")
	}
	return payload, nil
}

func (s *SQLiteSlot) Write(ctx context.Context, data []byte) error {
	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		s.bucket, data,
	); err != nil {
		return errors.Wrapf(err, "upsert %s", s.bucket)
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
