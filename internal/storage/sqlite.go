package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/zenstudio/backend/internal/model"
)

const defaultSQLitePath = "studio.db"

// SQLiteBackend snapshots the dataset into a two-column state table, one
// row per collection.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (or creates) the SQLite database at path and
// ensures the state table exists.
func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite:" + b.path }

func (b *SQLiteBackend) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := b.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM state)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("query state: %w", err)
	}
	return exists, nil
}

func (b *SQLiteBackend) Read(ctx context.Context) (*model.Dataset, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ds := model.NewDataset()
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := decodeBucket(ds, bucket, payload); err != nil {
			return nil, err
		}
	}
	return ds, rows.Err()
}

// Write upserts every bucket in one transaction.
func (b *SQLiteBackend) Write(ctx context.Context, ds *model.Dataset) (retErr error) {
	buckets, err := encodeBuckets(ds)
	if err != nil {
		return err
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, c := range model.Collections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(bucket, payload) VALUES(?, ?)
			 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			string(c), buckets[c],
		); err != nil {
			return fmt.Errorf("upsert %s: %w", c, err)
		}
	}
	return tx.Commit()
}

func (b *SQLiteBackend) Close() error { return b.db.Close() }
