package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/tiermem/internal/tier"
)

// recordStore implements tier.Store backed by SQLite.
type recordStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Put stores a record inside a transaction so all tiers become visible
// atomically. An existing record with the same key is replaced.
func (s *recordStore) Put(ctx context.Context, rec tier.Record) error {
	if err := tier.CheckInvariant(rec); err != nil {
		return err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin put: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO records (key, full_content, short_digest, overview, source_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Key, rec.FullContent, rec.ShortDigest, rec.Overview,
		rec.SourceSize, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: put record %q: %w", rec.Key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit put: %w", err)
	}
	return nil
}

// Get retrieves a record by key.
func (s *recordStore) Get(ctx context.Context, key string) (tier.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, full_content, short_digest, overview, source_size, created_at
		FROM records WHERE key = ?`, key)
	return scanRecord(row)
}

// Has reports whether a record with the given key exists.
func (s *recordStore) Has(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE key = ?", key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: check record %q: %w", key, err)
	}
	return n > 0, nil
}

// Keys returns all record keys in ascending lexical order.
func (s *recordStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM records ORDER BY key ASC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate keys: %w", err)
	}
	return keys, nil
}

// Latest returns the record with the greatest key.
func (s *recordStore) Latest(ctx context.Context) (tier.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key, full_content, short_digest, overview, source_size, created_at
		FROM records ORDER BY key DESC LIMIT 1`)
	return scanRecord(row)
}

// Len returns the total number of stored records.
func (s *recordStore) Len() int {
	var count int
	if err := s.db.QueryRowContext(context.TODO(), "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		s.logger.Error("sqlite: count records failed", "error", err)
		return 0
	}
	return count
}

func scanRecord(row *sql.Row) (tier.Record, error) {
	var (
		rec          tier.Record
		createdAtStr string
	)
	err := row.Scan(&rec.Key, &rec.FullContent, &rec.ShortDigest, &rec.Overview,
		&rec.SourceSize, &createdAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return tier.Record{}, tier.ErrRecordNotFound
	}
	if err != nil {
		return tier.Record{}, fmt.Errorf("sqlite: scan record: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, createdAtStr); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}
