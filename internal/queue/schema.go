package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape. There are no
// migrations: queued movements are not worth more than a sync.
const schemaVersion = 1

// ErrSchemaMismatch is returned by Open when the queue file was written by
// a build with a different schema.
var ErrSchemaMismatch = errors.New("offline queue schema mismatch")

// initSchema creates the tables on first use and refuses foreign versions.
// It runs inside a busy-retried transaction because a CLI command and a
// scanning session may open the same file at once.
func (s *Store) initSchema(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		version, found, err := readSchemaVersion(ctx, tx)
		if err != nil {
			return err
		}
		switch {
		case !found:
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create offline queue tables: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
				return fmt.Errorf("record offline queue schema: %w", err)
			}
			return nil
		case version != schemaVersion:
			return fmt.Errorf("%w: %s has version %d, this build expects %d; run 'stockscan queue sync' with the build that wrote it, then remove the file",
				ErrSchemaMismatch, s.path, version, schemaVersion)
		default:
			return nil
		}
	})
}

func readSchemaVersion(ctx context.Context, tx *sql.Tx) (int, bool, error) {
	var tables int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&tables); err != nil {
		return 0, false, fmt.Errorf("inspect offline queue schema: %w", err)
	}
	if tables == 0 {
		return 0, false, nil
	}
	var version int
	err := tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("%w: schema_version table is empty", ErrSchemaMismatch)
	}
	if err != nil {
		return 0, false, fmt.Errorf("read offline queue schema version: %w", err)
	}
	return version, true, nil
}
