package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockscan/internal/services"
)

// Enqueue appends op at the tail of the queue under a fresh client
// reference. The entry is durable once Enqueue returns. A full queue rejects
// the operation with ErrQueueFull.
func (s *Store) Enqueue(ctx context.Context, op Operation) (Entry, error) {
	return s.EnqueueRef(ctx, op, uuid.NewString())
}

// EnqueueRef is Enqueue with a caller-chosen client reference, used when a
// direct submission already went out under that idempotency key.
func (s *Store) EnqueueRef(ctx context.Context, op Operation, clientRef string) (Entry, error) {
	if op.tag == "" {
		return Entry{}, fmt.Errorf("%w: zero operation", ErrInvalidOperation)
	}
	if clientRef == "" {
		clientRef = uuid.NewString()
	}
	entry := Entry{
		ClientRef:  clientRef,
		EnqueuedAt: time.Now().UTC(),
		Operation:  op,
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if s.maxEntries > 0 {
			var depth int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM queue_entries`).Scan(&depth); err != nil {
				return fmt.Errorf("count entries: %w", err)
			}
			if depth >= s.maxEntries {
				return fmt.Errorf("%w (%d entries)", ErrQueueFull, depth)
			}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO queue_entries (
                position, client_ref, tag_value, direction, project_id, quantity, bundle_mode, enqueued_at
            ) VALUES ((SELECT COALESCE(MAX(position), 0) + 1 FROM queue_entries), ?, ?, ?, ?, ?, ?, ?)`,
			entry.ClientRef,
			op.tag,
			string(op.direction),
			op.projectID,
			op.quantity,
			nullableString(string(op.bundleMode)),
			formatTime(entry.EnqueuedAt),
		)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		if entry.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return tx.QueryRowContext(ctx, `SELECT position FROM queue_entries WHERE id = ?`, entry.ID).Scan(&entry.Position)
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Count returns the current queue depth.
func (s *Store) Count(ctx context.Context) (int, error) {
	var depth int
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM queue_entries`).Scan(&depth); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return depth, nil
}

// List returns pending entries in delivery order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+entryColumns+` FROM queue_entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Dropped returns the dropped-entry ledger, most recent first.
func (s *Store) Dropped(ctx context.Context) ([]DroppedEntry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+droppedColumns+` FROM dropped_entries ORDER BY dropped_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list dropped entries: %w", err)
	}
	defer rows.Close()

	var entries []DroppedEntry
	for rows.Next() {
		entry, err := scanDropped(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dropped entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ClearDropped empties the dropped ledger and returns how many rows it held.
func (s *Store) ClearDropped(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM dropped_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear dropped entries: %w", err)
	}
	return res.RowsAffected()
}

// Clear discards every pending entry without delivering it.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM queue_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) head(ctx context.Context) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM queue_entries ORDER BY position LIMIT 1`)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read queue head: %w", err)
	}
	return entry, true, nil
}

func (s *Store) remove(ctx context.Context, id int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM queue_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

// drop moves entry into the dropped ledger atomically.
func (s *Store) drop(ctx context.Context, entry Entry, kind services.Kind, reason string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		op := entry.Operation
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO dropped_entries (`+droppedColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			entry.Position,
			entry.ClientRef,
			op.tag,
			string(op.direction),
			op.projectID,
			op.quantity,
			nullableString(string(op.bundleMode)),
			formatTime(entry.EnqueuedAt),
			formatTime(time.Now()),
			string(kind),
			reason,
		); err != nil {
			return fmt.Errorf("record dropped entry %d: %w", entry.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_entries WHERE id = ?`, entry.ID); err != nil {
			return fmt.Errorf("delete dropped entry %d: %w", entry.ID, err)
		}
		return nil
	})
}
