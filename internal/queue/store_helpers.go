package queue

import (
	"database/sql"
	"errors"
	"time"

	"stockscan/internal/services"
	"stockscan/internal/warehouse"
)

const entryColumns = "id, position, client_ref, tag_value, direction, project_id, quantity, bundle_mode, enqueued_at"

const droppedColumns = entryColumns + ", dropped_at, error_kind, reason"

type rowScanner interface{ Scan(dest ...any) error }

func scanEntry(scanner rowScanner) (Entry, error) {
	var (
		entry       Entry
		tag         string
		direction   string
		projectID   int64
		quantity    int
		bundleMode  sql.NullString
		enqueuedRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Position,
		&entry.ClientRef,
		&tag,
		&direction,
		&projectID,
		&quantity,
		&bundleMode,
		&enqueuedRaw,
	); err != nil {
		return Entry{}, err
	}
	entry.Operation = restoreOperation(tag, direction, projectID, quantity, bundleMode.String)
	if enqueued, err := parseTimeString(enqueuedRaw); err == nil {
		entry.EnqueuedAt = enqueued
	}
	return entry, nil
}

func scanDropped(scanner rowScanner) (DroppedEntry, error) {
	var (
		dropped     DroppedEntry
		tag         string
		direction   string
		projectID   int64
		quantity    int
		bundleMode  sql.NullString
		enqueuedRaw string
		droppedRaw  string
		kind        string
	)
	if err := scanner.Scan(
		&dropped.ID,
		&dropped.Position,
		&dropped.ClientRef,
		&tag,
		&direction,
		&projectID,
		&quantity,
		&bundleMode,
		&enqueuedRaw,
		&droppedRaw,
		&kind,
		&dropped.Reason,
	); err != nil {
		return DroppedEntry{}, err
	}
	dropped.Operation = restoreOperation(tag, direction, projectID, quantity, bundleMode.String)
	dropped.Kind = services.Kind(kind)
	if enqueued, err := parseTimeString(enqueuedRaw); err == nil {
		dropped.EnqueuedAt = enqueued
	}
	if at, err := parseTimeString(droppedRaw); err == nil {
		dropped.DroppedAt = at
	}
	return dropped, nil
}

// restoreOperation rebuilds a persisted operation without re-validating it;
// the schema constraints already hold.
func restoreOperation(tag, direction string, projectID int64, quantity int, mode string) Operation {
	return Operation{
		tag:        tag,
		direction:  warehouse.Direction(direction),
		projectID:  projectID,
		quantity:   quantity,
		bundleMode: warehouse.BundleMode(mode),
	}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
