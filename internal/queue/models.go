package queue

import (
	"time"

	"stockscan/internal/services"
)

// Entry is a queued operation with its enqueue metadata.
type Entry struct {
	ID         int64
	Position   int64
	ClientRef  string
	EnqueuedAt time.Time
	Operation  Operation
}

// DroppedEntry is an entry removed from the queue after a terminal failure.
type DroppedEntry struct {
	Entry
	DroppedAt time.Time
	Kind      services.Kind
	Reason    string
}

// DropNotice tells the caller which entry a flush dropped and why.
type DropNotice struct {
	EntryID   int64
	ClientRef string
	Tag       string
	Kind      services.Kind
	Reason    string
}

// FlushResult summarizes one flush pass. Processed counts delivered entries
// only; Remaining is the queue depth after the pass. Skipped is set when
// another flush was already running. Interrupted is set when a network-class
// failure stopped the pass.
type FlushResult struct {
	Processed   int
	Remaining   int
	Dropped     []DropNotice
	Skipped     bool
	Interrupted bool
}

// Health captures diagnostic information about the queue database.
type Health struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	IntegrityCheck   bool
	Pending          int
	Dropped          int
	MaxEntries       int
	Error            string
}
