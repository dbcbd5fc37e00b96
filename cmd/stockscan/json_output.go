package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"stockscan/internal/queue"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type entryJSON struct {
	ID         int64  `json:"id"`
	Position   int64  `json:"position"`
	ClientRef  string `json:"client_ref"`
	TagValue   string `json:"tag_value"`
	Direction  string `json:"direction"`
	ProjectID  int64  `json:"project_id"`
	Quantity   int    `json:"qty"`
	BundleMode string `json:"bundle_mode,omitempty"`
	EnqueuedAt string `json:"enqueued_at"`
}

type droppedJSON struct {
	entryJSON
	DroppedAt string `json:"dropped_at"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
}

type flushJSON struct {
	Processed   int        `json:"processed"`
	Remaining   int        `json:"remaining"`
	Skipped     bool       `json:"skipped"`
	Interrupted bool       `json:"interrupted"`
	Dropped     []dropJSON `json:"dropped"`
}

type dropJSON struct {
	EntryID   int64  `json:"entry_id"`
	ClientRef string `json:"client_ref"`
	TagValue  string `json:"tag_value"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
}

func toEntryJSON(entry queue.Entry) entryJSON {
	op := entry.Operation
	return entryJSON{
		ID:         entry.ID,
		Position:   entry.Position,
		ClientRef:  entry.ClientRef,
		TagValue:   op.Tag(),
		Direction:  string(op.Direction()),
		ProjectID:  op.ProjectID(),
		Quantity:   op.Quantity(),
		BundleMode: string(op.BundleMode()),
		EnqueuedAt: entry.EnqueuedAt.UTC().Format(time.RFC3339),
	}
}

func toDroppedJSON(entry queue.DroppedEntry) droppedJSON {
	return droppedJSON{
		entryJSON: toEntryJSON(entry.Entry),
		DroppedAt: entry.DroppedAt.UTC().Format(time.RFC3339),
		Kind:      string(entry.Kind),
		Reason:    entry.Reason,
	}
}

func toFlushJSON(result queue.FlushResult) flushJSON {
	out := flushJSON{
		Processed:   result.Processed,
		Remaining:   result.Remaining,
		Skipped:     result.Skipped,
		Interrupted: result.Interrupted,
		Dropped:     make([]dropJSON, 0, len(result.Dropped)),
	}
	for _, notice := range result.Dropped {
		out.Dropped = append(out.Dropped, dropJSON{
			EntryID:   notice.EntryID,
			ClientRef: notice.ClientRef,
			TagValue:  notice.Tag,
			Kind:      string(notice.Kind),
			Reason:    notice.Reason,
		})
	}
	return out
}
