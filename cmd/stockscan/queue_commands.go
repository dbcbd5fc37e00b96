package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"stockscan/internal/queue"
	"stockscan/internal/session"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and drain the offline queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueCountCommand(ctx))
	queueCmd.AddCommand(newQueueSyncCommand(ctx))
	queueCmd.AddCommand(newQueueDroppedCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued movements in submission order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					out := make([]entryJSON, 0, len(entries))
					for _, entry := range entries {
						out = append(out, toEntryJSON(entry))
					}
					return writeJSON(cmd, out)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				caption := fmt.Sprintf("%d of %d slots used", len(entries), store.MaxEntries())
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(entryColumns, buildEntryRows(entries), caption))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newQueueCountCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of queued movements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				count, err := store.Count(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]int{"pending": count, "max_entries": store.MaxEntries()})
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newQueueSyncCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Submit queued movements to the server now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(sess *session.Session) error {
				result, err := sess.SyncNow(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, toFlushJSON(result))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, flushSummary(result))
				if len(result.Dropped) > 0 {
					rows := make([][]string, 0, len(result.Dropped))
					for _, notice := range result.Dropped {
						rows = append(rows, []string{notice.Tag, string(notice.Kind), notice.Reason})
					}
					fmt.Fprintln(out, renderTable(dropNoticeColumns, rows, ""))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newQueueDroppedCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "dropped",
		Short: "List movements the server rejected during a sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				dropped, err := store.Dropped(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					out := make([]droppedJSON, 0, len(dropped))
					for _, entry := range dropped {
						out = append(out, toDroppedJSON(entry))
					}
					return writeJSON(cmd, out)
				}
				if len(dropped) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No dropped movements")
					return nil
				}
				rows := make([][]string, 0, len(dropped))
				for _, entry := range dropped {
					op := entry.Operation
					rows = append(rows, []string{
						op.Tag(),
						string(op.Direction()),
						strconv.FormatInt(op.ProjectID(), 10),
						entry.DroppedAt.Local().Format(time.DateTime),
						string(entry.Kind),
						entry.Reason,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(droppedColumns, rows, ""))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearDropped bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard queued movements without submitting them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLockedStore(func(store *queue.Store) error {
				if clearDropped {
					removed, err := store.ClearDropped(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d dropped movement(s)\n", removed)
					return nil
				}
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d queued movement(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearDropped, "dropped", false, "Clear the dropped-movement ledger instead")
	return cmd
}

func buildEntryRows(entries []queue.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		op := entry.Operation
		mode := string(op.BundleMode())
		if mode == "" {
			mode = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			op.Tag(),
			string(op.Direction()),
			strconv.FormatInt(op.ProjectID(), 10),
			strconv.Itoa(op.Quantity()),
			mode,
			entry.EnqueuedAt.Local().Format(time.DateTime),
		})
	}
	return rows
}

func flushSummary(result queue.FlushResult) string {
	switch {
	case result.Skipped:
		return "A sync is already running"
	case result.Interrupted:
		return fmt.Sprintf("Synced %d movement(s); server unreachable, %d still queued", result.Processed, result.Remaining)
	default:
		return fmt.Sprintf("Synced %d movement(s), dropped %d, %d still queued", result.Processed, len(result.Dropped), result.Remaining)
	}
}
