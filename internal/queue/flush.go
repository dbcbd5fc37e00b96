package queue

import (
	"context"
	"errors"

	"stockscan/internal/conflict"
	"stockscan/internal/services"
	"stockscan/internal/warehouse"
)

// Sender delivers one queued entry.
type Sender func(ctx context.Context, entry Entry) error

// Submitter is the part of the API client a flush needs.
type Submitter interface {
	SubmitScan(ctx context.Context, req warehouse.ScanRequest, idempotencyKey string) error
}

// SubmitSender replays entries through client, using the entry's client
// reference as the idempotency key.
func SubmitSender(client Submitter) Sender {
	return func(ctx context.Context, entry Entry) error {
		return client.SubmitScan(ctx, entry.Operation.Request(), entry.ClientRef)
	}
}

// Flushing reports whether a flush pass is in progress.
func (s *Store) Flushing() bool {
	return s.flushing.Load()
}

// Flush drains the queue from the head in order. Entry N+1 is not attempted
// until entry N is delivered or dropped. A network-class failure stops the
// pass and leaves the failing entry and everything after it in place. Other
// failures drop the entry and continue.
//
// A call made while another flush is running returns immediately with
// Skipped set.
func (s *Store) Flush(ctx context.Context, send Sender) (FlushResult, error) {
	if !s.flushing.CompareAndSwap(false, true) {
		return FlushResult{Skipped: true}, nil
	}
	defer s.flushing.Store(false)

	ctx = ensureContext(ctx)
	var result FlushResult
	runErr := s.drain(ctx, send, &result)

	remaining, err := s.Count(context.WithoutCancel(ctx))
	if err != nil && runErr == nil {
		runErr = err
	}
	result.Remaining = remaining
	return result, runErr
}

func (s *Store) drain(ctx context.Context, send Sender, result *FlushResult) error {
	for {
		if err := ctx.Err(); err != nil {
			result.Interrupted = true
			return err
		}
		entry, ok, err := s.head(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		sendErr := send(ctx, entry)
		switch {
		case sendErr == nil:
			if err := s.remove(ctx, entry.ID); err != nil {
				return err
			}
			result.Processed++
		case ctx.Err() != nil:
			result.Interrupted = true
			return ctx.Err()
		case services.IsNetwork(sendErr):
			result.Interrupted = true
			return nil
		default:
			kind := services.Classify(sendErr)
			reason := DropReason(sendErr)
			if err := s.drop(ctx, entry, kind, reason); err != nil {
				return err
			}
			result.Dropped = append(result.Dropped, DropNotice{
				EntryID:   entry.ID,
				ClientRef: entry.ClientRef,
				Tag:       entry.Operation.tag,
				Kind:      kind,
				Reason:    reason,
			})
		}
	}
}

// DropReason renders a terminal delivery failure for the operator. Raw
// payloads are never included.
func DropReason(err error) string {
	var apiErr *warehouse.APIError
	switch services.Classify(err) {
	case services.KindNotFound:
		return "tag not linked to an item or bundle"
	case services.KindBundleModeRequired:
		return "bundle mode required; rescan the tag and choose a mode"
	case services.KindConflict:
		return conflict.Interpret(err, conflict.DefaultMessage)
	case services.KindValidation:
		if errors.As(err, &apiErr) && apiErr.Text() != "" {
			return apiErr.Text()
		}
		return "rejected by server validation"
	default:
		if errors.As(err, &apiErr) && apiErr.Text() != "" {
			return apiErr.Text()
		}
		return "request failed"
	}
}
