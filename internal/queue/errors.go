package queue

import (
	"fmt"

	"stockscan/internal/services"
)

// ErrQueueFull is returned by Enqueue when the queue holds max_entries
// pending operations. It is validation-class so callers surface it instead
// of retrying.
var ErrQueueFull = fmt.Errorf("%w: offline queue is full", services.ErrValidation)

// ErrInvalidOperation is returned when a scan operation fails construction.
var ErrInvalidOperation = fmt.Errorf("%w: invalid scan operation", services.ErrValidation)
