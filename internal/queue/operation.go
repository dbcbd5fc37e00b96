package queue

import (
	"fmt"
	"strings"

	"stockscan/internal/warehouse"
)

// Operation is one stock movement. It is immutable once constructed; queued
// operations are only ever delivered, dropped or left in place.
type Operation struct {
	tag        string
	direction  warehouse.Direction
	projectID  int64
	quantity   int
	bundleMode warehouse.BundleMode
}

// NewOperation validates and builds an operation. bundle reports whether the
// tag resolved to a bundle: a bundle requires a mode, anything else forbids
// one.
func NewOperation(tag string, direction warehouse.Direction, projectID int64, quantity int, mode warehouse.BundleMode, bundle bool) (Operation, error) {
	tag = strings.TrimSpace(tag)
	switch {
	case tag == "":
		return Operation{}, fmt.Errorf("%w: tag value is required", ErrInvalidOperation)
	case !direction.Valid():
		return Operation{}, fmt.Errorf("%w: direction %q", ErrInvalidOperation, direction)
	case projectID < 0:
		return Operation{}, fmt.Errorf("%w: project id must be non-negative", ErrInvalidOperation)
	case quantity <= 0:
		return Operation{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidOperation)
	case bundle && !mode.Valid():
		return Operation{}, fmt.Errorf("%w: bundle tags need a bundle mode", ErrInvalidOperation)
	case !bundle && mode != warehouse.BundleModeNone:
		return Operation{}, fmt.Errorf("%w: bundle mode set for a non-bundle tag", ErrInvalidOperation)
	}
	return Operation{
		tag:        tag,
		direction:  direction,
		projectID:  projectID,
		quantity:   quantity,
		bundleMode: mode,
	}, nil
}

func (o Operation) Tag() string                      { return o.tag }
func (o Operation) Direction() warehouse.Direction   { return o.direction }
func (o Operation) ProjectID() int64                 { return o.projectID }
func (o Operation) Quantity() int                    { return o.quantity }
func (o Operation) BundleMode() warehouse.BundleMode { return o.bundleMode }

// Request renders the operation as the scan endpoint body.
func (o Operation) Request() warehouse.ScanRequest {
	req := warehouse.ScanRequest{
		TagValue:  o.tag,
		Direction: o.direction,
		ProjectID: o.projectID,
		Quantity:  o.quantity,
	}
	if o.bundleMode != warehouse.BundleModeNone {
		mode := o.bundleMode
		req.BundleMode = &mode
	}
	return req
}
