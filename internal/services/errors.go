package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNetwork            = errors.New("network unavailable")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrBundleModeRequired = errors.New("bundle mode required")
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
	ErrOther              = errors.New("request failed")
)

// Kind is the user-facing classification of a failure.
type Kind string

const (
	KindNone               Kind = ""
	KindNetwork            Kind = "network"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindBundleModeRequired Kind = "bundle_mode_required"
	KindValidation         Kind = "validation"
	KindOther              Kind = "other"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrOther
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error onto the failure taxonomy. The bundle-mode sub-kind
// is checked before the generic conflict marker.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	case errors.Is(err, ErrBundleModeRequired):
		return KindBundleModeRequired
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return KindValidation
	default:
		return KindOther
	}
}

// IsNetwork reports whether err is a network-class failure.
func IsNetwork(err error) bool {
	return Classify(err) == KindNetwork
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
