package conflict

import (
	"errors"
	"fmt"
	"strings"

	"stockscan/internal/warehouse"
)

// DefaultMessage is used when a conflict payload carries no message.
const DefaultMessage = "Scheduling conflict detected."

// Interpret renders err as conflict guidance. When err is not a generic
// conflict response, fallback is returned unchanged.
func Interpret(err error, fallback string) string {
	var apiErr *warehouse.APIError
	if err == nil || !errors.As(err, &apiErr) || !apiErr.IsConflict() {
		return fallback
	}
	base := strings.TrimSpace(apiErr.Text())
	if base == "" {
		base = DefaultMessage
	}
	summary := Decode(apiErr.CrewConflicts, apiErr.TransportConflicts)
	clause := Clause(summary)
	if clause == "" {
		return base
	}
	return base + " (" + clause + ")"
}

// Clause enumerates the non-zero domains of s, e.g. "2 crew conflicts, 1
// transport conflict". It is empty for None.
func Clause(s Summary) string {
	descriptors := Descriptors(s)
	if len(descriptors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		parts = append(parts, countPhrase(d))
	}
	return strings.Join(parts, ", ")
}

func countPhrase(d Descriptor) string {
	noun := "conflict"
	if d.Count != 1 {
		noun = "conflicts"
	}
	return fmt.Sprintf("%d %s %s", d.Count, d.Domain, noun)
}
