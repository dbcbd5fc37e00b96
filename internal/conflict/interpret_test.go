package conflict

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"stockscan/internal/services"
	"stockscan/internal/warehouse"
)

func raw(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(fmt.Sprintf(`{"id":%d}`, i+1))
	}
	return out
}

func TestInterpretPassesThroughNonConflicts(t *testing.T) {
	fallback := "Could not update project dates."
	cases := map[string]error{
		"nil":         nil,
		"plain":       errors.New("boom"),
		"network":     services.Wrap(services.ErrNetwork, "warehouse", "submit", "request failed", nil),
		"bundle mode": &warehouse.APIError{StatusCode: 409, Code: warehouse.CodeBundleModeRequired, Message: "pick"},
		"not found":   &warehouse.APIError{StatusCode: 404, Detail: "missing"},
		"other 409":   &warehouse.APIError{StatusCode: 409, Code: "locked", CrewConflicts: raw(2)},
	}
	for name, err := range cases {
		t.Run(name, func(t *testing.T) {
			if got := Interpret(err, fallback); got != fallback {
				t.Fatalf("Interpret = %q, want fallback", got)
			}
		})
	}
}

func TestInterpretCounts(t *testing.T) {
	cases := []struct {
		name string
		err  *warehouse.APIError
		want string
	}{
		{
			name: "crew only",
			err:  &warehouse.APIError{StatusCode: 409, Code: "conflict", Message: "Crew double-booked", CrewConflicts: raw(2)},
			want: "Crew double-booked (2 crew conflicts)",
		},
		{
			name: "transport singular",
			err:  &warehouse.APIError{StatusCode: 409, Code: "conflict", TransportConflicts: raw(1)},
			want: "Scheduling conflict detected. (1 transport conflict)",
		},
		{
			name: "both",
			err:  &warehouse.APIError{StatusCode: 409, Code: "conflict", Detail: "Overlap", CrewConflicts: raw(2), TransportConflicts: raw(1)},
			want: "Overlap (2 crew conflicts, 1 transport conflict)",
		},
		{
			name: "none uses payload message",
			err:  &warehouse.APIError{StatusCode: 409, Code: "conflict", Message: "Window taken"},
			want: "Window taken",
		},
		{
			name: "none without message",
			err:  &warehouse.APIError{StatusCode: 409, Code: "conflict"},
			want: DefaultMessage,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("update project dates: %w", tc.err)
			if got := Interpret(wrapped, "fallback"); got != tc.want {
				t.Fatalf("Interpret = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeVariants(t *testing.T) {
	if _, ok := Decode(nil, []json.RawMessage{}).(None); !ok {
		t.Fatal("expected None for empty arrays")
	}
	if _, ok := Decode(raw(1), nil).(CrewOnly); !ok {
		t.Fatal("expected CrewOnly")
	}
	if _, ok := Decode(nil, raw(3)).(TransportOnly); !ok {
		t.Fatal("expected TransportOnly")
	}
	both := Decode(raw(2), raw(1))
	if _, ok := both.(Both); !ok {
		t.Fatalf("expected Both, got %T", both)
	}
	got := Descriptors(both)
	want := []Descriptor{
		{Domain: DomainCrew, Count: 2, Details: raw(2)},
		{Domain: DomainTransport, Count: 1, Details: raw(1)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("descriptors mismatch (-want +got):\n%s", diff)
	}
	if Descriptors(None{}) != nil {
		t.Fatal("expected no descriptors for None")
	}
}
