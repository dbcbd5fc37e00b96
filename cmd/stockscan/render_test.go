package main

import (
	"strings"
	"testing"

	"stockscan/internal/scan"
)

func TestStateLabel(t *testing.T) {
	cases := map[scan.State]string{
		scan.Idle:               "Idle",
		scan.QueuedOffline:      "Queued Offline",
		scan.AwaitingBundleMode: "Awaiting Bundle Mode",
	}
	for state, want := range cases {
		if got := stateLabel(state); got != want {
			t.Errorf("stateLabel(%v) = %q, want %q", state, got, want)
		}
	}
}

func TestStatusLine(t *testing.T) {
	view := scan.View{
		State:      scan.Rejected,
		Tag:        "T-9",
		Status:     scan.MsgTagNotLinked,
		StatusKind: scan.StatusError,
		Pending:    2,
	}
	want := "[Rejected] T-9 error: tag not linked to an item or bundle (pending 2)"
	if got := statusLine(view); got != want {
		t.Fatalf("statusLine = %q, want %q", got, want)
	}
}

func TestRenderTablePadsRowsAndPrintsCaption(t *testing.T) {
	out := renderTable([]column{textCol("Tag"), numCol("Qty")}, [][]string{{"T1", "3"}, {"T2"}}, "2 of 10 slots used")
	for _, want := range []string{"Tag", "Qty", "T1", "T2", "2 of 10 slots used"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
	if renderTable(nil, [][]string{{"x"}}, "") != "" {
		t.Fatal("expected empty output without columns")
	}
}
