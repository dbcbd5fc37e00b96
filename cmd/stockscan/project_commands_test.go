package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"stockscan/internal/testsupport"
	"stockscan/internal/warehouse"
)

func TestProjectReschedule(t *testing.T) {
	env := setupCLITestEnv(t, true)

	out := env.mustRun(t, "", "project", "reschedule", "42",
		"--name", "Gala", "--client", "ACME", "--start", "2026-11-01", "--end", "2026-11-03")
	if !strings.Contains(out, "project dates updated") {
		t.Fatalf("unexpected output: %s", out)
	}

	want := []testsupport.RecordedDates{{
		ProjectID: "42",
		Dates: warehouse.ProjectDates{
			Name:       "Gala",
			ClientName: "ACME",
			StartDate:  "2026-11-01",
			EndDate:    "2026-11-03",
		},
	}}
	if diff := cmp.Diff(want, env.api.DateUpdates()); diff != "" {
		t.Fatalf("date updates mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectRescheduleReportsConflicts(t *testing.T) {
	env := setupCLITestEnv(t, true)
	env.api.QueueDatesResponse(http.StatusConflict, `{"code":"conflict","crew_conflicts":[{"id":1}],"transport_conflicts":[{"id":2},{"id":3}]}`)

	_, err := env.run(t, "", "project", "reschedule", "42",
		"--name", "Gala", "--start", "2026-11-01", "--end", "2026-11-03")
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if got, want := err.Error(), "Scheduling conflict detected. (1 crew conflict, 2 transport conflicts)"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

func TestProjectRescheduleValidatesLocally(t *testing.T) {
	env := setupCLITestEnv(t, true)

	if _, err := env.run(t, "", "project", "reschedule", "42",
		"--name", "Gala", "--start", "2026-11-03", "--end", "2026-11-01"); err == nil {
		t.Fatal("expected validation error for end before start")
	}
	if _, err := env.run(t, "", "project", "reschedule", "4x2", "--name", "Gala"); err == nil {
		t.Fatal("expected validation error for non-numeric id")
	}
	if n := len(env.api.DateUpdates()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}
