package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/report"
)

// ============================================================
// Formatting helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{90 * time.Minute, "01:30:00"},
		{25*time.Hour + time.Minute + time.Second, "25:01:01"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(5400); got != "01:30:00" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0.0h"},
		{1800, "0.5h"},
		{28800, "8.0h"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.secs); got != tt.want {
			t.Errorf("formatHours(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"internal/server/handlers.go", 10, "internal/…"},
		{"ab", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestTopItems(t *testing.T) {
	items := []report.ItemActivity{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	if got := topItems(items, 2); len(got) != 2 || got[0].Name != "a" {
		t.Fatalf("got %+v", got)
	}
	if got := topItems(items, 5); len(got) != 3 {
		t.Fatalf("got %+v", got)
	}
}

// ============================================================
// Dashboard snapshot handling
// ============================================================

func TestDashboardDiscardsStaleFetch(t *testing.T) {
	d := dashboardModel{gen: 2}
	stale := &snapshot{date: "2024-01-01"}

	d, _ = d.update(dashboardDataMsg{gen: 1, snap: stale})
	if d.snap != nil {
		t.Fatal("superseded fetch result must be discarded")
	}

	fresh := &snapshot{date: "2024-01-02"}
	d, _ = d.update(dashboardDataMsg{gen: 2, snap: fresh})
	if d.snap != fresh {
		t.Fatal("current-generation result must be applied")
	}
}

func TestDashboardKeepsLastGoodSnapshotOnError(t *testing.T) {
	good := &snapshot{
		date:      "2024-01-02",
		totals:    []report.ProjectTotal{{Name: "alpha", Seconds: 3600}},
		fetchedAt: time.Now(),
	}
	d := dashboardModel{gen: 1}
	d, _ = d.update(dashboardDataMsg{gen: 1, snap: good})

	d.gen++
	d, _ = d.update(dashboardDataMsg{gen: 2, err: errors.New("db locked")})
	if d.snap != good {
		t.Fatal("failed refresh must not drop the last good snapshot")
	}
	if d.fetchErr == nil {
		t.Fatal("fetch error must be surfaced")
	}

	// A later successful fetch clears the error.
	d.gen++
	d, _ = d.update(dashboardDataMsg{gen: 3, snap: good})
	if d.fetchErr != nil {
		t.Fatal("successful fetch must clear the error")
	}
}

func TestDashboardResetsSelectionWhenOutOfRange(t *testing.T) {
	d := dashboardModel{gen: 1, selected: 3}
	snap := &snapshot{totals: []report.ProjectTotal{{Name: "alpha"}}}

	d, _ = d.update(dashboardDataMsg{gen: 1, snap: snap})
	if d.selected != 0 {
		t.Fatalf("selected = %d, want reset to 0", d.selected)
	}
	if d.selectedProject() != "alpha" {
		t.Fatalf("selectedProject = %q", d.selectedProject())
	}
}

func TestSelectedProjectEmptyWithoutSnapshot(t *testing.T) {
	var d dashboardModel
	if got := d.selectedProject(); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

// ============================================================
// Reports
// ============================================================

func TestWeekProjectsStableOrder(t *testing.T) {
	r := reportsModel{
		week: []report.WeekDay{
			{Hours: map[string]float64{"zeta": 2, "alpha": 1}},
			{Hours: map[string]float64{"mid": 3, "alpha": 1}},
		},
	}
	got := r.weekProjects()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
