package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

func sampleRecords(t *testing.T) []store.ActivityRecord {
	t.Helper()
	start, _ := time.Parse(time.RFC3339, "2024-01-01T09:00:00Z")
	return []store.ActivityRecord{
		{
			ID: 1, Project: "repo-x", Type: store.TypeCoding,
			Start: start, End: start.Add(90 * time.Minute), File: "main.go",
		},
		{
			ID: 2, Project: "misc", Type: store.TypeBrowsing,
			Start: start, End: start.Add(5 * time.Minute), URL: "https://docs.example.com",
		},
	}
}

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	names := map[string]string{"repo-x": "Client Portal"}

	if err := ToCSV(sampleRecords(t), names, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Project" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	// Custom name substituted; unmapped project kept raw.
	if rows[1][1] != "Client Portal" {
		t.Fatalf("project = %q, want Client Portal", rows[1][1])
	}
	if rows[2][1] != "misc" {
		t.Fatalf("project = %q, want misc", rows[2][1])
	}
	if rows[1][5] != "5400" || rows[1][6] != "01:30:00" {
		t.Fatalf("duration columns = %q / %q", rows[1][5], rows[1][6])
	}
}

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	if err := ToJSON(sampleRecords(t), nil, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got struct {
		ExportedAt string `json:"exported_at"`
		Count      int    `json:"count"`
		Records    []struct {
			Project     string `json:"project"`
			Type        string `json:"type"`
			DurationSec int64  `json:"duration_seconds"`
			Duration    string `json:"duration"`
			File        string `json:"file"`
			URL         string `json:"url"`
		} `json:"records"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Count != 2 || len(got.Records) != 2 {
		t.Fatalf("count = %d, records = %d", got.Count, len(got.Records))
	}
	if got.Records[0].Project != "repo-x" || got.Records[0].DurationSec != 5400 || got.Records[0].Duration != "01:30:00" {
		t.Fatalf("unexpected first record: %+v", got.Records[0])
	}
	if got.Records[1].Type != "browsing" || got.Records[1].URL != "https://docs.example.com" {
		t.Fatalf("unexpected second record: %+v", got.Records[1])
	}
}

func TestDisplayName(t *testing.T) {
	names := map[string]string{"a": "Alpha", "b": ""}
	if got := displayName("a", names); got != "Alpha" {
		t.Fatalf("got %q", got)
	}
	// Empty override falls back to the raw name.
	if got := displayName("b", names); got != "b" {
		t.Fatalf("got %q", got)
	}
	if got := displayName("c", names); got != "c" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{3661, "01:01:01"},
		{36000, "10:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
