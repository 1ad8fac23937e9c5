package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, NewNopLogger()), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func insertCoding(t *testing.T, st *store.Store, project, start, end string) *store.ActivityRecord {
	t.Helper()
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	r, err := st.InsertRecord(store.ActivityRecord{
		Project: project, Type: store.TypeCoding, Start: s, End: e, File: "main.go",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return r
}

// ============================================================
// Record intake
// ============================================================

func TestActivityInsert(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "POST", "/api/activity", map[string]any{
		"project": "alpha",
		"file":    "main.go",
		"start":   "2024-01-01T09:00:00Z",
		"end":     "2024-01-01T09:30:00Z",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	records, _ := st.ListRecords(store.RecordFilter{Project: "alpha"})
	if len(records) != 1 || records[0].Type != store.TypeCoding || records[0].File != "main.go" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].Seconds() != 1800 {
		t.Fatalf("Seconds() = %d", records[0].Seconds())
	}
}

func TestActivityDurationInsteadOfEnd(t *testing.T) {
	srv, st := newTestServer(t)

	w := doJSON(t, srv.Handler(), "POST", "/api/activity", map[string]any{
		"project":  "alpha",
		"start":    "2024-01-01T09:00:00Z",
		"duration": 600,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	records, _ := st.ListRecords(store.RecordFilter{})
	if records[0].Seconds() != 600 {
		t.Fatalf("Seconds() = %d, want 600", records[0].Seconds())
	}
}

func TestActivityRejectsMissingProject(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv.Handler(), "POST", "/api/activity", map[string]any{
		"start": "2024-01-01T09:00:00Z", "duration": 600,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestURLTrackClassifies(t *testing.T) {
	srv, st := newTestServer(t)
	if _, err := st.AddURLPattern("docs", "docs.example.com"); err != nil {
		t.Fatalf("add pattern: %v", err)
	}

	w := doJSON(t, srv.Handler(), "POST", "/url-track", map[string]any{
		"url":      "https://docs.example.com/page",
		"host":     "docs.example.com",
		"start":    "2024-01-01T09:00:00Z",
		"duration": 120,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var resp struct {
		Project string `json:"project"`
	}
	decode(t, w, &resp)
	if resp.Project != "docs" {
		t.Fatalf("project = %q, want docs", resp.Project)
	}

	records, _ := st.ListRecords(store.RecordFilter{})
	if len(records) != 1 || records[0].Type != store.TypeBrowsing || records[0].Project != "docs" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestURLTrackFallbackProject(t *testing.T) {
	srv, st := newTestServer(t)

	w := doJSON(t, srv.Handler(), "POST", "/url-track", map[string]any{
		"url":      "https://unknown.example.com",
		"project":  "misc",
		"start":    "2024-01-01T09:00:00Z",
		"duration": 60,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	records, _ := st.ListRecords(store.RecordFilter{})
	if records[0].Project != "misc" {
		t.Fatalf("project = %q, want fallback misc", records[0].Project)
	}
}

func TestURLTrackNoProjectResolved(t *testing.T) {
	srv, st := newTestServer(t)

	w := doJSON(t, srv.Handler(), "POST", "/url-track", map[string]any{
		"url":      "https://unknown.example.com",
		"start":    "2024-01-01T09:00:00Z",
		"duration": 60,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if records, _ := st.ListRecords(store.RecordFilter{}); len(records) != 0 {
		t.Fatal("nothing should be inserted without a project")
	}
}

func TestURLTrackMeetingTouchesPattern(t *testing.T) {
	srv, st := newTestServer(t)
	p, err := st.AddMeetingPattern("standup", "meet.google.com/abc", true)
	if err != nil {
		t.Fatalf("add pattern: %v", err)
	}

	w := doJSON(t, srv.Handler(), "POST", "/url-track", map[string]any{
		"url":      "https://meet.google.com/abc-defg",
		"type":     "meeting",
		"title":    "Daily standup",
		"start":    "2024-01-01T09:00:00Z",
		"duration": 900,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	records, _ := st.ListRecords(store.RecordFilter{})
	if records[0].Type != store.TypeMeeting || records[0].Project != "standup" || records[0].MeetingTitle != "Daily standup" {
		t.Fatalf("unexpected record: %+v", records[0])
	}

	patterns, _ := st.ListMeetingPatterns()
	for _, got := range patterns {
		if got.ID == p.ID && got.LastUsed == nil {
			t.Fatal("matching should record last_used")
		}
	}
}

func TestReassignEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	r1 := insertCoding(t, st, "misc", "2024-01-01T09:00:00Z", "2024-01-01T09:30:00Z")
	r2 := insertCoding(t, st, "misc", "2024-01-01T10:00:00Z", "2024-01-01T10:30:00Z")

	w := doJSON(t, srv.Handler(), "POST", "/api/reassign", map[string]any{
		"ids":     []int64{r1.ID, r2.ID},
		"project": "alpha",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var resp map[string]int64
	decode(t, w, &resp)
	if resp["moved"] != 2 {
		t.Fatalf("moved = %d, want 2", resp["moved"])
	}
}

func TestReassignBlankTargetRejected(t *testing.T) {
	srv, st := newTestServer(t)
	r := insertCoding(t, st, "misc", "2024-01-01T09:00:00Z", "2024-01-01T09:30:00Z")

	w := doJSON(t, srv.Handler(), "POST", "/api/reassign", map[string]any{
		"ids": []int64{r.ID}, "project": "",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

// ============================================================
// Aggregated views
// ============================================================

func TestStatsShape(t *testing.T) {
	srv, st := newTestServer(t)
	// Two records 5 minutes apart merge under the default 10m idle timeout.
	insertCoding(t, st, "alpha", "2024-01-01T09:00:00Z", "2024-01-01T09:40:00Z")
	insertCoding(t, st, "alpha", "2024-01-01T09:45:00Z", "2024-01-01T10:00:00Z")

	w := doJSON(t, srv.Handler(), "GET", "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var stats map[string]map[string]struct {
		Seconds  int64             `json:"duration"`
		Sessions []json.RawMessage `json:"sessions"`
	}
	decode(t, w, &stats)

	day, ok := stats["2024-01-01"]
	if !ok {
		t.Fatalf("missing day bucket: %v", stats)
	}
	alpha := day["alpha"]
	if alpha.Seconds != 3600 {
		t.Fatalf("duration = %d, want 3600", alpha.Seconds)
	}
	if len(alpha.Sessions) != 1 {
		t.Fatalf("expected 1 merged session, got %d", len(alpha.Sessions))
	}
}

func TestStatsDateRange(t *testing.T) {
	srv, st := newTestServer(t)
	insertCoding(t, st, "alpha", "2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z")
	insertCoding(t, st, "alpha", "2024-01-05T09:00:00Z", "2024-01-05T10:00:00Z")

	// "to" is inclusive.
	w := doJSON(t, srv.Handler(), "GET", "/api/stats?from=2024-01-01&to=2024-01-01", nil)
	var stats map[string]map[string]json.RawMessage
	decode(t, w, &stats)
	if len(stats) != 1 {
		t.Fatalf("expected only Jan 1, got %v", stats)
	}
	if _, ok := stats["2024-01-01"]; !ok {
		t.Fatalf("missing Jan 1: %v", stats)
	}
}

func TestStatsBadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv.Handler(), "GET", "/api/stats?from=yesterday", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStatsExcludesIgnored(t *testing.T) {
	srv, st := newTestServer(t)
	insertCoding(t, st, "scratch", "2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z")
	if err := st.IgnoreProject("scratch"); err != nil {
		t.Fatalf("ignore: %v", err)
	}

	w := doJSON(t, srv.Handler(), "GET", "/api/stats", nil)
	var stats map[string]map[string]json.RawMessage
	decode(t, w, &stats)
	if len(stats) != 0 {
		t.Fatalf("ignored project leaked: %v", stats)
	}
}

func TestProjectsEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	insertCoding(t, st, "alpha", "2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z")
	st.SetCustomName("alpha", "Alpha App")
	st.IgnoreProject("alpha")

	w := doJSON(t, srv.Handler(), "GET", "/api/projects", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var infos []projectInfo
	decode(t, w, &infos)
	if len(infos) != 1 {
		t.Fatalf("expected 1 project, got %d", len(infos))
	}
	got := infos[0]
	if got.Name != "alpha" || got.CustomName != "Alpha App" || !got.Ignored || got.TotalSeconds != 3600 {
		t.Fatalf("unexpected info: %+v", got)
	}
}

func TestFileActivityEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	insertCoding(t, st, "alpha", "2024-01-01T09:00:00Z", "2024-01-01T09:30:00Z")

	w := doJSON(t, srv.Handler(), "GET", "/api/file-activity?project=alpha&date=2024-01-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var items []struct {
		Name    string `json:"name"`
		Seconds int64  `json:"duration"`
	}
	decode(t, w, &items)
	if len(items) != 1 || items[0].Name != "main.go" || items[0].Seconds != 1800 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestFileActivityRequiresParams(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv.Handler(), "GET", "/api/file-activity?project=alpha", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestWeeklyEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	insertCoding(t, st, "alpha", "2024-01-01T09:00:00Z", "2024-01-01T13:00:00Z")

	w := doJSON(t, srv.Handler(), "GET", "/api/weekly?date=2024-01-03", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var resp struct {
		WeekStart   string            `json:"weekStart"`
		Days        []json.RawMessage `json:"days"`
		TargetHours float64           `json:"targetHours"`
	}
	decode(t, w, &resp)
	if resp.WeekStart != "2024-01-01" {
		t.Fatalf("weekStart = %q", resp.WeekStart)
	}
	if len(resp.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(resp.Days))
	}
	if resp.TargetHours != 40 {
		t.Fatalf("targetHours = %v, want 40", resp.TargetHours)
	}
}

// ============================================================
// Metadata endpoints
// ============================================================

func TestIgnoredProjectsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "POST", "/api/ignored-projects", map[string]string{"project": "scratch"})
	if w.Code != http.StatusOK {
		t.Fatalf("ignore status = %d", w.Code)
	}

	w = doJSON(t, h, "GET", "/api/ignored-projects", nil)
	var listed []map[string]any
	decode(t, w, &listed)
	if len(listed) != 1 || listed[0]["projectName"] != "scratch" {
		t.Fatalf("listed = %v", listed)
	}

	w = doJSON(t, h, "DELETE", "/api/ignored-projects/scratch", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unignore status = %d", w.Code)
	}

	w = doJSON(t, h, "GET", "/api/ignored-projects", nil)
	listed = nil
	decode(t, w, &listed)
	if len(listed) != 0 {
		t.Fatalf("expected empty list, got %v", listed)
	}
}

func TestURLPatternEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "POST", "/api/urls", map[string]string{"project": "docs", "pattern": "docs.example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body %s", w.Code, w.Body)
	}
	var created store.URLPattern
	decode(t, w, &created)

	w = doJSON(t, h, "GET", "/api/urls", nil)
	var patterns []store.URLPattern
	decode(t, w, &patterns)
	if len(patterns) != 1 || patterns[0].Pattern != "docs.example.com" {
		t.Fatalf("patterns = %+v", patterns)
	}

	w = doJSON(t, h, "DELETE", fmt.Sprintf("/api/urls/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, st := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, "PUT", "/api/settings", map[string]string{"idle_timeout": "300"})
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d", w.Code)
	}
	if got := st.IdleTimeout(); got != 5*time.Minute {
		t.Fatalf("idle timeout = %v, want 5m", got)
	}

	w = doJSON(t, h, "GET", "/api/settings", nil)
	var settings map[string]string
	decode(t, w, &settings)
	if settings["idle_timeout"] != "300" || settings["reporting_timezone"] != "UTC" {
		t.Fatalf("settings = %v", settings)
	}
}

func TestSettingsEmptyBodyRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv.Handler(), "PUT", "/api/settings", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
