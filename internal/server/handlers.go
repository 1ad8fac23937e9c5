package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/francis-agencemxo/devtrack/internal/classify"
	"github.com/francis-agencemxo/devtrack/internal/report"
	"github.com/francis-agencemxo/devtrack/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryDate parses a YYYY-MM-DD query value in the reporting timezone.
// Returns nil when the parameter is absent.
func (s *Server) queryDate(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, s.store.ReportingLocation())
	if err != nil {
		return nil, fmt.Errorf("bad %s date %q", name, v)
	}
	return &t, nil
}

// --- Aggregated views ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	from, err := s.queryDate(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := s.queryDate(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to != nil {
		// "to" is inclusive on the wire; the store filter is exclusive.
		t := to.AddDate(0, 0, 1)
		to = &t
	}

	ctx, err := s.reportContext(from, to)
	if err != nil {
		s.logger.Error("build stats", "error", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report.BuildStats(ctx))
}

type projectInfo struct {
	Name         string `json:"name"`
	CustomName   string `json:"customName,omitempty"`
	Client       string `json:"client,omitempty"`
	WrikeID      string `json:"wrikeId,omitempty"`
	Ignored      bool   `json:"ignored"`
	RecordCount  int    `json:"recordCount"`
	TotalSeconds int64  `json:"duration"`
	LastActive   string `json:"lastActive,omitempty"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ProjectSummaries()
	if err != nil {
		s.logger.Error("project summaries", "error", err)
		writeError(w, http.StatusInternalServerError, "projects unavailable")
		return
	}
	names, _ := s.store.CustomNames()
	clients, _ := s.store.Clients()
	ignored, _ := s.store.IgnoredSet()
	wrike := make(map[string]string)
	if mappings, err := s.store.WrikeMappings(); err == nil {
		for _, m := range mappings {
			wrike[m.ProjectName] = m.WrikeID
		}
	}

	infos := make([]projectInfo, 0, len(summaries))
	for _, ps := range summaries {
		info := projectInfo{
			Name:         ps.Project,
			CustomName:   names[ps.Project],
			Client:       clients[ps.Project],
			WrikeID:      wrike[ps.Project],
			Ignored:      ignored[ps.Project],
			RecordCount:  ps.RecordCount,
			TotalSeconds: ps.TotalSeconds,
		}
		if !ps.LastActive.IsZero() {
			info.LastActive = ps.LastActive.UTC().Format(time.RFC3339)
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleProjectTotals(w http.ResponseWriter, r *http.Request) {
	from, err := s.queryDate(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := s.queryDate(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to != nil {
		t := to.AddDate(0, 0, 1)
		to = &t
	}

	ctx, err := s.reportContext(from, to)
	if err != nil {
		s.logger.Error("project totals", "error", err)
		writeError(w, http.StatusInternalServerError, "totals unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report.ProjectTotals(ctx))
}

func (s *Server) handleDailyTotals(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeError(w, http.StatusBadRequest, "project required")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	ctx, err := s.reportContext(nil, nil)
	if err != nil {
		s.logger.Error("daily totals", "error", err)
		writeError(w, http.StatusInternalServerError, "totals unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report.DailyTotals(ctx, project, days))
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	ref, err := s.queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, err := s.reportContext(nil, nil)
	if err != nil {
		s.logger.Error("weekly series", "error", err)
		writeError(w, http.StatusInternalServerError, "weekly unavailable")
		return
	}
	at := ctx.Reference
	if ref != nil {
		at = *ref
	}
	weekStart := report.WeekStart(at, s.store.ReportingLocation(), s.store.WeekStartDay())

	writeJSON(w, http.StatusOK, map[string]any{
		"weekStart":   weekStart.Format("2006-01-02"),
		"days":        report.WeeklySeries(ctx, weekStart),
		"targetHours": report.TargetHoursForWeek(ctx),
	})
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	ctx, err := s.reportContext(nil, nil)
	if err != nil {
		s.logger.Error("monthly trend", "error", err)
		writeError(w, http.StatusInternalServerError, "monthly unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report.MonthlyTrend(ctx))
}

func (s *Server) handleFileActivity(w http.ResponseWriter, r *http.Request) {
	s.handleItemActivity(w, r, report.FileActivity)
}

func (s *Server) handleURLActivity(w http.ResponseWriter, r *http.Request) {
	s.handleItemActivity(w, r, report.URLActivity)
}

func (s *Server) handleItemActivity(w http.ResponseWriter, r *http.Request, view func(report.Context, string, string) []report.ItemActivity) {
	project := r.URL.Query().Get("project")
	date := r.URL.Query().Get("date")
	if project == "" || date == "" {
		writeError(w, http.StatusBadRequest, "project and date required")
		return
	}

	ctx, err := s.reportContext(nil, nil)
	if err != nil {
		s.logger.Error("item activity", "error", err)
		writeError(w, http.StatusInternalServerError, "activity unavailable")
		return
	}
	writeJSON(w, http.StatusOK, view(ctx, project, date))
}

// --- Metadata ---

func (s *Server) handleGetProjectNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.CustomNames()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "project names unavailable")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleSetProjectName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project    string `json:"project"`
		CustomName string `json:"customName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Project == "" {
		writeError(w, http.StatusBadRequest, "project required")
		return
	}
	if err := s.store.SetCustomName(req.Project, req.CustomName); err != nil {
		writeError(w, http.StatusInternalServerError, "set name failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetIgnored(w http.ResponseWriter, r *http.Request) {
	ignored, err := s.store.ListIgnoredProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ignored projects unavailable")
		return
	}
	out := make([]map[string]any, 0, len(ignored))
	for _, ip := range ignored {
		out = append(out, map[string]any{
			"id":          ip.ID,
			"projectName": ip.ProjectName,
			"ignoredAt":   ip.IgnoredAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIgnore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project string `json:"project"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Project == "" {
		writeError(w, http.StatusBadRequest, "project required")
		return
	}
	if err := s.store.IgnoreProject(req.Project); err != nil {
		writeError(w, http.StatusInternalServerError, "ignore failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUnignore(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.store.UnignoreProject(name); err != nil {
		writeError(w, http.StatusInternalServerError, "unignore failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetURLPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.store.ListURLPatterns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "url patterns unavailable")
		return
	}
	if patterns == nil {
		patterns = []store.URLPattern{}
	}
	writeJSON(w, http.StatusOK, patterns)
}

func (s *Server) handleAddURLPattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project string `json:"project"`
		Pattern string `json:"pattern"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Project == "" || req.Pattern == "" {
		writeError(w, http.StatusBadRequest, "project and pattern required")
		return
	}
	p, err := s.store.AddURLPattern(req.Project, req.Pattern)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "add pattern failed")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeleteURLPattern(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad pattern id")
		return
	}
	if err := s.store.DeleteURLPattern(id); err != nil {
		writeError(w, http.StatusInternalServerError, "delete pattern failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetAllSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "settings unavailable")
		return
	}
	out := make(map[string]string, len(settings))
	for _, st := range settings {
		out[st.Key] = st.Value
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req) == 0 {
		writeError(w, http.StatusBadRequest, "settings body required")
		return
	}
	for k, v := range req {
		if err := s.store.SetSetting(k, v); err != nil {
			writeError(w, http.StatusInternalServerError, "save settings failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Record intake ---

type trackRequest struct {
	URL      string `json:"url"`
	Host     string `json:"host"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Project  string `json:"project"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration int64  `json:"duration"`
}

// handleURLTrack classifies a browser/meeting visit and appends it. The
// request's project field is the fallback when no pattern matches.
func (s *Server) handleURLTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}

	start, end, err := parseInterval(req.Start, req.End, req.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.Before(start) {
		s.logger.Warn("record interval ends before it starts", "url", req.URL, "start", req.Start, "end", req.End)
	}

	record := store.ActivityRecord{
		Project: req.Project,
		Type:    store.TypeBrowsing,
		Start:   start,
		End:     end,
		URL:     req.URL,
		Host:    req.Host,
	}

	if req.Type == string(store.TypeMeeting) {
		record.Type = store.TypeMeeting
		record.MeetingTitle = req.Title
		patterns, _ := s.store.ListMeetingPatterns()
		if matched, ok := classify.Meeting(req.URL, patterns); ok {
			record.Project = matched.Project
			if err := s.store.TouchMeetingPattern(matched.ID, time.Now()); err != nil {
				s.logger.Warn("touch meeting pattern", "id", matched.ID, "error", err)
			}
		}
	} else {
		patterns, _ := s.store.ListURLPatterns()
		if project, ok := classify.URL(req.URL, patterns); ok {
			record.Project = project
		}
	}

	if record.Project == "" {
		writeError(w, http.StatusBadRequest, "no matching pattern and no fallback project")
		return
	}

	inserted, err := s.store.InsertRecord(record)
	if err != nil {
		s.logger.Error("insert tracked url", "error", err)
		writeError(w, http.StatusInternalServerError, "insert failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": inserted.ID, "project": inserted.Project})
}

// handleActivity appends a coding record from the editor sampler.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project  string `json:"project"`
		File     string `json:"file"`
		Start    string `json:"start"`
		End      string `json:"end"`
		Duration int64  `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Project == "" {
		writeError(w, http.StatusBadRequest, "project required")
		return
	}

	start, end, err := parseInterval(req.Start, req.End, req.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if end.Before(start) {
		s.logger.Warn("record interval ends before it starts", "project", req.Project, "start", req.Start, "end", req.End)
	}

	inserted, err := s.store.InsertRecord(store.ActivityRecord{
		Project: req.Project,
		Type:    store.TypeCoding,
		Start:   start,
		End:     end,
		File:    req.File,
	})
	if err != nil {
		s.logger.Error("insert activity", "error", err)
		writeError(w, http.StatusInternalServerError, "insert failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": inserted.ID})
}

func (s *Server) handleReassign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs     []int64 `json:"ids"`
		Project string  `json:"project"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ids and project required")
		return
	}

	moved, err := s.store.ReassignRecords(req.IDs, req.Project)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"moved": moved})
}

// parseInterval resolves a record's [start, end) from RFC3339 fields, using
// duration seconds when end is absent.
func parseInterval(startStr, endStr string, duration int64) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad start timestamp %q", startStr)
	}
	if endStr == "" {
		if duration < 0 {
			duration = 0
		}
		return start, start.Add(time.Duration(duration) * time.Second), nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad end timestamp %q", endStr)
	}
	return start, end, nil
}
