// Package server exposes the activity store and aggregation engine over a
// local JSON API. The editor sampler and browser extension post records in;
// the dashboard reads derived views out.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/francis-agencemxo/devtrack/internal/report"
	"github.com/francis-agencemxo/devtrack/internal/store"
)

type Server struct {
	store  *store.Store
	logger *slog.Logger
}

func New(st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Server{store: st, logger: logger}
}

// Handler builds the route table. Method-scoped patterns keep the
// handlers free of method dispatch.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/project-totals", s.handleProjectTotals)
	mux.HandleFunc("GET /api/daily-totals", s.handleDailyTotals)
	mux.HandleFunc("GET /api/weekly", s.handleWeekly)
	mux.HandleFunc("GET /api/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/file-activity", s.handleFileActivity)
	mux.HandleFunc("GET /api/url-activity", s.handleURLActivity)

	mux.HandleFunc("GET /api/project-names", s.handleGetProjectNames)
	mux.HandleFunc("POST /api/project-names", s.handleSetProjectName)
	mux.HandleFunc("GET /api/ignored-projects", s.handleGetIgnored)
	mux.HandleFunc("POST /api/ignored-projects", s.handleIgnore)
	mux.HandleFunc("DELETE /api/ignored-projects/{name}", s.handleUnignore)
	mux.HandleFunc("GET /api/urls", s.handleGetURLPatterns)
	mux.HandleFunc("POST /api/urls", s.handleAddURLPattern)
	mux.HandleFunc("DELETE /api/urls/{id}", s.handleDeleteURLPattern)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)

	mux.HandleFunc("POST /url-track", s.handleURLTrack)
	mux.HandleFunc("POST /api/activity", s.handleActivity)
	mux.HandleFunc("POST /api/reassign", s.handleReassign)

	return s.withRequestLog(mux)
}

// withRequestLog tags each request with an id and logs method, path,
// status and elapsed time.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info("request",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"elapsed_ms", time.Since(started).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// reportContext assembles a fresh aggregation context: records in range,
// the current ignored set, idle timeout and reporting timezone. Settings
// are re-read on every call; nothing is cached between requests.
func (s *Server) reportContext(from, to *time.Time) (report.Context, error) {
	records, err := s.store.ListRecords(store.RecordFilter{From: from, To: to})
	if err != nil {
		return report.Context{}, err
	}
	ignored, err := s.store.IgnoredSet()
	if err != nil {
		return report.Context{}, err
	}
	return report.Context{
		Records:          records,
		Ignored:          ignored,
		IdleTimeout:      s.store.IdleTimeout(),
		Location:         s.store.ReportingLocation(),
		Reference:        time.Now(),
		DailyTargetHours: float64(s.store.DailyTargetSeconds()) / 3600,
	}, nil
}
