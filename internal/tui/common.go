package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewProjects
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Projects", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type projectsChangedMsg struct{}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}
