package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/francis-agencemxo/devtrack/internal/report"
	"github.com/francis-agencemxo/devtrack/internal/store"
)

// snapshot is one fetched view of today's aggregates. The dashboard always
// renders the last good snapshot; a failed refresh never blanks the view.
type snapshot struct {
	date      string
	totals    []report.ProjectTotal
	today     map[string]report.DayProject
	files     []report.ItemActivity
	urls      []report.ItemActivity
	fetchedAt time.Time
}

type dashboardModel struct {
	store  *store.Store
	width  int
	height int

	// gen numbers fetches; a result whose gen is not the most recently
	// issued one was superseded mid-flight and is discarded.
	gen      int
	snap     *snapshot
	fetchErr error

	selected int
}

func newDashboardModel(s *store.Store) dashboardModel {
	return dashboardModel{store: s}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	gen  int
	snap *snapshot
	err  error
}

// loadData fetches a fresh snapshot for today. It runs in a tea command so
// the UI never blocks on the store.
func (d *dashboardModel) loadData() tea.Cmd {
	d.gen++
	gen := d.gen
	st := d.store
	selected := d.selectedProject()

	return func() tea.Msg {
		snap, err := fetchSnapshot(st, selected)
		return dashboardDataMsg{gen: gen, snap: snap, err: err}
	}
}

func fetchSnapshot(st *store.Store, selectedProject string) (*snapshot, error) {
	loc := st.ReportingLocation()
	now := time.Now()
	dayStart := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	records, err := st.ListRecords(store.RecordFilter{From: &dayStart, To: &dayEnd})
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	ignored, err := st.IgnoredSet()
	if err != nil {
		return nil, fmt.Errorf("fetch ignored projects: %w", err)
	}

	ctx := report.Context{
		Records:     records,
		Ignored:     ignored,
		IdleTimeout: st.IdleTimeout(),
		Location:    loc,
		Reference:   now,
	}

	date := dayStart.Format("2006-01-02")
	snap := &snapshot{
		date:      date,
		totals:    report.ProjectTotals(ctx),
		today:     report.BuildStats(ctx)[date],
		fetchedAt: now,
	}
	if selectedProject != "" {
		snap.files = report.FileActivity(ctx, selectedProject, date)
		snap.urls = report.URLActivity(ctx, selectedProject, date)
	}
	return snap, nil
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.gen != d.gen {
			// Superseded by a newer fetch; last writer wins.
			return d, nil
		}
		if msg.err != nil {
			d.fetchErr = msg.err
			return d, nil
		}
		d.fetchErr = nil
		d.snap = msg.snap
		if d.selected >= len(msg.snap.totals) {
			d.selected = 0
		}
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.selected > 0 {
				d.selected--
				return d, d.loadData()
			}
		case key.Matches(msg, keys.Down):
			if d.snap != nil && d.selected < len(d.snap.totals)-1 {
				d.selected++
				return d, d.loadData()
			}
		}
	}
	return d, nil
}

func (d dashboardModel) selectedProject() string {
	if d.snap == nil || d.selected >= len(d.snap.totals) {
		return ""
	}
	return d.snap.totals[d.selected].Name
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	contentWidth := d.width - 4

	if d.snap == nil {
		if d.fetchErr != nil {
			return panelStyle.Width(contentWidth).Render(
				errorStyle.Render("Could not load today's activity: " + d.fetchErr.Error()),
			)
		}
		return panelStyle.Width(contentWidth).Render(mutedStyle.Render("Loading..."))
	}

	totals := d.renderTotalsPanel(contentWidth)
	detail := d.renderDetailPanel(contentWidth)

	var stale string
	if d.fetchErr != nil {
		stale = warningStyle.Render(fmt.Sprintf(
			" ⚠ showing data from %s (refresh failed)", d.snap.fetchedAt.Format("15:04:05"),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, totals, detail, stale)
}

func (d dashboardModel) renderTotalsPanel(w int) string {
	var dayTotal int64
	for _, t := range d.snap.totals {
		dayTotal += t.Seconds
	}

	title := titleStyle.Render("Today " + d.snap.date)
	total := highlightStyle.Render(formatSeconds(dayTotal))
	header := fmt.Sprintf("%s  %s", title, total)

	if len(d.snap.totals) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No activity recorded today"),
		))
	}

	rows := []string{header, ""}
	barWidth := max(10, w-52)
	for i, t := range d.snap.totals {
		cursor := "  "
		style := normalItemStyle
		if i == d.selected {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := lipgloss.NewStyle().Foreground(projectColor(i)).Render("●")
		pct := report.Percent(t.Seconds, dayTotal)
		bar := renderBar(pct, barWidth, projectColor(i))
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-22s %s %s %5.1f%%",
			cursor, dot, truncate(t.Name, 22), formatSeconds(t.Seconds), bar, pct,
		)))
	}

	sessions := 0
	if dp, ok := d.snap.today[d.selectedProject()]; ok {
		sessions = len(dp.Sessions)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d merged sessions for %s", sessions, d.selectedProject())))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderDetailPanel(w int) string {
	project := d.selectedProject()
	title := titleStyle.Render("Activity — " + project)

	var rows []string
	rows = append(rows, title)

	if len(d.snap.files) == 0 && len(d.snap.urls) == 0 {
		rows = append(rows, mutedStyle.Render("No file or URL activity today"))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	if len(d.snap.files) > 0 {
		rows = append(rows, mutedStyle.Render("Files"))
		for _, f := range topItems(d.snap.files, 5) {
			rows = append(rows, fmt.Sprintf("  %-40s %s %s",
				truncate(f.Name, 40), formatSeconds(f.Seconds), renderHourStrip(f.TimeByHour),
			))
		}
	}
	if len(d.snap.urls) > 0 {
		rows = append(rows, mutedStyle.Render("URLs"))
		for _, u := range topItems(d.snap.urls, 5) {
			rows = append(rows, fmt.Sprintf("  %-40s %s %s",
				truncate(u.Name, 40), formatSeconds(u.Seconds), renderHourStrip(u.TimeByHour),
			))
		}
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func topItems(items []report.ItemActivity, n int) []report.ItemActivity {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// renderHourStrip draws a 24-cell sparkline of the hourly distribution.
func renderHourStrip(byHour [24]int64) string {
	var peak int64
	for _, v := range byHour {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return mutedStyle.Render(strings.Repeat("·", 24))
	}

	levels := []rune("·▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, v := range byHour {
		idx := int(v * int64(len(levels)-1) / peak)
		b.WriteRune(levels[idx])
	}
	return highlightStyle.Render(b.String())
}

func renderBar(pct float64, width int, color lipgloss.Color) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
