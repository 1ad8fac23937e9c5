package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/francis-agencemxo/devtrack/internal/report"
	"github.com/francis-agencemxo/devtrack/internal/store"
)

type reportMode int

const (
	reportWeekly reportMode = iota
	reportMonthly
)

type reportsModel struct {
	store  *store.Store
	width  int
	height int

	mode   reportMode
	offset int // weeks back from the current week (0 = current)

	week        []report.WeekDay
	weekStart   time.Time
	targetHours float64
	months      []report.MonthTotal

	chart barchart.Model
}

func newReportsModel(s *store.Store) reportsModel {
	return reportsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	week        []report.WeekDay
	weekStart   time.Time
	targetHours float64
	months      []report.MonthTotal
}

func (r reportsModel) refresh() tea.Cmd {
	st := r.store
	offset := r.offset
	return func() tea.Msg {
		loc := st.ReportingLocation()
		records, err := st.ListRecords(store.RecordFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Report error: %v", err), isError: true}
		}
		ignored, _ := st.IgnoredSet()

		ctx := report.Context{
			Records:          records,
			Ignored:          ignored,
			IdleTimeout:      st.IdleTimeout(),
			Location:         loc,
			Reference:        time.Now(),
			DailyTargetHours: float64(st.DailyTargetSeconds()) / 3600,
		}

		weekStart := report.WeekStart(ctx.Reference, loc, st.WeekStartDay()).AddDate(0, 0, -7*offset)
		return reportsDataMsg{
			week:        report.WeeklySeries(ctx, weekStart),
			weekStart:   weekStart,
			targetHours: report.TargetHoursForWeek(ctx),
			months:      report.MonthlyTrend(ctx),
		}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.week = msg.week
		r.weekStart = msg.weekStart
		r.targetHours = msg.targetHours
		r.months = msg.months
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Tab):
			if r.mode == reportWeekly {
				r.mode = reportMonthly
			} else {
				r.mode = reportWeekly
			}
			r.buildChart()
			return r, nil
		}
	}
	return r, nil
}

// weekProjects returns the projects appearing in the loaded week, in a
// stable order so chart colors stay put while navigating.
func (r reportsModel) weekProjects() []string {
	seen := make(map[string]bool)
	var projects []string
	for _, day := range r.week {
		for project := range day.Hours {
			if !seen[project] {
				seen[project] = true
				projects = append(projects, project)
			}
		}
	}
	sort.Strings(projects)
	return projects
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	switch r.mode {
	case reportMonthly:
		for _, m := range r.months {
			bars = append(bars, barchart.BarData{
				Label: m.Month,
				Values: []barchart.BarValue{{
					Name:  m.Month,
					Value: m.Hours,
					Style: lipgloss.NewStyle().Foreground(colorPrimary),
				}},
			})
		}
	default:
		projects := r.weekProjects()
		colorOf := make(map[string]lipgloss.Color, len(projects))
		for i, p := range projects {
			colorOf[p] = projectColor(i)
		}
		for _, day := range r.week {
			var values []barchart.BarValue
			for _, project := range projects {
				hours, ok := day.Hours[project]
				if !ok || hours == 0 {
					continue
				}
				values = append(values, barchart.BarValue{
					Name:  project,
					Value: hours,
					Style: lipgloss.NewStyle().Foreground(colorOf[project]),
				})
			}
			if len(values) == 0 {
				values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
			}
			bars = append(bars, barchart.BarData{
				Label:  day.Label,
				Values: values,
			})
		}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	weeklyTab := inactiveTabStyle.Render("Weekly")
	monthlyTab := inactiveTabStyle.Render("Monthly")
	if r.mode == reportWeekly {
		weeklyTab = activeTabStyle.Render("Weekly")
	} else {
		monthlyTab = activeTabStyle.Render("Monthly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, weeklyTab, monthlyTab)

	var rangeLabel string
	if r.mode == reportWeekly && !r.weekStart.IsZero() {
		weekEnd := r.weekStart.AddDate(0, 0, 6)
		rangeLabel = mutedStyle.Render(fmt.Sprintf("%s — %s",
			r.weekStart.Format("Jan 02"), weekEnd.Format("Jan 02, 2006")))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", rangeLabel,
	)

	chartView := r.chart.View()
	table := r.renderSummaryTable(w)
	legend := r.renderLegend()
	nav := mutedStyle.Render("  ←/→: navigate weeks  tab: weekly/monthly")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", legend, "", table, "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if r.mode == reportMonthly {
		if len(r.months) == 0 {
			return mutedStyle.Render("  No data yet")
		}
		var rows []string
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s %10s %8s", "Month", "Duration", "Hours")))
		for _, m := range r.months {
			rows = append(rows, fmt.Sprintf("  %-10s %10s %7.1fh", m.Month, formatSeconds(m.Seconds), m.Hours))
		}
		return strings.Join(rows, "\n")
	}

	if len(r.week) == 0 {
		return mutedStyle.Render("  No data for this week")
	}

	var weekTotal int64
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-5s %10s %8s", "Date", "Day", "Tracked", "Target")))
	for _, day := range r.week {
		weekTotal += day.Seconds
		target := mutedStyle.Render(fmt.Sprintf("%5.1fh", day.Target))
		tracked := formatSeconds(day.Seconds)
		if float64(day.Seconds)/3600 >= day.Target && day.Target > 0 {
			tracked = successStyle.Render(tracked)
		}
		rows = append(rows, fmt.Sprintf("  %-12s %-5s %10s %8s", day.Date, day.Label, tracked, target))
	}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 40))))
	rows = append(rows, fmt.Sprintf("  %-18s %10s %7.1fh",
		"Week total", formatSeconds(weekTotal), r.targetHours))

	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	if r.mode == reportMonthly {
		return ""
	}
	var items []string
	for i, project := range r.weekProjects() {
		dot := lipgloss.NewStyle().Foreground(projectColor(i)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, project))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
