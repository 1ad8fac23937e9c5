package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	idleTimeout *string
	timezone    *string
	dailyTarget *string
	weekStart   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	it, tz, dt, ws := "", "", "", ""
	return settingsModel{
		store:       s,
		idleTimeout: &it,
		timezone:    &tz,
		dailyTarget: &dt,
		weekStart:   &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		settings, _ := st.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.idleTimeout = secsToMin(s.getVal("idle_timeout", "600"))
	*s.timezone = s.getVal("reporting_timezone", "UTC")
	*s.dailyTarget = secsToHours(s.getVal("daily_target", "28800"))
	*s.weekStart = s.getVal("week_start", "monday")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min)").Value(s.idleTimeout).
				Validate(func(v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n <= 0 {
						return fmt.Errorf("must be a positive number of minutes")
					}
					return nil
				}),
			huh.NewInput().Title("Reporting timezone (IANA name)").Value(s.timezone).
				Validate(func(v string) error {
					if _, err := time.LoadLocation(v); err != nil {
						return fmt.Errorf("unknown timezone %q", v)
					}
					return nil
				}),
			huh.NewInput().Title("Daily target (hours)").Value(s.dailyTarget),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("Reporting"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

// saveSettings writes the edited values back. Aggregation reads settings
// fresh on every call, so a changed idle timeout takes effect on the next
// refresh with no cache to invalidate.
func (s settingsModel) saveSettings() {
	s.store.SetSetting("idle_timeout", minToSecs(*s.idleTimeout))
	s.store.SetSetting("reporting_timezone", *s.timezone)
	s.store.SetSetting("daily_target", hoursToSecs(*s.dailyTarget))
	s.store.SetSetting("week_start", *s.weekStart)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "idle_timeout":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case "daily_target":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(secs)/3600)
		}
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%.1f", float64(secs)/3600)
	}
	return s
}

func hoursToSecs(s string) string {
	if hours, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.Itoa(int(hours * 3600))
	}
	return s
}
