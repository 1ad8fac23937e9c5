package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/francis-agencemxo/devtrack/internal/store"
)

type projectsModel struct {
	store  *store.Store
	width  int
	height int

	summaries   []store.ProjectSummary
	customNames map[string]string
	ignored     map[string]bool
	cursor      int

	formActive bool
	form       *huh.Form
	formKind   string // "rename" or "reassign"

	// Form values as pointers (survive value copies)
	renameValue   *string
	reassignValue *string
}

func newProjectsModel(s *store.Store) projectsModel {
	rn, ra := "", ""
	return projectsModel{
		store:         s,
		renameValue:   &rn,
		reassignValue: &ra,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	summaries   []store.ProjectSummary
	customNames map[string]string
	ignored     map[string]bool
}

func (p projectsModel) refresh() tea.Cmd {
	st := p.store
	return func() tea.Msg {
		summaries, err := st.ProjectSummaries()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Projects error: %v", err), isError: true}
		}
		names, _ := st.CustomNames()
		ignored, _ := st.IgnoredSet()
		return projectsDataMsg{summaries: summaries, customNames: names, ignored: ignored}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.summaries = msg.summaries
		p.customNames = msg.customNames
		p.ignored = msg.ignored
		if p.cursor >= len(p.summaries) {
			p.cursor = 0
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.summaries)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Ignore):
			return p.toggleIgnore()
		case key.Matches(msg, keys.Rename):
			return p.showRenameForm()
		case key.Matches(msg, keys.Reassign):
			return p.showReassignForm()
		}
	}
	return p, nil
}

func (p projectsModel) selected() *store.ProjectSummary {
	if p.cursor >= len(p.summaries) {
		return nil
	}
	return &p.summaries[p.cursor]
}

// toggleIgnore flips the selected project's read-time filter. Records are
// never touched.
func (p projectsModel) toggleIgnore() (projectsModel, tea.Cmd) {
	sel := p.selected()
	if sel == nil {
		return p, nil
	}
	st := p.store
	name := sel.Project
	nowIgnored := p.ignored[name]

	return p, func() tea.Msg {
		var err error
		if nowIgnored {
			err = st.UnignoreProject(name)
		} else {
			err = st.IgnoreProject(name)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return projectsChangedMsg{}
	}
}

func (p projectsModel) showRenameForm() (projectsModel, tea.Cmd) {
	sel := p.selected()
	if sel == nil {
		return p, nil
	}
	*p.renameValue = p.customNames[sel.Project]

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Display name for %q (empty clears)", sel.Project)).
				Value(p.renameValue),
		),
	).WithShowHelp(true).WithShowErrors(true)
	p.formKind = "rename"
	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showReassignForm() (projectsModel, tea.Cmd) {
	sel := p.selected()
	if sel == nil {
		return p, nil
	}
	*p.reassignValue = ""

	var options []huh.Option[string]
	for _, ps := range p.summaries {
		if ps.Project != sel.Project {
			options = append(options, huh.NewOption(ps.Project, ps.Project))
		}
	}

	fields := []huh.Field{
		huh.NewInput().
			Title(fmt.Sprintf("Move all %d records of %q to project", sel.RecordCount, sel.Project)).
			Value(p.reassignValue),
	}
	if len(options) > 0 {
		fields = append(fields, huh.NewSelect[string]().
			Title("...or pick an existing project").
			Options(append([]huh.Option[string]{huh.NewOption("(use typed name)", "")}, options...)...).
			Value(p.reassignValue))
	}

	p.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	p.formKind = "reassign"
	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		switch p.formKind {
		case "rename":
			return p, p.submitRename()
		case "reassign":
			return p, p.submitReassign()
		}
		return p, nil
	}
	return p, cmd
}

func (p projectsModel) submitRename() tea.Cmd {
	sel := p.selected()
	if sel == nil {
		return nil
	}
	st := p.store
	project := sel.Project
	name := strings.TrimSpace(*p.renameValue)

	return func() tea.Msg {
		if err := st.SetCustomName(project, name); err != nil {
			return statusMsg{text: fmt.Sprintf("Rename error: %v", err), isError: true}
		}
		return projectsChangedMsg{}
	}
}

// submitReassign moves every record of the selected project into the
// chosen target bucket. Duration is conserved; only the project label
// moves.
func (p projectsModel) submitReassign() tea.Cmd {
	sel := p.selected()
	if sel == nil {
		return nil
	}
	st := p.store
	fromProject := sel.Project
	target := strings.TrimSpace(*p.reassignValue)

	return func() tea.Msg {
		if target == "" {
			return statusMsg{text: "Reassign needs a target project", isError: true}
		}
		records, err := st.ListRecords(store.RecordFilter{Project: fromProject})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Reassign error: %v", err), isError: true}
		}
		ids := make([]int64, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.ID)
		}
		moved, err := st.ReassignRecords(ids, target)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Reassign error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Moved %d records to %s", moved, target)}
	}
}

func (p projectsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("Projects")
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()),
		)
	}

	title := titleStyle.Render("Projects")
	if len(p.summaries) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No activity recorded yet"),
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-26s %10s %8s %8s", "Project", "Tracked", "Records", "Status")))
	for i, ps := range p.summaries {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		name := ps.Project
		if custom, ok := p.customNames[ps.Project]; ok && custom != "" {
			name = fmt.Sprintf("%s (%s)", custom, ps.Project)
		}

		status := ""
		if p.ignored[ps.Project] {
			status = warningStyle.Render("ignored")
		}

		rows = append(rows, style.Render(fmt.Sprintf("%s%-26s %10s %8d %8s",
			cursor, truncate(name, 26), formatHours(ps.TotalSeconds), ps.RecordCount, status,
		)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  i: ignore/unignore  r: rename  m: move records"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
