package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/sandeepkv93/adhdash/internal/charts"
	"github.com/sandeepkv93/adhdash/internal/commands"
	"github.com/sandeepkv93/adhdash/internal/importer"
	"github.com/sandeepkv93/adhdash/internal/model"
	"github.com/sandeepkv93/adhdash/internal/toast"
	"github.com/sandeepkv93/adhdash/internal/views"
)

var chartTitles = map[string]string{
	charts.TargetMood:       "😊 Mood & energy",
	charts.TargetQuadrant:   "🎯 Quadrants",
	charts.TargetBadHabits:  "🚫 Bad habits",
	charts.TargetGoodHabits: "🌱 Good habits",
	charts.TargetTechniques: "🧠 Techniques",
	charts.TargetEnergy:     "⚡ Energy",
	charts.TargetContext:    "📍 Context",
	charts.TargetTasksDone:  "✅ Tasks done",
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	body := ""
	switch m.CurrentView {
	case ViewDashboard:
		body = m.renderDashboard()
	case ViewKanban:
		body = m.renderKanban()
	case ViewAnalytics:
		body = m.renderAnalytics()
	case ViewImport:
		body = m.renderImport()
	}

	tabs := []views.TabData{
		{Key: m.Keys.Dashboard, Label: "Dashboard", Active: m.CurrentView == ViewDashboard},
		{Key: m.Keys.Kanban, Label: "Kanban", Active: m.CurrentView == ViewKanban},
		{Key: m.Keys.Analytics, Label: "Analytics", Active: m.CurrentView == ViewAnalytics},
		{Key: m.Keys.Import, Label: "Import", Active: m.CurrentView == ViewImport},
	}

	return views.RenderApp(views.AppData{
		Width:      m.Width,
		Header:     "🧠 adhdash",
		Tabs:       tabs,
		Body:       body,
		Overlay:    m.renderOverlay(),
		Effects:    m.effects.View(),
		StatusLine: m.Status.Text,
		IsError:    m.Status.IsError,
		Toasts:     m.renderToasts(),
		Footer: fmt.Sprintf("keys: %s focus | %s search | %s cmd | %s help | %s quit",
			m.Keys.Focus, m.Keys.Search, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderOverlay() string {
	if _, title, ok := m.confirm.Pending(); ok {
		return views.RenderConfirm(importer.Sanitize(title))
	}
	if m.PaletteOpen {
		names := make([]string, 0, 8)
		for _, n := range commands.Names() {
			names = append(names, string(n))
		}
		return views.RenderCommandPalette(m.commandInput.View(), names)
	}
	if m.HelpVisible {
		return m.renderHelpView()
	}
	if m.focus.IsOpen() {
		return m.renderFocus()
	}
	return ""
}

func (m Model) renderDashboard() string {
	rows := m.tasks.Visible()
	tasks := make([]views.TaskRowData, 0, len(rows))
	for i, r := range rows {
		tasks = append(tasks, views.TaskRowData{
			ID:       r.Task.ID,
			Title:    importer.Sanitize(r.Task.Title),
			Label:    importer.Sanitize(r.Task.Label()),
			Badges:   taskBadges(r.Task),
			Selected: i == m.tasks.Cursor(),
			Leaving:  r.Leaving,
		})
	}
	habits := make([]views.HabitData, 0)
	for i, h := range m.habits.Habits() {
		habits = append(habits, views.HabitData{
			Name:     importer.Sanitize(h.Name),
			Counter:  h.Counter,
			Streak:   h.Streak,
			Selected: i == m.habits.Cursor(),
		})
	}
	return views.RenderDashboard(views.DashboardData{
		Stats: views.StatsData{
			Total:     m.stats.Total,
			Done:      m.stats.Done,
			Pending:   m.stats.Pending,
			Urgent:    m.stats.Urgent,
			DoneToday: m.stats.DoneToday,
			QuickWins: m.stats.QuickWinsPending,
		},
		SearchView: m.searchInput.View(),
		Filter:     importer.Sanitize(m.tasks.Filter()),
		Tasks:      tasks,
		Habits:     habits,
		Loading:    m.tasksLoading,
		LoadError:  m.tasksErr,
	})
}

func taskBadges(t model.Task) []string {
	var out []string
	if strings.Contains(t.Urgency, model.UrgencyUrgent) {
		out = append(out, "🚨")
	}
	if t.QuickWin {
		out = append(out, "⚡")
	}
	if t.Time != "" {
		out = append(out, importer.Sanitize(t.Time))
	}
	return out
}

func (m Model) renderKanban() string {
	col, row := m.board.Cursor()
	columns := make([]views.KanbanColumnData, 0)
	for ci, c := range m.board.Columns() {
		data := views.KanbanColumnData{Status: importer.Sanitize(c.Status), Active: ci == col}
		for ri, card := range c.Cards {
			data.Cards = append(data.Cards, views.KanbanCardData{
				Title:    importer.Sanitize(card.Title),
				Selected: ci == col && ri == row,
			})
		}
		columns = append(columns, data)
	}
	holding := ""
	if card, ok := m.board.Held(); ok {
		holding = importer.Sanitize(card.Title)
	}
	return views.RenderKanban(views.KanbanData{Width: m.Width, Columns: columns, Holding: holding})
}

func (m Model) renderAnalytics() string {
	data := views.AnalyticsData{Width: m.Width, Loading: m.analyticsLoading, SpinnerView: m.busySpinner.View()}
	if s := m.focusSummary; s != nil {
		data.FocusLine = fmt.Sprintf("🎯 Focus (%dd): %d sessions, %d completed, %d expired, %dm focused",
			TasksDoneDays, s.Sessions, s.Completed, s.Expired, s.Seconds/60)
	}
	for _, target := range charts.AllTargets() {
		if !m.charts.Has(target) {
			continue
		}
		data.Charts = append(data.Charts, views.ChartData{Title: chartTitles[target], View: m.charts.View(target)})
	}
	return views.RenderAnalytics(data)
}

func (m Model) renderImport() string {
	data := views.ImportData{
		State:         m.imports.State().String(),
		InputView:     m.importArea.View(),
		Editing:       m.importEditing,
		Count:         m.imports.Len(),
		SubmitLabel:   m.imports.SubmitLabel(),
		SubmitEnabled: m.imports.SubmitEnabled(),
	}
	if data.Count > 0 {
		data.TableView = m.previewTable.View()
	}
	if m.imports.Submitting() {
		data.SpinnerView = m.busySpinner.View()
	}
	if err := m.imports.LastErr(); err != nil && m.imports.State() != importer.StateEmpty {
		data.ErrorText = importer.FailureText(err)
	}
	if res, ok := m.imports.Result(); ok {
		data.ResultTitle = importer.ResultTitle(res)
		data.ResultView = m.resultViewport.View()
	}
	return views.RenderImport(data)
}

func (m Model) renderFocus() string {
	pomodoro := m.focus.Timer()
	title, subtitle := m.focus.Headline()
	data := views.FocusData{
		Title:        importer.Sanitize(title),
		Subtitle:     importer.Sanitize(subtitle),
		NotesView:    m.focusNotes,
		ClockView:    pomodoro.Level().Style().Render(pomodoro.Display()),
		ProgressView: m.focusProgress.ViewAs(pomodoro.Progress()),
		Running:      pomodoro.Running(),
		Completing:   m.focus.Completing(),
	}
	if data.Completing {
		data.SpinnerView = m.busySpinner.View()
	}
	return views.RenderFocus(data)
}

func (m Model) renderToasts() string {
	visible := m.toasts.Visible()
	items := make([]views.ToastData, 0, len(visible))
	for _, t := range visible {
		items = append(items, views.ToastData{Kind: string(t.Kind), Message: t.Message, Fading: t.Phase == toast.PhaseFading})
	}
	return views.RenderToasts(items)
}

func (m *Model) syncPreviewTable() {
	preview := m.imports.Preview()
	rows := make([]table.Row, 0, len(preview))
	for _, r := range preview {
		rows = append(rows, table.Row{fmt.Sprint(r.Index), r.Title, strings.Join(r.Badges, " "), r.Notes})
	}
	m.previewTable.SetRows(rows)
	if m.importCursor >= len(rows) {
		m.importCursor = max(len(rows)-1, 0)
	}
	if len(rows) > 0 {
		m.previewTable.SetCursor(m.importCursor)
	}
}

func resultText(res model.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "imported: %d\nfailed: %d\n", res.Imported, res.Failed)
	for _, e := range res.Errors {
		b.WriteString("- " + importer.Sanitize(e) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderNotes renders task notes as markdown once escape sequences are gone.
func renderNotes(notes string) string {
	return views.RenderMarkdown(ansiSafe(notes))
}

func ansiSafe(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = importer.Sanitize(l)
	}
	return strings.Join(lines, "\n")
}
