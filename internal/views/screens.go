package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type StatsData struct {
	Total     int
	Done      int
	Pending   int
	Urgent    int
	DoneToday int
	QuickWins int
}

type TaskRowData struct {
	ID       string
	Title    string
	Label    string
	Badges   []string
	Selected bool
	Leaving  bool
}

type HabitData struct {
	Name     string
	Counter  int
	Streak   int
	Selected bool
}

type DashboardData struct {
	Stats      StatsData
	SearchView string
	Filter     string
	Tasks      []TaskRowData
	Habits     []HabitData
	Loading    bool
	LoadError  string
}

type KanbanCardData struct {
	Title    string
	Selected bool
}

type KanbanColumnData struct {
	Status string
	Active bool
	Cards  []KanbanCardData
}

type KanbanData struct {
	Width   int
	Columns []KanbanColumnData
	Holding string
}

type ChartData struct {
	Title string
	View  string
}

type AnalyticsData struct {
	Width       int
	Loading     bool
	SpinnerView string
	FocusLine   string
	Charts      []ChartData
}

type ImportData struct {
	State         string
	InputView     string
	Editing       bool
	Count         int
	TableView     string
	SubmitLabel   string
	SubmitEnabled bool
	SpinnerView   string
	ErrorText     string
	ResultTitle   string
	ResultView    string
}

type FocusData struct {
	Title        string
	Subtitle     string
	NotesView    string
	ClockView    string
	ProgressView string
	Running      bool
	Completing   bool
	SpinnerView  string
}

type ToastData struct {
	Kind    string
	Message string
	Fading  bool
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

var toastStyles = map[string]lipgloss.Style{
	"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1),
	"success": lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1),
	"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Padding(0, 1),
	"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Padding(0, 1),
}

func RenderDashboard(data DashboardData) string {
	var b strings.Builder
	s := data.Stats
	b.WriteString(fmt.Sprintf("📊 total %d | ✅ done %d | ⏳ pending %d | 🚨 urgent %d | today %d | ⚡ quick wins %d\n",
		s.Total, s.Done, s.Pending, s.Urgent, s.DoneToday, s.QuickWins))
	b.WriteString(data.SearchView + "\n\n")

	b.WriteString(headerStyle.Render("tasks") + "\n")
	switch {
	case data.Loading && len(data.Tasks) == 0:
		b.WriteString(mutedStyle.Render("  loading...") + "\n")
	case data.LoadError != "":
		b.WriteString(errorStyle.Render("  "+data.LoadError) + "\n")
	case len(data.Tasks) == 0 && data.Filter != "":
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  no task matches %q", data.Filter)) + "\n")
	case len(data.Tasks) == 0:
		b.WriteString(mutedStyle.Render("  (no tasks)") + "\n")
	}
	for _, t := range data.Tasks {
		b.WriteString(renderTaskRow(t) + "\n")
	}

	b.WriteString("\n" + headerStyle.Render("habits") + "\n")
	if len(data.Habits) == 0 {
		b.WriteString(mutedStyle.Render("  (no habits)") + "\n")
	}
	for _, h := range data.Habits {
		cursor := " "
		if h.Selected {
			cursor = ">"
		}
		line := fmt.Sprintf("%s %-20s count: %d  🔥 %d", cursor, h.Name, h.Counter, h.Streak)
		if h.Selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(mutedStyle.Render("actions: [enter]done [x]delete [tab]habit [+]increment [ctrl+k]search [r]refresh"))
	return strings.TrimSpace(b.String())
}

func renderTaskRow(t TaskRowData) string {
	cursor := " "
	if t.Selected {
		cursor = ">"
	}
	line := fmt.Sprintf("%s %s", cursor, t.Title)
	if len(t.Badges) > 0 {
		line += " " + strings.Join(t.Badges, " ")
	}
	if t.Label != "" {
		line += mutedStyle.Render(" · " + t.Label)
	}
	switch {
	case t.Leaving:
		return leavingStyle.Render(line)
	case t.Selected:
		return selectedStyle.Render(line)
	default:
		return line
	}
}

func RenderKanban(data KanbanData) string {
	if len(data.Columns) == 0 {
		return "kanban:\n(no columns)"
	}
	width := data.Width
	if width <= 0 {
		width = 100
	}
	colWidth := (width - 4) / len(data.Columns)
	if colWidth < 16 {
		colWidth = 16
	}
	inner := colWidth - 4

	cols := make([]string, 0, len(data.Columns))
	for _, c := range data.Columns {
		var b strings.Builder
		title := ansi.Truncate(fmt.Sprintf("%s (%d)", c.Status, len(c.Cards)), inner, "...")
		b.WriteString(headerStyle.Render(title) + "\n")
		if len(c.Cards) == 0 {
			b.WriteString(mutedStyle.Render("-"))
		}
		for i, card := range c.Cards {
			line := ansi.Truncate(card.Title, inner-2, "...")
			if card.Selected {
				line = selectedStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(line)
		}
		style := panelStyle.Width(colWidth - 2)
		if c.Active {
			style = style.BorderForeground(lipgloss.Color("12"))
		}
		cols = append(cols, style.Render(b.String()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if data.Holding != "" {
		out += "\n" + selectedStyle.Render("✋ moving: "+data.Holding) + mutedStyle.Render("  [h/l]carry [space]drop [esc]cancel")
	} else {
		out += "\n" + mutedStyle.Render("actions: [h/l]column [j/k]card [space]pick up")
	}
	return out
}

func RenderAnalytics(data AnalyticsData) string {
	var b strings.Builder
	b.WriteString("analytics:")
	if data.Loading {
		b.WriteString(" " + data.SpinnerView + " loading")
	}
	b.WriteString("\n")
	if data.FocusLine != "" {
		b.WriteString(data.FocusLine + "\n")
	}
	if len(data.Charts) == 0 {
		b.WriteString(mutedStyle.Render("(no data yet)"))
		return b.String()
	}
	width := data.Width
	if width <= 0 {
		width = 100
	}
	half := (width - 6) / 2
	if half < 24 {
		half = 24
	}
	panels := make([]string, 0, len(data.Charts))
	for _, c := range data.Charts {
		panels = append(panels, panelStyle.Width(half).Render(headerStyle.Render(c.Title)+"\n"+c.View))
	}
	rows := make([]string, 0, (len(panels)+1)/2)
	for i := 0; i < len(panels); i += 2 {
		if i+1 < len(panels) {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, panels[i], panels[i+1]))
		} else {
			rows = append(rows, panels[i])
		}
	}
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n" + mutedStyle.Render("actions: [r]reload"))
	return b.String()
}

func RenderImport(data ImportData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("import: %s\n", data.State))
	b.WriteString(data.InputView + "\n")
	if data.ErrorText != "" {
		b.WriteString(errorStyle.Render(data.ErrorText) + "\n")
	}
	if data.ResultTitle != "" {
		b.WriteString("\n" + headerStyle.Render(data.ResultTitle) + "\n")
		if data.ResultView != "" {
			b.WriteString(data.ResultView + "\n")
		}
	}
	if data.Count > 0 {
		b.WriteString(fmt.Sprintf("\npreview: %d task(s)\n", data.Count))
		b.WriteString(data.TableView + "\n")
	}
	button := "[ " + data.SubmitLabel + " ]"
	switch {
	case data.SpinnerView != "":
		button = data.SpinnerView + " " + button
	case !data.SubmitEnabled:
		button = mutedStyle.Render(button)
	default:
		button = selectedStyle.Render(button)
	}
	b.WriteString("\n" + button + "\n")
	if data.Editing {
		b.WriteString(mutedStyle.Render("editing: [esc]done"))
	} else {
		b.WriteString(mutedStyle.Render("actions: [e]edit [p]preview [s]submit [x]remove row [j/k]row [l]sample [c]clear"))
	}
	return b.String()
}

func RenderFocus(data FocusData) string {
	var b strings.Builder
	b.WriteString(selectedStyle.Render(data.Title) + "\n")
	if data.Subtitle != "" {
		b.WriteString(mutedStyle.Render(data.Subtitle) + "\n")
	}
	if data.NotesView != "" {
		b.WriteString("\n" + data.NotesView + "\n")
	}
	b.WriteString("\n" + data.ClockView + "\n")
	b.WriteString(data.ProgressView + "\n\n")
	state := "paused"
	if data.Running {
		state = "running"
	}
	if data.Completing {
		state = data.SpinnerView + " completing"
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("timer %s | [space]start/pause [enter]done [esc]close", state)))
	return RenderModal("🎯 Focus Mode", b.String())
}

func RenderToasts(items []ToastData) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, t := range items {
		style, ok := toastStyles[t.Kind]
		if !ok {
			style = toastStyles["info"]
		}
		if t.Fading {
			style = style.Faint(true)
		}
		lines = append(lines, style.Render(t.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}

func RenderConfirm(title string) string {
	return RenderModal("Delete task?", fmt.Sprintf("%q will be deleted.\n\n[y]es / [n]o", title))
}

func RenderCommandPalette(inputView string, commands []string) string {
	return RenderModal("Command", inputView+"\n\n"+mutedStyle.Render(strings.Join(commands, " · ")))
}

func RenderHelpPanel(data HelpPanelData) string {
	return RenderModal("Help", fmt.Sprintf("view: %s\n%s\n\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	))
}
