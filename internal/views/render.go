package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Width      int
	Header     string
	Tabs       []TabData
	Body       string
	Overlay    string
	Effects    string
	StatusLine string
	IsError    bool
	Toasts     string
	Footer     string
}

type TabData struct {
	Key    string
	Label  string
	Active bool
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("13")).Padding(1, 2)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("7"))
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	leavingStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

func RenderApp(data AppData) string {
	width := data.Width
	if width <= 0 {
		width = 100
	}
	tabs := make([]string, 0, len(data.Tabs))
	for _, t := range data.Tabs {
		label := t.Key + " " + t.Label
		if t.Active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}

	body := data.Body
	if data.Overlay != "" {
		body = data.Overlay
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Center, headerStyle.Render(data.Header), "  ", strings.Join(tabs, "")),
		panelStyle.Width(width - 2).Render(body),
	}
	if data.Effects != "" {
		lines = append(lines, data.Effects)
	}
	if data.StatusLine != "" {
		if data.IsError {
			lines = append(lines, errorStyle.Render(data.StatusLine))
		} else {
			lines = append(lines, statusStyle.Render(data.StatusLine))
		}
	}
	if data.Toasts != "" {
		lines = append(lines, data.Toasts)
	}
	if data.Footer != "" {
		lines = append(lines, footerStyle.Render(data.Footer))
	}
	return strings.Join(lines, "\n")
}

// RenderModal frames a dialog that replaces the body while it is open.
func RenderModal(title, content string) string {
	return modalStyle.Render(headerStyle.Render(title) + "\n\n" + content)
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
