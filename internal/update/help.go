package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/adhdash/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	bindings := m.helpBindings()
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Dashboard, Action: "dashboard"},
		{Key: m.Keys.Kanban, Action: "kanban"},
		{Key: m.Keys.Analytics, Action: "analytics"},
		{Key: m.Keys.Import, Action: "import"},
		{Key: m.Keys.Focus, Action: "focus mode"},
		{Key: m.Keys.Search, Action: "search tasks"},
		{Key: m.Keys.Palette, Action: "command palette"},
		{Key: "esc", Action: "close / blur"},
		{Key: m.Keys.Help, Action: "toggle help"},
		{Key: m.Keys.Quit, Action: "quit"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	if m.focus.IsOpen() {
		return []KeyBinding{
			{Key: "space", Action: "start/pause timer"},
			{Key: "enter", Action: "mark task done"},
			{Key: "esc", Action: "close focus mode"},
		}
	}
	switch m.CurrentView {
	case ViewDashboard:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter/d", Action: "mark done"},
			{Key: "x", Action: "delete (asks first)"},
			{Key: "tab", Action: "next habit"},
			{Key: "+", Action: "increment habit"},
			{Key: "r", Action: "refresh"},
		}
	case ViewKanban:
		return []KeyBinding{
			{Key: "h/l", Action: "move between columns"},
			{Key: "j/k", Action: "move between cards"},
			{Key: "space", Action: "pick up / drop card"},
			{Key: "esc", Action: "put card back"},
		}
	case ViewAnalytics:
		return []KeyBinding{{Key: "r", Action: "reload charts"}}
	case ViewImport:
		return []KeyBinding{
			{Key: "e", Action: "edit JSON"},
			{Key: "p", Action: "preview"},
			{Key: "x", Action: "remove preview row"},
			{Key: "s", Action: "submit"},
			{Key: "l", Action: "load sample"},
			{Key: "c", Action: "clear"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	return append(toKeyBindings(m.globalBindings()), toKeyBindings(m.viewBindings())...)
}

func toKeyBindings(in []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(in))
	for _, kb := range in {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
