package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/actions"
	"github.com/sandeepkv93/adhdash/internal/importer"
	"github.com/sandeepkv93/adhdash/internal/storage"
	"github.com/sandeepkv93/adhdash/internal/toast"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		return m.quit()
	}
	if keyStr == "esc" {
		return m.handleEscape(), nil
	}
	if _, _, pending := m.confirm.Pending(); pending {
		return m.handleConfirmKey(keyStr)
	}
	if m.PaletteOpen {
		return m.handlePaletteKey(msg)
	}
	if m.focus.IsOpen() {
		return m.handleFocusKey(keyStr)
	}
	if m.SearchActive {
		return m.handleSearchKey(msg)
	}
	if m.importEditing {
		var cmd tea.Cmd
		m.importArea, cmd = m.importArea.Update(msg)
		return m, cmd
	}

	switch keyStr {
	case m.Keys.Quit:
		return m.quit()
	case m.Keys.Dashboard:
		return m.switchView(ViewDashboard)
	case m.Keys.Kanban:
		return m.switchView(ViewKanban)
	case m.Keys.Analytics:
		return m.switchView(ViewAnalytics)
	case m.Keys.Import:
		return m.switchView(ViewImport)
	case m.Keys.Palette:
		m.PaletteOpen = true
		m.commandInput.SetValue("")
		cmd := m.commandInput.Focus()
		return m, cmd
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Focus:
		return m.openFocus()
	case m.Keys.Search:
		m.CurrentView = ViewDashboard
		m.SearchActive = true
		cmd := m.searchInput.Focus()
		return m, cmd
	}

	switch m.CurrentView {
	case ViewDashboard:
		return m.handleDashboardKey(keyStr)
	case ViewKanban:
		return m.handleKanbanKey(keyStr)
	case ViewAnalytics:
		if keyStr == "r" {
			return m.refreshAnalytics()
		}
	case ViewImport:
		return m.handleImportKey(keyStr)
	}
	return m, nil
}

// handleEscape closes every open modal. With none open it releases the
// focused input or a lifted card.
func (m Model) handleEscape() Model {
	closed := false
	if m.focus.IsOpen() {
		m.focus.Close()
		closed = true
	}
	if m.PaletteOpen {
		m.PaletteOpen = false
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		closed = true
	}
	if m.HelpVisible {
		m.HelpVisible = false
		closed = true
	}
	if _, _, pending := m.confirm.Pending(); pending {
		m.confirm.Cancel()
		closed = true
	}
	if m.SearchActive {
		m.SearchActive = false
		m.searchInput.Blur()
		closed = true
	}
	if closed {
		return m
	}
	switch {
	case m.importEditing:
		m.importEditing = false
		m.importArea.Blur()
	case m.board.Holding():
		m.board.Cancel()
	}
	return m
}

func (m Model) handleConfirmKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "y", "Y", "enter":
		id, ok := m.confirm.Confirm()
		if !ok || m.backend == nil {
			return m, nil
		}
		return m, actions.Delete(m.ctx, m.backend, id)
	case "n", "N":
		m.confirm.Cancel()
	}
	return m, nil
}

func (m Model) handleFocusKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case " ":
		return m, m.focus.Timer().Toggle()
	case "enter":
		return m.completeFocus()
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.SearchActive = false
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.tasks.SetFilter(m.searchInput.Value())
	return m, cmd
}

func (m Model) handleDashboardKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "j", "down":
		m.tasks.Down()
	case "k", "up":
		m.tasks.Up()
	case "enter", "d":
		if task, ok := m.tasks.Selected(); ok {
			return m.markDone(task.ID, storage.SourceDashboard)
		}
	case "x", "delete":
		if task, ok := m.tasks.Selected(); ok {
			m.confirm.Request(task.ID, task.Title)
		}
	case "tab":
		m.habits.Next()
	case "+", "=":
		if h, ok := m.habits.Selected(); ok && m.backend != nil {
			return m, actions.IncrementHabit(m.ctx, m.backend, h.ID)
		}
	case "r":
		return m.refreshAll()
	}
	return m, nil
}

func (m Model) handleKanbanKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "h", "left":
		m.board.Left()
	case "l", "right":
		m.board.Right()
	case "k", "up":
		m.board.Up()
	case "j", "down":
		m.board.Down()
	case " ", "enter":
		if !m.board.Holding() {
			m.board.Pick()
			return m, nil
		}
		if move, ok := m.board.Drop(); ok {
			return m.dispatchMove(move)
		}
	case "r":
		return m.refreshAll()
	}
	return m, nil
}

func (m Model) handleImportKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "e", "i":
		m.importEditing = true
		cmd := m.importArea.Focus()
		return m, cmd
	case "p":
		return m.parseImport()
	case "j", "down":
		if m.importCursor < m.imports.Len()-1 {
			m.importCursor++
		}
		m.syncPreviewTable()
	case "k", "up":
		if m.importCursor > 0 {
			m.importCursor--
		}
		m.syncPreviewTable()
	case "x", "delete":
		if m.imports.Len() == 0 {
			return m, nil
		}
		emptied := m.imports.Remove(m.importCursor)
		if m.importCursor >= m.imports.Len() && m.importCursor > 0 {
			m.importCursor--
		}
		m.syncPreviewTable()
		if emptied {
			return m, m.toast(toast.KindInfo, "All tasks removed")
		}
	case "s":
		if m.backend == nil {
			return m, nil
		}
		cmd, err := m.imports.Submit(m.ctx, m.backend)
		switch {
		case errors.Is(err, importer.ErrEmptyBatch):
			return m, m.toast(toast.KindError, "The list is empty")
		case err != nil:
			return m, nil
		}
		m.syncPreviewTable()
		spin := m.startSpinner()
		return m, tea.Batch(cmd, spin)
	case "l":
		m.importArea.SetValue(importer.Sample())
		next, cmd := m.parseImport()
		return next, tea.Batch(cmd, m.toast(toast.KindInfo, "Sample data loaded"))
	case "c":
		m.imports.Clear()
		m.importArea.Reset()
		m.importCursor = 0
		m.syncPreviewTable()
		m.resultViewport.SetContent("")
		return m, m.toast(toast.KindInfo, "Cleared")
	}
	return m, nil
}

func (m Model) parseImport() (Model, tea.Cmd) {
	m.importCursor = 0
	raw := m.importArea.Value()
	err := m.imports.Parse(raw)
	m.syncPreviewTable()
	if err != nil {
		m.logger.Info("import parse rejected", "error", err)
		return m, m.toast(toast.KindError, parseFailureText(err, raw))
	}
	return m, m.toast(toast.KindSuccess, fmt.Sprintf("%d tasks found ✅", m.imports.Len()))
}

func parseFailureText(err error, raw string) string {
	detail := ""
	var ve *importer.ValidationError
	if errors.As(err, &ve) {
		detail = importer.Sanitize(ve.Detail)
	}
	switch {
	case strings.TrimSpace(raw) == "":
		return "Please paste some JSON"
	case errors.Is(err, importer.ErrEmptyBatch):
		return "No tasks found"
	case errors.Is(err, importer.ErrFormat) && detail != "":
		return "Unsupported JSON shape: " + detail
	case errors.Is(err, importer.ErrFormat):
		return "Unsupported JSON shape"
	default:
		return "Invalid JSON: " + detail
	}
}
