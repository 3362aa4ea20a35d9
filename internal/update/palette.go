package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/actions"
	"github.com/sandeepkv93/adhdash/internal/commands"
	"github.com/sandeepkv93/adhdash/internal/importer"
	"github.com/sandeepkv93/adhdash/internal/storage"
	"github.com/sandeepkv93/adhdash/internal/toast"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.commandInput.Value())
	m.PaletteOpen = false
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, m.toast(toast.KindError, err.Error())
	}
	if m.backend == nil {
		return m, m.toast(toast.KindError, "no backend configured")
	}

	var cmds []tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			cmds = append(cmds, createTaskCmd(m.ctx, m.backend, a.Title))
			return commands.Result{Message: fmt.Sprintf("adding task: %s", a.Title)}, nil
		},
		Done: func(t commands.TargetArgs) (commands.Result, error) {
			var c tea.Cmd
			m, c = m.markDone(t.ID, storage.SourcePalette)
			cmds = append(cmds, c)
			return commands.Result{Message: fmt.Sprintf("completing %s", t.ID)}, nil
		},
		Delete: func(t commands.TargetArgs) (commands.Result, error) {
			title := t.ID
			if task, ok := m.tasks.Find(t.ID); ok {
				title = task.Title
			}
			m.confirm.Request(t.ID, title)
			return commands.Result{Message: fmt.Sprintf("confirm delete of %s", t.ID)}, nil
		},
		Habit: func(t commands.TargetArgs) (commands.Result, error) {
			cmds = append(cmds, actions.IncrementHabit(m.ctx, m.backend, t.ID))
			return commands.Result{Message: fmt.Sprintf("incrementing habit %s", t.ID)}, nil
		},
		Move: func(a commands.MoveArgs) (commands.Result, error) {
			move, ok := m.board.MoveTask(a.ID, a.Status)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "unknown task, unknown status or task already there"}
			}
			var c tea.Cmd
			m, c = m.dispatchMove(move)
			cmds = append(cmds, c)
			return commands.Result{Message: fmt.Sprintf("moving %s to %s", a.ID, move.To)}, nil
		},
		Focus: func() (commands.Result, error) {
			var c tea.Cmd
			m, c = m.openFocus()
			cmds = append(cmds, c)
			return commands.Result{Message: "focus mode"}, nil
		},
		Import: func(a commands.ImportArgs) (commands.Result, error) {
			m.CurrentView = ViewImport
			cmds = append(cmds, readImportFileCmd(a.Path))
			return commands.Result{Message: fmt.Sprintf("loading %s", a.Path)}, nil
		},
		Refresh: func() (commands.Result, error) {
			var c tea.Cmd
			m, c = m.refreshAll()
			cmds = append(cmds, c)
			return commands.Result{Message: "refreshing"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, m.toast(toast.KindError, err.Error())
	}
	m.Status = StatusBar{Text: importer.Sanitize(res.Message)}
	return m, tea.Batch(cmds...)
}
