package update

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/actions"
	"github.com/sandeepkv93/adhdash/internal/celebrate"
	"github.com/sandeepkv93/adhdash/internal/focus"
	"github.com/sandeepkv93/adhdash/internal/storage"
	"github.com/sandeepkv93/adhdash/internal/timer"
	"github.com/sandeepkv93/adhdash/internal/toast"
)

func (m Model) onTimerTick(msg timer.TickMsg) (tea.Model, tea.Cmd) {
	pomodoro := m.focus.Timer()
	cmd, expired := pomodoro.Update(msg)
	if !expired {
		return m, cmd
	}
	task, _ := m.focus.Task()
	session := storage.FocusSession{
		TaskID:      task.ID,
		Title:       task.Title,
		DurationSec: pomodoro.SessionSec(),
		Outcome:     storage.OutcomeExpired,
	}
	return m, tea.Batch(
		cmd,
		m.effects.Celebrate(celebrate.Small),
		m.toasts.Notify("⏰ Time's up! Take a break.", toast.KindInfo, focus.ExpiryToastDuration),
		recordFocusSessionCmd(m.ctx, m.store, session),
	)
}

func (m Model) onPriority(msg focus.PriorityMsg) (tea.Model, tea.Cmd) {
	if !m.focus.ApplyPriority(msg) {
		return m, nil
	}
	m.focusNotes = ""
	if task, ok := m.focus.Task(); ok {
		m.focusNotes = renderNotes(task.Notes)
	}
	if m.focus.Phase() == focus.PhaseError {
		return m.fail("load focus task", msg.Err, "Could not load a task")
	}
	return m, nil
}

func (m Model) openFocus() (Model, tea.Cmd) {
	if m.backend == nil {
		return m, nil
	}
	m.focusNotes = ""
	return m, m.focus.Open(m.ctx)
}

func (m Model) completeFocus() (Model, tea.Cmd) {
	cmd, err := m.focus.Complete(m.ctx)
	switch {
	case errors.Is(err, focus.ErrNoTask):
		m.focus.Close()
		return m, m.toast(toast.KindWarning, "No task selected")
	case errors.Is(err, focus.ErrBusy):
		return m, nil
	}
	spin := m.startSpinner()
	return m, tea.Batch(cmd, spin)
}

func (m Model) onFocusCompleted(msg focus.CompletedMsg) (tea.Model, tea.Cmd) {
	reload := m.focus.Finish(msg)
	if msg.Err != nil {
		return m.fail("complete focus task", msg.Err, "Could not mark the task done")
	}
	pomodoro := m.focus.Timer()
	session := storage.FocusSession{
		TaskID:      msg.Task.ID,
		Title:       msg.Task.Title,
		DurationSec: pomodoro.SessionSec() - pomodoro.Remaining(),
		Outcome:     storage.OutcomeCompleted,
	}
	return m, tea.Batch(
		m.effects.Celebrate(celebrate.Large),
		m.toasts.Notify("🎉 Well done! Task completed!", toast.KindSuccess, focus.SuccessToastDuration),
		actions.Record(m.ctx, m.journal(), msg.Task, storage.SourceFocus),
		recordFocusSessionCmd(m.ctx, m.store, session),
		reload,
	)
}
