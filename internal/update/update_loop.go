package update

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/actions"
	"github.com/sandeepkv93/adhdash/internal/api"
	"github.com/sandeepkv93/adhdash/internal/celebrate"
	"github.com/sandeepkv93/adhdash/internal/focus"
	"github.com/sandeepkv93/adhdash/internal/importer"
	"github.com/sandeepkv93/adhdash/internal/kanban"
	"github.com/sandeepkv93/adhdash/internal/storage"
	"github.com/sandeepkv93/adhdash/internal/timer"
	"github.com/sandeepkv93/adhdash/internal/toast"
)

func (m Model) Init() tea.Cmd {
	m, load := m.refreshAll()
	cmds := []tea.Cmd{load}
	if m.engine != nil {
		cmds = append(cmds, waitForRetryCmd(m.engine.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.toasts.Update(msg); ok {
		return m, cmd
	}
	if cmd, ok := m.effects.Update(msg); ok {
		return m, cmd
	}

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = typed.Width, typed.Height
		m.effects.Resize(typed.Width, max(typed.Height/3, 1))
		m.resultViewport.Width = max(typed.Width-8, 20)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.busySpinner, cmd = m.busySpinner.Update(typed)
		return m, cmd
	case SwitchViewMsg:
		return m.switchView(typed.View)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case TasksLoadedMsg:
		m.tasksLoading = false
		if typed.Err != nil {
			m.tasksErr = "Could not load tasks"
			return m.fail("load tasks", typed.Err, "Could not load tasks")
		}
		m.tasksErr = ""
		m.applyTasks(typed.Tasks)
		return m, nil
	case HabitsLoadedMsg:
		if typed.Err != nil {
			return m.fail("load habits", typed.Err, "Could not load habits")
		}
		m.habits.Set(typed.Habits)
		return m, nil
	case StatsLoadedMsg:
		if typed.Err != nil {
			m.logger.Warn("load stats failed", "error", typed.Err)
			return m, nil
		}
		m.stats = typed.Stats
		m.applyStatsCharts()
		return m, nil
	case AnalyticsLoadedMsg:
		m.analyticsLoading = false
		m.focusSummary = typed.Focus
		m.applyAnalytics(typed)
		if len(typed.Errs) > 0 {
			return m.fail("load analytics", errors.Join(typed.Errs...), "Some charts could not be loaded")
		}
		return m, nil

	case timer.TickMsg:
		return m.onTimerTick(typed)
	case focus.PriorityMsg:
		return m.onPriority(typed)
	case focus.CompletedMsg:
		return m.onFocusCompleted(typed)
	case focus.ReloadMsg:
		if m.focus.HandleReload(typed) {
			m.focusNotes = ""
		}
		return m.refreshAll()
	case FocusJournaledMsg:
		if typed.Err != nil {
			m.logger.Warn("record focus session failed", "error", typed.Err)
		}
		return m, nil

	case actions.DoneMsg:
		return m.onDone(typed)
	case actions.DeletedMsg:
		if typed.Err != nil {
			return m.fail("delete task", typed.Err, "Delete failed")
		}
		return m, tea.Batch(m.toast(toast.KindInfo, "Deleted"), m.tasks.BeginRemoval(typed.ID), loadStatsCmd(m.ctx, m.backend))
	case actions.RowRemovedMsg:
		m.tasks.Remove(typed.ID)
		return m, loadTasksCmd(m.ctx, m.backend)
	case actions.HabitIncrementedMsg:
		if typed.Err != nil {
			return m.fail("increment habit", typed.Err, "Could not update habit")
		}
		m.habits.Apply(typed.Habit)
		return m, tea.Batch(m.effects.Celebrate(celebrate.Small), m.toast(toast.KindSuccess, actions.StreakText(typed.Habit)))
	case actions.JournaledMsg:
		if typed.Err != nil {
			m.logger.Warn("record completion failed", "task_id", typed.TaskID, "error", typed.Err)
		}
		return m, nil
	case TaskCreatedMsg:
		if typed.Err != nil {
			return m.fail("create task", typed.Err, "Could not add task")
		}
		return m, tea.Batch(m.toast(toast.KindSuccess, "Added: "+importer.Sanitize(typed.Task.Title)), loadTasksCmd(m.ctx, m.backend), loadStatsCmd(m.ctx, m.backend))

	case kanban.SyncedMsg:
		return m.onSynced(typed)
	case RetryDueMsg:
		cmds := []tea.Cmd{m.outbox.Due(m.ctx, m.backend, typed.Event)}
		if m.engine != nil {
			cmds = append(cmds, waitForRetryCmd(m.engine.C()))
		}
		return m, tea.Batch(cmds...)
	case kanban.RetriedMsg:
		return m.onRetried(typed)

	case importer.SubmittedMsg:
		return m.onImported(typed)
	case ImportFileMsg:
		if typed.Err != nil {
			return m.fail("read import file", typed.Err, "Could not read "+importer.Sanitize(typed.Path))
		}
		m.importArea.SetValue(typed.Content)
		return m.parseImport()
	}

	return m, nil
}

func (m Model) busy() bool {
	return m.analyticsLoading || m.imports.Submitting() || m.focus.Completing()
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.busySpinner.Tick
}

func (m Model) toast(kind toast.Kind, text string) tea.Cmd {
	return m.toasts.Notify(text, kind, m.cfg.ToastDuration)
}

// fail logs a failed operation and turns it into an error toast.
func (m Model) fail(op string, err error, text string) (Model, tea.Cmd) {
	m.LastError = err
	m.logger.Warn(op+" failed", "error", err)
	switch detail := api.BackendMessage(err); {
	case detail != "":
		text += ": " + importer.Sanitize(detail)
	case api.IsNetwork(err):
		text += ": server unreachable"
	}
	m.Status = StatusBar{Text: text, IsError: true}
	return m, m.toast(toast.KindError, text)
}

func (m Model) markDone(id string, source storage.CompletionSource) (Model, tea.Cmd) {
	if id == "" || m.backend == nil {
		return m, nil
	}
	if _, inflight := m.doneSource[id]; inflight || m.tasks.IsLeaving(id) {
		return m, nil
	}
	m.doneSource[id] = source
	return m, actions.MarkDone(m.ctx, m.backend, id)
}

func (m Model) onDone(msg actions.DoneMsg) (tea.Model, tea.Cmd) {
	source, ok := m.doneSource[msg.ID]
	if !ok {
		source = storage.SourceDashboard
	}
	delete(m.doneSource, msg.ID)
	if msg.Err != nil {
		return m.fail("mark done", msg.Err, "Could not complete the task")
	}
	task, found := m.tasks.Find(msg.ID)
	if !found {
		task.ID = msg.ID
	}
	return m, tea.Batch(
		m.effects.Celebrate(celebrate.Small),
		m.toast(toast.KindSuccess, "✅ Nice work!"),
		m.tasks.BeginRemoval(msg.ID),
		actions.Record(m.ctx, m.journal(), task, source),
		loadStatsCmd(m.ctx, m.backend),
	)
}

func (m Model) dispatchMove(move kanban.Move) (Model, tea.Cmd) {
	if m.backend == nil {
		return m, nil
	}
	return m, tea.Batch(
		m.toast(toast.KindInfo, "Moved to "+importer.Sanitize(move.To)),
		kanban.Sync(m.ctx, m.backend, move),
	)
}

func (m Model) onSynced(msg kanban.SyncedMsg) (tea.Model, tea.Cmd) {
	if msg.Err == nil {
		if err := m.outbox.Forget(m.ctx, msg.Move.TaskID); err != nil {
			m.logger.Warn("forget queued move failed", "task_id", msg.Move.TaskID, "error", err)
		}
		return m, loadStatsCmd(m.ctx, m.backend)
	}
	text := "Move failed"
	if m.outbox.Enabled() {
		if err := m.outbox.Enqueue(m.ctx, msg.Move, msg.Err); err != nil {
			m.logger.Error("queue move failed", "task_id", msg.Move.TaskID, "error", err)
		} else {
			text = "Move failed, will retry"
		}
	}
	return m.fail("move task", msg.Err, text)
}

func (m Model) onRetried(msg kanban.RetriedMsg) (tea.Model, tea.Cmd) {
	outcome, err := m.outbox.Resolve(m.ctx, msg)
	if err != nil {
		m.logger.Error("resolve queued move failed", "task_id", msg.TaskID, "error", err)
	}
	switch outcome {
	case kanban.OutcomeResolved:
		return m, tea.Batch(m.toast(toast.KindSuccess, "Synced move to "+importer.Sanitize(msg.Status)), loadStatsCmd(m.ctx, m.backend))
	case kanban.OutcomeGaveUp:
		text := fmt.Sprintf("Gave up moving a task to %s after %d attempts", importer.Sanitize(msg.Status), msg.Attempt)
		return m, tea.Batch(m.toast(toast.KindWarning, text), loadTasksCmd(m.ctx, m.backend))
	case kanban.OutcomeRescheduled:
		m.logger.Info("queued move rescheduled", "task_id", msg.TaskID, "attempt", msg.Attempt, "error", msg.Err)
	}
	return m, nil
}

func (m Model) onImported(msg importer.SubmittedMsg) (tea.Model, tea.Cmd) {
	if err := m.imports.Finish(msg); err != nil {
		m.LastError = err
		m.logger.Warn("import failed", "error", err)
		return m, m.toast(toast.KindError, importer.FailureText(err))
	}
	res, _ := m.imports.Result()
	m.importArea.Reset()
	m.importCursor = 0
	m.syncPreviewTable()
	m.resultViewport.SetContent(resultText(res))
	m.resultViewport.GotoTop()
	text := fmt.Sprintf("%d tasks imported! 🎉", res.Imported)
	next, load := m.refreshAll()
	return next, tea.Batch(m.effects.Celebrate(celebrate.Large), m.toast(toast.KindSuccess, text), load)
}

func (m Model) switchView(v View) (Model, tea.Cmd) {
	switch v {
	case ViewDashboard, ViewKanban, ViewImport:
		m.CurrentView = v
		return m, nil
	case ViewAnalytics:
		m.CurrentView = v
		return m.refreshAnalytics()
	default:
		return m, nil
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	m.Quitting = true
	m.focus.Close()
	m.charts.Close()
	return m, tea.Quit
}


// ResumeOutbox reschedules moves a previous run left unsynced.
func (m Model) ResumeOutbox() (int, error) {
	return m.outbox.Resume(m.ctx)
}
