package update

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/api"
	"github.com/sandeepkv93/adhdash/internal/charts"
	"github.com/sandeepkv93/adhdash/internal/model"
	"github.com/sandeepkv93/adhdash/internal/scheduler"
	"github.com/sandeepkv93/adhdash/internal/storage"
)

func loadTasksCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		tasks, err := b.ListTasks(ctx, api.TaskQuery{})
		return TasksLoadedMsg{Tasks: tasks, Err: err}
	}
}

func loadHabitsCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		habits, err := b.ListHabits(ctx)
		return HabitsLoadedMsg{Habits: habits, Err: err}
	}
}

func loadStatsCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		stats, err := b.Stats(ctx)
		return StatsLoadedMsg{Stats: stats, Err: err}
	}
}

// loadAnalyticsCmd gathers every chart source. A failing source leaves its
// chart empty; the errors travel back together.
func loadAnalyticsCmd(ctx context.Context, b Backend, store storage.Repository, now time.Time) tea.Cmd {
	return func() tea.Msg {
		var msg AnalyticsLoadedMsg
		var err error
		if msg.Mood, err = b.MoodTrend(ctx, MoodDays); err != nil {
			msg.Errs = append(msg.Errs, err)
		}
		if msg.BadHabits, err = b.BadHabits(ctx); err != nil {
			msg.Errs = append(msg.Errs, err)
		}
		if msg.GoodHabits, err = b.GoodHabits(ctx); err != nil {
			msg.Errs = append(msg.Errs, err)
		}
		if msg.Techniques, err = b.Techniques(ctx); err != nil {
			msg.Errs = append(msg.Errs, err)
		}
		if store != nil {
			since := now.UTC().AddDate(0, 0, -(TasksDoneDays - 1))
			since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)
			days, err := store.CompletionsPerDay(ctx, since)
			if err != nil {
				msg.Errs = append(msg.Errs, fmt.Errorf("load completions: %w", err))
			} else {
				counts := make([]model.DatedCount, 0, len(days))
				for _, d := range days {
					counts = append(counts, model.DatedCount{Date: d.Day, Count: d.Count})
				}
				msg.TasksDone = charts.DailySeries(counts, now, TasksDoneDays)
			}
			sessions, err := store.ListFocusSessions(ctx, storage.FocusSessionFilter{Since: since})
			if err != nil {
				msg.Errs = append(msg.Errs, fmt.Errorf("load focus sessions: %w", err))
			} else {
				summary := summarizeFocus(sessions)
				msg.Focus = &summary
			}
		}
		return msg
	}
}

func createTaskCmd(ctx context.Context, b Backend, title string) tea.Cmd {
	return func() tea.Msg {
		task, err := b.CreateTask(ctx, title)
		return TaskCreatedMsg{Task: task, Err: err}
	}
}

func readImportFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := os.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return ImportFileMsg{Path: path, Err: err}
		}
		return ImportFileMsg{Path: path, Content: string(raw)}
	}
}

func recordFocusSessionCmd(ctx context.Context, store storage.Repository, session storage.FocusSession) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := store.RecordFocusSession(ctx, session)
		return FocusJournaledMsg{Err: err}
	}
}

func waitForRetryCmd(ch <-chan scheduler.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return RetryDueMsg{Event: ev}
	}
}

// refreshAll re-fetches every backend-derived piece of state.
func (m Model) refreshAll() (Model, tea.Cmd) {
	if m.backend == nil {
		return m, nil
	}
	m.tasksLoading = true
	cmds := []tea.Cmd{
		loadTasksCmd(m.ctx, m.backend),
		loadHabitsCmd(m.ctx, m.backend),
		loadStatsCmd(m.ctx, m.backend),
	}
	if m.CurrentView == ViewAnalytics {
		var cmd tea.Cmd
		m, cmd = m.refreshAnalytics()
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) refreshAnalytics() (Model, tea.Cmd) {
	if m.backend == nil || m.analyticsLoading {
		return m, nil
	}
	m.analyticsLoading = true
	spin := m.startSpinner()
	return m, tea.Batch(loadAnalyticsCmd(m.ctx, m.backend, m.store, time.Now()), spin)
}

func (m *Model) applyTasks(tasks []model.Task) {
	valid := make([]model.Task, 0, len(tasks))
	pending := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			m.logger.Warn("skipping invalid task", "error", err)
			continue
		}
		valid = append(valid, t)
		if !t.IsDone() {
			pending = append(pending, t)
		}
	}
	m.tasks.Set(pending)
	m.board.Load(valid)
}

func (m *Model) applyStatsCharts() {
	m.renderChart(charts.TargetQuadrant, charts.Quadrant(m.charts, charts.TargetQuadrant, m.stats.ByQuadrant))
	m.renderChart(charts.TargetEnergy, charts.Energy(m.charts, charts.TargetEnergy, m.stats.ByEnergy))
	m.renderChart(charts.TargetContext, charts.Context(m.charts, charts.TargetContext, m.stats.ByContext))
}

func (m *Model) applyAnalytics(msg AnalyticsLoadedMsg) {
	m.renderChart(charts.TargetMood, charts.Mood(m.charts, charts.TargetMood, msg.Mood))
	m.renderChart(charts.TargetBadHabits, charts.BadHabits(m.charts, charts.TargetBadHabits, msg.BadHabits))
	m.renderChart(charts.TargetGoodHabits, charts.GoodHabits(m.charts, charts.TargetGoodHabits, msg.GoodHabits))
	m.renderChart(charts.TargetTechniques, charts.Techniques(m.charts, charts.TargetTechniques, msg.Techniques))
	m.renderChart(charts.TargetTasksDone, charts.TasksDone(m.charts, charts.TargetTasksDone, msg.TasksDone))
}

func (m *Model) renderChart(target string, err error) {
	if err != nil {
		m.logger.Warn("chart render failed", "target", target, "error", err)
	}
}
