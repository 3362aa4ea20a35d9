package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/model"
	"github.com/sandeepkv93/adhdash/internal/storage"
)

const RemovalDelay = 300 * time.Millisecond

type Completer interface {
	MarkDone(ctx context.Context, id string) error
}

type Deleter interface {
	DeleteTask(ctx context.Context, id string) error
}

type HabitIncrementer interface {
	IncrementHabit(ctx context.Context, id string) (model.Habit, error)
}

type CompletionJournal interface {
	RecordCompletion(ctx context.Context, in storage.Completion) (storage.Completion, error)
}

type DoneMsg struct {
	ID  string
	Err error
}

type DeletedMsg struct {
	ID  string
	Err error
}

type HabitIncrementedMsg struct {
	ID    string
	Habit model.Habit
	Err   error
}

type RowRemovedMsg struct {
	ID string
}

type JournaledMsg struct {
	TaskID string
	Err    error
}

func MarkDone(ctx context.Context, c Completer, id string) tea.Cmd {
	return func() tea.Msg {
		return DoneMsg{ID: id, Err: c.MarkDone(ctx, id)}
	}
}

func Delete(ctx context.Context, d Deleter, id string) tea.Cmd {
	return func() tea.Msg {
		return DeletedMsg{ID: id, Err: d.DeleteTask(ctx, id)}
	}
}

func IncrementHabit(ctx context.Context, h HabitIncrementer, id string) tea.Cmd {
	return func() tea.Msg {
		habit, err := h.IncrementHabit(ctx, id)
		return HabitIncrementedMsg{ID: id, Habit: habit, Err: err}
	}
}

// Record writes a completion to the local journal. It returns nil when no
// journal is configured.
func Record(ctx context.Context, j CompletionJournal, task model.Task, source storage.CompletionSource) tea.Cmd {
	if j == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := j.RecordCompletion(ctx, storage.Completion{TaskID: task.ID, Title: task.Title, Source: source})
		return JournaledMsg{TaskID: task.ID, Err: err}
	}
}

func StreakText(h model.Habit) string {
	return fmt.Sprintf("🔥 Streak: %d", h.Streak)
}
