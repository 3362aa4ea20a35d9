package actions

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/model"
)

type Row struct {
	Task    model.Task
	Leaving bool
}

// TaskList is the dashboard task list with an optional search filter.
type TaskList struct {
	rows   []Row
	filter string
	cursor int
}

func NewTaskList() *TaskList {
	return &TaskList{}
}

func (l *TaskList) Set(tasks []model.Task) {
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, Row{Task: t})
	}
	l.rows = rows
	l.clamp()
}

func (l *TaskList) Len() int { return len(l.rows) }

func (l *TaskList) SetFilter(q string) {
	l.filter = strings.ToLower(strings.TrimSpace(q))
	l.clamp()
}

func (l *TaskList) Filter() string { return l.filter }

func (l *TaskList) matches(t model.Task) bool {
	if l.filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), l.filter) ||
		strings.Contains(strings.ToLower(t.Notes), l.filter)
}

// Visible returns rows that pass the filter, in order.
func (l *TaskList) Visible() []Row {
	out := make([]Row, 0, len(l.rows))
	for _, r := range l.rows {
		if l.matches(r.Task) {
			out = append(out, r)
		}
	}
	return out
}

func (l *TaskList) Cursor() int { return l.cursor }

func (l *TaskList) Up() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *TaskList) Down() {
	if l.cursor < len(l.Visible())-1 {
		l.cursor++
	}
}

// Selected returns the row under the cursor. A leaving row is not selectable.
func (l *TaskList) Selected() (model.Task, bool) {
	vis := l.Visible()
	if l.cursor < 0 || l.cursor >= len(vis) || vis[l.cursor].Leaving {
		return model.Task{}, false
	}
	return vis[l.cursor].Task, true
}

func (l *TaskList) IsLeaving(id string) bool {
	for _, r := range l.rows {
		if r.Task.ID == id {
			return r.Leaving
		}
	}
	return false
}

func (l *TaskList) Find(id string) (model.Task, bool) {
	for _, r := range l.rows {
		if r.Task.ID == id {
			return r.Task, true
		}
	}
	return model.Task{}, false
}

// BeginRemoval marks the row as leaving and schedules its removal.
func (l *TaskList) BeginRemoval(id string) tea.Cmd {
	for i := range l.rows {
		if l.rows[i].Task.ID == id {
			l.rows[i].Leaving = true
			return tea.Tick(RemovalDelay, func(time.Time) tea.Msg { return RowRemovedMsg{ID: id} })
		}
	}
	return nil
}

func (l *TaskList) Remove(id string) bool {
	for i := range l.rows {
		if l.rows[i].Task.ID == id {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			l.clamp()
			return true
		}
	}
	return false
}

func (l *TaskList) clamp() {
	n := len(l.Visible())
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// Confirm guards a destructive action behind a second key press.
type Confirm struct {
	id    string
	title string
}

func (c *Confirm) Request(id, title string) {
	c.id = id
	c.title = title
}

func (c *Confirm) Pending() (id, title string, ok bool) {
	return c.id, c.title, c.id != ""
}

func (c *Confirm) Confirm() (string, bool) {
	id := c.id
	c.id, c.title = "", ""
	return id, id != ""
}

func (c *Confirm) Cancel() {
	c.id, c.title = "", ""
}

// HabitBoard mirrors habit counters as the backend reports them.
type HabitBoard struct {
	habits []model.Habit
	cursor int
}

func NewHabitBoard() *HabitBoard {
	return &HabitBoard{}
}

func (b *HabitBoard) Set(habits []model.Habit) {
	b.habits = append([]model.Habit(nil), habits...)
	if b.cursor >= len(b.habits) {
		b.cursor = 0
	}
}

func (b *HabitBoard) Habits() []model.Habit {
	return append([]model.Habit(nil), b.habits...)
}

// Apply copies counter and streak from a backend response. It reports
// whether the habit is on the board.
func (b *HabitBoard) Apply(h model.Habit) bool {
	for i := range b.habits {
		if b.habits[i].ID == h.ID {
			b.habits[i].Counter = h.Counter
			b.habits[i].Streak = h.Streak
			return true
		}
	}
	return false
}

func (b *HabitBoard) Get(id string) (model.Habit, bool) {
	for _, h := range b.habits {
		if h.ID == id {
			return h, true
		}
	}
	return model.Habit{}, false
}

func (b *HabitBoard) Cursor() int { return b.cursor }

func (b *HabitBoard) Next() {
	if len(b.habits) > 0 {
		b.cursor = (b.cursor + 1) % len(b.habits)
	}
}

func (b *HabitBoard) Selected() (model.Habit, bool) {
	if b.cursor < 0 || b.cursor >= len(b.habits) {
		return model.Habit{}, false
	}
	return b.habits[b.cursor], true
}
