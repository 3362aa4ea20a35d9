package focus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/api"
	"github.com/sandeepkv93/adhdash/internal/model"
	"github.com/sandeepkv93/adhdash/internal/timer"
)

var (
	ErrNoTask = errors.New("focus: no task selected")
	ErrBusy   = errors.New("focus: completion already in flight")
)

const (
	UrgentBadge          = "🚨 Urgent"
	ReloadDelay          = 2 * time.Second
	SuccessToastDuration = 4 * time.Second
	ExpiryToastDuration  = 5 * time.Second
)

type TaskSource interface {
	ListTasks(ctx context.Context, q api.TaskQuery) ([]model.Task, error)
}

type Backend interface {
	TaskSource
	MarkDone(ctx context.Context, id string) error
}

type State int

const (
	StateClosed State = iota
	StateOpen
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseEmpty
	PhaseError
)

type PriorityMsg struct {
	Generation int
	Task       model.Task
	Urgent     bool
	Err        error
}

type CompletedMsg struct {
	Task model.Task
	Err  error
}

// ReloadMsg follows a completed task. Generation ties it to the session that
// completed it.
type ReloadMsg struct {
	Generation int
}

// SelectPriorityTask picks the first Next Action task, falling back to the
// first urgent task.
func SelectPriorityTask(ctx context.Context, src TaskSource) (task model.Task, urgent bool, err error) {
	tasks, err := src.ListTasks(ctx, api.TaskQuery{Status: "Next Action", Limit: 1})
	if err != nil {
		return model.Task{}, false, fmt.Errorf("load next action: %w", err)
	}
	if len(tasks) > 0 {
		return tasks[0], false, nil
	}
	tasks, err = src.ListTasks(ctx, api.TaskQuery{Urgency: model.UrgencyUrgent, Limit: 1})
	if err != nil {
		return model.Task{}, false, fmt.Errorf("load urgent: %w", err)
	}
	if len(tasks) > 0 {
		return tasks[0], true, nil
	}
	return model.Task{}, false, ErrNoTask
}

// Controller owns the Focus Mode session: the selected task and its
// Pomodoro timer.
type Controller struct {
	backend    Backend
	timer      *timer.Pomodoro
	logger     *slog.Logger
	state      State
	phase      Phase
	task       *model.Task
	urgent     bool
	loadErr    error
	generation int
	cancel     context.CancelFunc
	completing bool
}

func New(backend Backend, pomodoro *timer.Pomodoro, logger *slog.Logger) *Controller {
	if pomodoro == nil {
		pomodoro = timer.New(timer.DefaultSessionSec, nil, logger)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{backend: backend, timer: pomodoro, logger: logger}
}

func (c *Controller) Timer() *timer.Pomodoro { return c.timer }
func (c *Controller) IsOpen() bool           { return c.state == StateOpen }
func (c *Controller) Phase() Phase           { return c.phase }
func (c *Controller) LoadErr() error         { return c.loadErr }
func (c *Controller) Completing() bool       { return c.completing }
func (c *Controller) Generation() int        { return c.generation }

// Open shows the modal, resets the timer and starts loading the priority
// task. A fetch from an earlier Open is cancelled.
func (c *Controller) Open(ctx context.Context) tea.Cmd {
	c.stopFetch()
	c.state = StateOpen
	c.phase = PhaseLoading
	c.task = nil
	c.urgent = false
	c.loadErr = nil
	c.timer.Reset()

	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.generation++
	gen := c.generation
	src := c.backend
	return func() tea.Msg {
		task, urgent, err := SelectPriorityTask(fetchCtx, src)
		return PriorityMsg{Generation: gen, Task: task, Urgent: urgent, Err: err}
	}
}

// Close hides the modal. The timer keeps its remaining time.
func (c *Controller) Close() {
	c.stopFetch()
	c.generation++
	c.state = StateClosed
	c.timer.Pause()
}

func (c *Controller) stopFetch() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// ApplyPriority stores a fetch result. Results from a superseded fetch are
// dropped and reported as false.
func (c *Controller) ApplyPriority(msg PriorityMsg) bool {
	if c.state != StateOpen || msg.Generation != c.generation {
		return false
	}
	c.stopFetch()
	switch {
	case msg.Err == nil:
		task := msg.Task
		c.task = &task
		c.urgent = msg.Urgent
		c.phase = PhaseReady
	case errors.Is(msg.Err, ErrNoTask):
		c.task = nil
		c.phase = PhaseEmpty
	default:
		c.task = nil
		c.loadErr = msg.Err
		c.phase = PhaseError
		c.logger.Warn("focus task load failed", "error", msg.Err)
	}
	return true
}

func (c *Controller) Task() (model.Task, bool) {
	if c.task == nil {
		return model.Task{}, false
	}
	return *c.task, true
}

func (c *Controller) TaskID() string {
	if c.task == nil {
		return ""
	}
	return c.task.ID
}

// Headline returns the title and subtitle shown above the timer.
func (c *Controller) Headline() (title, subtitle string) {
	switch c.phase {
	case PhaseLoading:
		return "Loading…", ""
	case PhaseEmpty:
		return "Nothing to do!", "Add a new task"
	case PhaseError:
		return "Failed to load", ""
	}
	if c.task == nil {
		return "", ""
	}
	if c.urgent {
		return c.task.Title, UrgentBadge
	}
	return c.task.Title, c.task.Label()
}

// Complete marks the session task done. ErrNoTask means there is nothing to
// complete; the caller warns and closes the modal.
func (c *Controller) Complete(ctx context.Context) (tea.Cmd, error) {
	if c.task == nil {
		return nil, ErrNoTask
	}
	if c.completing {
		return nil, ErrBusy
	}
	c.completing = true
	task := *c.task
	backend := c.backend
	return func() tea.Msg {
		return CompletedMsg{Task: task, Err: backend.MarkDone(ctx, task.ID)}
	}, nil
}

// Finish applies a completion result. On success it returns the delayed
// reload; on failure the session is left untouched so the user can retry.
func (c *Controller) Finish(msg CompletedMsg) tea.Cmd {
	c.completing = false
	if msg.Err != nil {
		c.logger.Warn("focus completion failed", "task_id", msg.Task.ID, "error", msg.Err)
		return nil
	}
	gen := c.generation
	return tea.Tick(ReloadDelay, func(time.Time) tea.Msg { return ReloadMsg{Generation: gen} })
}

// HandleReload closes the modal after a completed task. A reload from a
// session that was since closed or reopened is ignored and reported as false.
func (c *Controller) HandleReload(msg ReloadMsg) bool {
	if msg.Generation != c.generation {
		return false
	}
	if c.state == StateOpen {
		c.Close()
	}
	c.task = nil
	return true
}
