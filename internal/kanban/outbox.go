package kanban

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/scheduler"
	"github.com/sandeepkv93/adhdash/internal/storage"
)

const (
	DefaultBackoff     = 10 * time.Second
	DefaultMaxAttempts = 5
)

type MoveStore interface {
	EnqueueMove(ctx context.Context, in storage.PendingMove) (storage.PendingMove, error)
	GetPendingMove(ctx context.Context, taskID string) (storage.PendingMove, error)
	ListPendingMoves(ctx context.Context) ([]storage.PendingMove, error)
	UpdatePendingMove(ctx context.Context, in storage.PendingMove) error
	DeletePendingMove(ctx context.Context, taskID string) error
}

type Scheduler interface {
	Schedule(ev scheduler.Event) error
}

type RetriedMsg struct {
	TaskID  string
	Status  string
	Attempt int
	Err     error
}

type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeResolved
	OutcomeRescheduled
	OutcomeGaveUp
)

// Outbox persists failed moves and re-issues them with linear backoff.
// A nil *Outbox disables queueing.
type Outbox struct {
	store       MoveStore
	sched       Scheduler
	backoff     time.Duration
	maxAttempts int
	now         func() time.Time
	logger      *slog.Logger
}

func NewOutbox(store MoveStore, sched Scheduler, backoff time.Duration, maxAttempts int, logger *slog.Logger) *Outbox {
	if store == nil || sched == nil {
		return nil
	}
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Outbox{
		store:       store,
		sched:       sched,
		backoff:     backoff,
		maxAttempts: maxAttempts,
		now:         time.Now,
		logger:      logger,
	}
}

func (o *Outbox) Enabled() bool { return o != nil }

func (o *Outbox) MaxAttempts() int {
	if o == nil {
		return 0
	}
	return o.maxAttempts
}

// Enqueue records a failed move and schedules its first retry.
func (o *Outbox) Enqueue(ctx context.Context, move Move, cause error) error {
	if o == nil {
		return nil
	}
	next := o.now().UTC().Add(o.backoff)
	pm, err := o.store.EnqueueMove(ctx, storage.PendingMove{
		TaskID:        move.TaskID,
		Status:        move.To,
		Attempts:      1,
		LastError:     errText(cause),
		NextAttemptAt: next,
	})
	if err != nil {
		return fmt.Errorf("queue move %s: %w", move.TaskID, err)
	}
	o.logger.Info("move queued for retry", "task_id", pm.TaskID, "status", pm.Status, "next_attempt_at", next)
	return o.schedule(pm)
}

// Resume schedules every move left from an earlier run.
func (o *Outbox) Resume(ctx context.Context) (int, error) {
	if o == nil {
		return 0, nil
	}
	moves, err := o.store.ListPendingMoves(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending moves: %w", err)
	}
	now := o.now().UTC()
	for _, pm := range moves {
		if pm.NextAttemptAt.Before(now) {
			pm.NextAttemptAt = now
		}
		if err := o.schedule(pm); err != nil {
			return 0, err
		}
	}
	return len(moves), nil
}

// Due turns a fired retry event into a status update. It returns nil when the
// move was resolved or superseded in the meantime.
func (o *Outbox) Due(ctx context.Context, patcher StatusPatcher, ev scheduler.Event) tea.Cmd {
	if o == nil || ev.Kind != scheduler.KindMoveRetry {
		return nil
	}
	pm, err := o.store.GetPendingMove(ctx, ev.Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			o.logger.Warn("load pending move failed", "task_id", ev.Key, "error", err)
		}
		return nil
	}
	if pm.Attempts != ev.Attempt {
		return nil
	}
	return func() tea.Msg {
		err := patcher.UpdateStatus(ctx, pm.TaskID, pm.Status)
		return RetriedMsg{TaskID: pm.TaskID, Status: pm.Status, Attempt: pm.Attempts, Err: err}
	}
}

// Resolve records a retry result.
func (o *Outbox) Resolve(ctx context.Context, msg RetriedMsg) (Outcome, error) {
	if o == nil {
		return OutcomeIgnored, nil
	}
	pm, err := o.store.GetPendingMove(ctx, msg.TaskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return OutcomeIgnored, nil
		}
		return OutcomeIgnored, err
	}
	if pm.Status != msg.Status || pm.Attempts != msg.Attempt {
		return OutcomeIgnored, nil
	}
	if msg.Err == nil {
		if err := o.store.DeletePendingMove(ctx, pm.TaskID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return OutcomeResolved, err
		}
		o.logger.Info("queued move applied", "task_id", pm.TaskID, "status", pm.Status, "attempts", pm.Attempts)
		return OutcomeResolved, nil
	}
	if pm.Attempts >= o.maxAttempts {
		if err := o.store.DeletePendingMove(ctx, pm.TaskID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return OutcomeGaveUp, err
		}
		o.logger.Warn("queued move dropped", "task_id", pm.TaskID, "status", pm.Status, "attempts", pm.Attempts, "error", msg.Err)
		return OutcomeGaveUp, nil
	}
	pm.Attempts++
	pm.LastError = errText(msg.Err)
	pm.NextAttemptAt = o.now().UTC().Add(o.backoff * time.Duration(pm.Attempts))
	if err := o.store.UpdatePendingMove(ctx, pm); err != nil {
		return OutcomeRescheduled, err
	}
	return OutcomeRescheduled, o.schedule(pm)
}

// Forget drops a queued move, e.g. when the card moved again successfully.
func (o *Outbox) Forget(ctx context.Context, taskID string) error {
	if o == nil {
		return nil
	}
	err := o.store.DeletePendingMove(ctx, taskID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (o *Outbox) schedule(pm storage.PendingMove) error {
	return o.sched.Schedule(scheduler.Event{
		ID:        pm.ID,
		Kind:      scheduler.KindMoveRetry,
		Key:       pm.TaskID,
		Attempt:   pm.Attempts,
		TriggerAt: pm.NextAttemptAt,
	})
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
