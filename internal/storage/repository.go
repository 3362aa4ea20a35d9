package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	EnqueueMove(ctx context.Context, in PendingMove) (PendingMove, error)
	GetPendingMove(ctx context.Context, taskID string) (PendingMove, error)
	ListPendingMoves(ctx context.Context) ([]PendingMove, error)
	UpdatePendingMove(ctx context.Context, in PendingMove) error
	DeletePendingMove(ctx context.Context, taskID string) error

	RecordCompletion(ctx context.Context, in Completion) (Completion, error)
	CompletionsPerDay(ctx context.Context, since time.Time) ([]DayCount, error)

	RecordFocusSession(ctx context.Context, in FocusSession) (FocusSession, error)
	ListFocusSessions(ctx context.Context, filter FocusSessionFilter) ([]FocusSession, error)
}
