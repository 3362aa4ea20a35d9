package storage

import "time"

// PendingMove is a kanban status change the backend has not accepted yet.
// There is at most one per task; the latest status wins.
type PendingMove struct {
	ID            string
	TaskID        string
	Status        string
	Attempts      int
	LastError     string
	NextAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CompletionSource string

const (
	SourceDashboard CompletionSource = "dashboard"
	SourceFocus     CompletionSource = "focus"
	SourcePalette   CompletionSource = "palette"
)

type Completion struct {
	ID          string
	TaskID      string
	Title       string
	Source      CompletionSource
	CompletedAt time.Time
}

type FocusOutcome string

const (
	OutcomeExpired   FocusOutcome = "expired"
	OutcomeCompleted FocusOutcome = "completed"
)

type FocusSession struct {
	ID          string
	TaskID      string
	Title       string
	DurationSec int
	Outcome     FocusOutcome
	EndedAt     time.Time
}

// DayCount is a per-day tally. Day is YYYY-MM-DD in UTC.
type DayCount struct {
	Day   string
	Count int
}

type FocusSessionFilter struct {
	TaskID string
	Since  time.Time
	Limit  int
	Offset int
}
