package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Fixed width so that stored timestamps sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens the store at path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) EnqueueMove(ctx context.Context, in PendingMove) (PendingMove, error) {
	in.TaskID = strings.TrimSpace(in.TaskID)
	if in.TaskID == "" {
		return PendingMove{}, errors.New("storage: pending move requires a task id")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if in.NextAttemptAt.IsZero() {
		in.NextAttemptAt = now
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_moves (id, task_id, status, attempts, last_error, next_attempt_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			status = excluded.status,
			attempts = excluded.attempts,
			last_error = excluded.last_error,
			next_attempt_at = excluded.next_attempt_at,
			updated_at = excluded.updated_at`,
		in.ID, in.TaskID, in.Status, in.Attempts, in.LastError,
		mustTime(in.NextAttemptAt), mustTime(now), mustTime(now),
	)
	if err != nil {
		return PendingMove{}, fmt.Errorf("enqueue move: %w", err)
	}
	return r.GetPendingMove(ctx, in.TaskID)
}

func (r *SQLiteRepository) GetPendingMove(ctx context.Context, taskID string) (PendingMove, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, task_id, status, attempts, last_error, next_attempt_at, created_at, updated_at
		FROM pending_moves WHERE task_id = ?`, taskID)
	move, err := scanPendingMove(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PendingMove{}, ErrNotFound
		}
		return PendingMove{}, err
	}
	return move, nil
}

func (r *SQLiteRepository) ListPendingMoves(ctx context.Context) ([]PendingMove, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, status, attempts, last_error, next_attempt_at, created_at, updated_at
		FROM pending_moves ORDER BY next_attempt_at ASC, task_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PendingMove, 0)
	for rows.Next() {
		move, scanErr := scanPendingMove(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, move)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdatePendingMove(ctx context.Context, in PendingMove) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pending_moves
		SET status = ?, attempts = ?, last_error = ?, next_attempt_at = ?, updated_at = ?
		WHERE task_id = ?`,
		in.Status, in.Attempts, in.LastError, mustTime(in.NextAttemptAt), mustTime(r.now()), in.TaskID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeletePendingMove(ctx context.Context, taskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_moves WHERE task_id = ?`, taskID)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) RecordCompletion(ctx context.Context, in Completion) (Completion, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Source == "" {
		in.Source = SourceDashboard
	}
	if in.CompletedAt.IsZero() {
		in.CompletedAt = r.now()
	}
	in.CompletedAt = in.CompletedAt.UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (id, task_id, title, source, completed_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.TaskID, in.Title, string(in.Source), mustTime(in.CompletedAt),
	)
	if err != nil {
		return Completion{}, fmt.Errorf("record completion: %w", err)
	}
	return in, nil
}

// CompletionsPerDay counts completions per UTC day from since onward, oldest
// day first. Days without completions are omitted.
func (r *SQLiteRepository) CompletionsPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(completed_at, 1, 10) AS day, COUNT(*)
		FROM completions
		WHERE completed_at >= ?
		GROUP BY day
		ORDER BY day ASC`, mustTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DayCount, 0)
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) RecordFocusSession(ctx context.Context, in FocusSession) (FocusSession, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.EndedAt.IsZero() {
		in.EndedAt = r.now()
	}
	in.EndedAt = in.EndedAt.UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO focus_sessions (id, task_id, title, duration_sec, outcome, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.TaskID, in.Title, in.DurationSec, string(in.Outcome), mustTime(in.EndedAt),
	)
	if err != nil {
		return FocusSession{}, fmt.Errorf("record focus session: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) ListFocusSessions(ctx context.Context, filter FocusSessionFilter) ([]FocusSession, error) {
	query := `SELECT id, task_id, title, duration_sec, outcome, ended_at FROM focus_sessions`
	args := make([]any, 0, 4)
	where := make([]string, 0, 2)
	if filter.TaskID != "" {
		where = append(where, `task_id = ?`)
		args = append(args, filter.TaskID)
	}
	if !filter.Since.IsZero() {
		where = append(where, `ended_at >= ?`)
		args = append(args, mustTime(filter.Since))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY ended_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FocusSession, 0)
	for rows.Next() {
		var fs FocusSession
		var outcome, ended string
		if err := rows.Scan(&fs.ID, &fs.TaskID, &fs.Title, &fs.DurationSec, &outcome, &ended); err != nil {
			return nil, err
		}
		endedAt, err := parseRequiredTime(ended)
		if err != nil {
			return nil, err
		}
		fs.Outcome = FocusOutcome(outcome)
		fs.EndedAt = endedAt
		out = append(out, fs)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPendingMove(s scanner) (PendingMove, error) {
	var out PendingMove
	var next, created, updated string
	if err := s.Scan(&out.ID, &out.TaskID, &out.Status, &out.Attempts, &out.LastError, &next, &created, &updated); err != nil {
		return PendingMove{}, err
	}
	nextAt, err := parseRequiredTime(next)
	if err != nil {
		return PendingMove{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return PendingMove{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return PendingMove{}, err
	}
	out.NextAttemptAt = nextAt
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
