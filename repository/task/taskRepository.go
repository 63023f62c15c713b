// Package taskrepo owns the periodic_tasks table: one row per recurring
// reminder, looked up by its unique name.
package taskrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// PeriodicTask is a scheduler-owned recurring job row.
type PeriodicTask struct {
	ID        int64
	Name      string
	Every     int
	Period    string
	StartTime *time.Time
	Enabled   bool
	Kwargs    json.RawMessage
	CreatedAt time.Time
}

// Interval returns the wait between two firings of the task.
func (t *PeriodicTask) Interval() time.Duration {
	switch t.Period {
	case "hours":
		return time.Duration(t.Every) * time.Hour
	case "minutes":
		return time.Duration(t.Every) * time.Minute
	default: // days
		return time.Duration(t.Every) * 24 * time.Hour
	}
}

type Repo interface {
	Create(ctx context.Context, t *PeriodicTask) error
	// UpdateStartTime moves the next-fire time; reports whether a row
	// with that name existed.
	UpdateStartTime(ctx context.Context, name string, startTime time.Time) (bool, error)
	// Disable clears the next-fire time and switches the row off. The
	// row is kept for audit history.
	Disable(ctx context.Context, name string) (bool, error)
	// Due lists enabled tasks whose start_time has passed.
	Due(ctx context.Context, now time.Time) ([]PeriodicTask, error)
	// Advance pushes a fired task's start_time forward.
	Advance(ctx context.Context, id int64, next time.Time) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, t *PeriodicTask) error {
	const q = `
		INSERT INTO periodic_tasks (name, every, period, start_time, enabled, kwargs)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, t.Name, t.Every, t.Period, t.StartTime, t.Kwargs).
		Scan(&t.ID, &t.CreatedAt)
}

func (r *repo) UpdateStartTime(ctx context.Context, name string, startTime time.Time) (bool, error) {
	const q = `
		UPDATE periodic_tasks
		SET start_time = $2, enabled = TRUE
		WHERE name = $1`
	res, err := r.db.ExecContext(ctx, q, name, startTime)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Disable(ctx context.Context, name string) (bool, error) {
	const q = `
		UPDATE periodic_tasks
		SET start_time = NULL, enabled = FALSE
		WHERE name = $1`
	res, err := r.db.ExecContext(ctx, q, name)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) Due(ctx context.Context, now time.Time) ([]PeriodicTask, error) {
	const q = `
		SELECT id, name, every, period, start_time, enabled, kwargs, created_at
		FROM periodic_tasks
		WHERE enabled AND start_time IS NOT NULL AND start_time <= $1
		ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PeriodicTask
	for rows.Next() {
		var t PeriodicTask
		if err := rows.Scan(&t.ID, &t.Name, &t.Every, &t.Period,
			&t.StartTime, &t.Enabled, &t.Kwargs, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repo) Advance(ctx context.Context, id int64, next time.Time) error {
	const q = `UPDATE periodic_tasks SET start_time = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, next)
	return err
}
