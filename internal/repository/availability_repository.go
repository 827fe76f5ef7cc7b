package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/study-crew/peer-assist-api/internal/models"
)

// AvailabilityRepository persists weekly availability windows. Like the
// assignment repository, every method accepts an sqlx.ExtContext for
// transactional use and falls back to the pool when nil.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListDetailsByAssistant returns all of an assistant's windows with course codes.
func (r *AvailabilityRepository) ListDetailsByAssistant(ctx context.Context, exec sqlx.ExtContext, assistantID int64) ([]models.AvailabilityWindowDetail, error) {
	const query = `
SELECT aw.id, aw.assistant_id, aw.course_id, aw.day, aw.start_time, aw.end_time, aw.created_at, aw.updated_at,
       c.code AS course_code
FROM availability_windows aw
JOIN courses c ON c.id = aw.course_id
WHERE aw.assistant_id = $1
ORDER BY c.code ASC, aw.day ASC`
	var windows []models.AvailabilityWindowDetail
	if err := sqlx.SelectContext(ctx, r.exec(exec), &windows, query, assistantID); err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}
	return windows, nil
}

// ListByCourse returns the windows for one (assistant, course) pair.
func (r *AvailabilityRepository) ListByCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64) ([]models.AvailabilityWindow, error) {
	const query = `
SELECT id, assistant_id, course_id, day, start_time, end_time, created_at, updated_at
FROM availability_windows
WHERE assistant_id = $1 AND course_id = $2
ORDER BY day ASC`
	var windows []models.AvailabilityWindow
	if err := sqlx.SelectContext(ctx, r.exec(exec), &windows, query, assistantID, courseID); err != nil {
		return nil, fmt.Errorf("list course availability: %w", err)
	}
	return windows, nil
}

// Create inserts a new window and fills in its generated id.
func (r *AvailabilityRepository) Create(ctx context.Context, exec sqlx.ExtContext, window *models.AvailabilityWindow) error {
	now := time.Now().UTC()
	if window.CreatedAt.IsZero() {
		window.CreatedAt = now
	}
	if window.UpdatedAt.IsZero() {
		window.UpdatedAt = window.CreatedAt
	}
	const query = `INSERT INTO availability_windows (assistant_id, course_id, day, start_time, end_time, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	row := r.exec(exec).QueryRowxContext(ctx, query,
		window.AssistantID, window.CourseID, window.Day, window.StartTime, window.EndTime, window.CreatedAt, window.UpdatedAt)
	if err := row.Scan(&window.ID); err != nil {
		return fmt.Errorf("create availability window: %w", err)
	}
	return nil
}

// UpdateTimes changes a window's time range in place, preserving created_at.
func (r *AvailabilityRepository) UpdateTimes(ctx context.Context, exec sqlx.ExtContext, id int64, start, end models.TimeOfDay, updatedAt time.Time) error {
	const query = `UPDATE availability_windows SET start_time = $1, end_time = $2, updated_at = $3 WHERE id = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, start, end, updatedAt, id)
	if err != nil {
		return fmt.Errorf("update availability window: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated window rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByCourse removes every window for one (assistant, course) pair and
// reports how many rows went away.
func (r *AvailabilityRepository) DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64) (int64, error) {
	const query = `DELETE FROM availability_windows WHERE assistant_id = $1 AND course_id = $2`
	result, err := r.exec(exec).ExecContext(ctx, query, assistantID, courseID)
	if err != nil {
		return 0, fmt.Errorf("delete course availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check deleted window rows: %w", err)
	}
	return affected, nil
}

// DeleteByCourseAndDay removes the window for a single deselected day.
func (r *AvailabilityRepository) DeleteByCourseAndDay(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64, day models.Weekday) error {
	const query = `DELETE FROM availability_windows WHERE assistant_id = $1 AND course_id = $2 AND day = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, assistantID, courseID, day); err != nil {
		return fmt.Errorf("delete day availability: %w", err)
	}
	return nil
}
