package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/study-crew/peer-assist-api/internal/models"
)

// AssignmentRepository persists assistant-course assignments. Mutating methods
// accept an sqlx.ExtContext so the reconciliation pipeline can run them inside
// one transaction; passing nil falls back to the pool.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListDetailsByAssistant returns the assistant's assignments with catalog fields.
func (r *AssignmentRepository) ListDetailsByAssistant(ctx context.Context, exec sqlx.ExtContext, assistantID int64) ([]models.CourseAssignmentDetail, error) {
	const query = `
SELECT ca.id, ca.assistant_id, ca.course_id, ca.special, ca.created_at, ca.updated_at,
       c.code AS course_code, c.name AS course_name
FROM course_assignments ca
JOIN courses c ON c.id = ca.course_id
WHERE ca.assistant_id = $1
ORDER BY c.code ASC`
	var assignments []models.CourseAssignmentDetail
	if err := sqlx.SelectContext(ctx, r.exec(exec), &assignments, query, assistantID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// FindByAssistantAndCourse loads a single assignment with catalog fields.
func (r *AssignmentRepository) FindByAssistantAndCourse(ctx context.Context, assistantID, courseID int64) (*models.CourseAssignmentDetail, error) {
	const query = `
SELECT ca.id, ca.assistant_id, ca.course_id, ca.special, ca.created_at, ca.updated_at,
       c.code AS course_code, c.name AS course_name
FROM course_assignments ca
JOIN courses c ON c.id = ca.course_id
WHERE ca.assistant_id = $1 AND ca.course_id = $2`
	var assignment models.CourseAssignmentDetail
	if err := r.db.GetContext(ctx, &assignment, query, assistantID, courseID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListAssistantsByCourse returns the assistants assigned to a course.
func (r *AssignmentRepository) ListAssistantsByCourse(ctx context.Context, courseID int64) ([]models.CourseAssistant, error) {
	const query = `
SELECT ca.id AS assignment_id, ca.assistant_id, ca.special,
       u.name, u.email, u.academic_year, u.bio
FROM course_assignments ca
JOIN users u ON u.id = ca.assistant_id
WHERE ca.course_id = $1
ORDER BY u.name ASC`
	var assistants []models.CourseAssistant
	if err := r.db.SelectContext(ctx, &assistants, query, courseID); err != nil {
		return nil, fmt.Errorf("list course assistants: %w", err)
	}
	return assistants, nil
}

// Create inserts a new assignment and fills in its generated id.
func (r *AssignmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.CourseAssignment) error {
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	if assignment.UpdatedAt.IsZero() {
		assignment.UpdatedAt = assignment.CreatedAt
	}
	const query = `INSERT INTO course_assignments (assistant_id, course_id, special, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	row := r.exec(exec).QueryRowxContext(ctx, query, assignment.AssistantID, assignment.CourseID, assignment.Special, assignment.CreatedAt, assignment.UpdatedAt)
	if err := row.Scan(&assignment.ID); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// UpdateSpecial flips the special flag in place, preserving row identity.
func (r *AssignmentRepository) UpdateSpecial(ctx context.Context, exec sqlx.ExtContext, assignmentID int64, special bool, updatedAt time.Time) error {
	const query = `UPDATE course_assignments SET special = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, special, updatedAt, assignmentID)
	if err != nil {
		return fmt.Errorf("update assignment special flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByCourse removes the assignment linking the assistant to a course.
func (r *AssignmentRepository) DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64) error {
	const query = `DELETE FROM course_assignments WHERE assistant_id = $1 AND course_id = $2`
	result, err := r.exec(exec).ExecContext(ctx, query, assistantID, courseID)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
