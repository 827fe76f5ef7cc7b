package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/study-crew/peer-assist-api/internal/models"
)

// CourseRepository reads the course catalog. Catalog writes happen outside
// this service; only seeding inserts rows.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course by primary key.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, name, code, year, semester, description, credit_hour, program, created_at, updated_at
FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByCode loads a course by its unique code.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	const query = `SELECT id, name, code, year, semester, description, credit_hour, program, created_at, updated_at
FROM courses WHERE code = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, code); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a catalog course. Used by seeding only.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (name, code, year, semester, description, credit_hour, program, created_at, updated_at)
VALUES (:name, :code, :year, :semester, :description, :credit_hour, :program, :created_at, :updated_at)
ON CONFLICT (code) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}
