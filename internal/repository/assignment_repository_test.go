package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-crew/peer-assist-api/internal/models"
)

func newAssignmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryListDetailsByAssistant(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "assistant_id", "course_id", "special", "created_at", "updated_at", "course_code", "course_name"}).
		AddRow(50, 7, 1, false, now, now, "MATH161", "Discrete Mathematics").
		AddRow(51, 7, 2, true, now, now, "SWEN131", "Fundamentals of Programming")
	mock.ExpectQuery(`FROM course_assignments ca\s+JOIN courses c ON c\.id = ca\.course_id\s+WHERE ca\.assistant_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	assignments, err := repo.ListDetailsByAssistant(context.Background(), nil, 7)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "MATH161", assignments[0].CourseCode)
	assert.True(t, assignments[1].Special)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(`INSERT INTO course_assignments`).
		WithArgs(int64(7), int64(1), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(99))

	assignment := models.CourseAssignment{AssistantID: 7, CourseID: 1, Special: true}
	require.NoError(t, repo.Create(context.Background(), nil, &assignment))
	assert.Equal(t, int64(99), assignment.ID)
	assert.False(t, assignment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateSpecial(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE course_assignments SET special = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(true, now, int64(50)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSpecial(context.Background(), nil, 50, true, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateSpecialMissingRow(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE course_assignments`).
		WithArgs(false, now, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSpecial(context.Background(), nil, 404, false, now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAssignmentRepositoryDeleteByCourse(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(`DELETE FROM course_assignments WHERE assistant_id = \$1 AND course_id = \$2`).
		WithArgs(int64(7), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByCourse(context.Background(), nil, 7, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryRunsInsideTransaction(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM course_assignments`).
		WithArgs(int64(7), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteByCourse(context.Background(), tx, 7, 1))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
