package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-crew/peer-assist-api/internal/dto"
	"github.com/study-crew/peer-assist-api/internal/models"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
)

type usersStub struct {
	users map[int64]*models.User
}

func (s *usersStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

type coursesStub struct {
	byCode map[string]*models.Course
}

func (s *coursesStub) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	course, ok := s.byCode[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (s *coursesStub) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	for _, course := range s.byCode {
		if course.ID == id {
			return course, nil
		}
	}
	return nil, sql.ErrNoRows
}

type assignmentsStub struct {
	state      []models.CourseAssignmentDetail
	codeByID   map[int64]string
	nextID     int64
	createErr  error
	created    []models.CourseAssignment
	deleted    []int64
	specialSet map[int64]bool
}

func newAssignmentsStub(codeByID map[int64]string, current ...models.CourseAssignmentDetail) *assignmentsStub {
	return &assignmentsStub{
		state:      current,
		codeByID:   codeByID,
		nextID:     100,
		specialSet: map[int64]bool{},
	}
}

func (s *assignmentsStub) ListDetailsByAssistant(ctx context.Context, exec sqlx.ExtContext, assistantID int64) ([]models.CourseAssignmentDetail, error) {
	out := make([]models.CourseAssignmentDetail, len(s.state))
	copy(out, s.state)
	return out, nil
}

func (s *assignmentsStub) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.CourseAssignment) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	assignment.ID = s.nextID
	s.created = append(s.created, *assignment)
	s.state = append(s.state, models.CourseAssignmentDetail{
		CourseAssignment: *assignment,
		CourseCode:       s.codeByID[assignment.CourseID],
	})
	return nil
}

func (s *assignmentsStub) UpdateSpecial(ctx context.Context, exec sqlx.ExtContext, assignmentID int64, special bool, updatedAt time.Time) error {
	s.specialSet[assignmentID] = special
	for i := range s.state {
		if s.state[i].ID == assignmentID {
			s.state[i].Special = special
		}
	}
	return nil
}

func (s *assignmentsStub) DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64) error {
	s.deleted = append(s.deleted, courseID)
	kept := s.state[:0]
	for _, assignment := range s.state {
		if assignment.CourseID != courseID {
			kept = append(kept, assignment)
		}
	}
	s.state = kept
	return nil
}

type invalidatorStub struct {
	invalidated []int64
}

func (s *invalidatorStub) InvalidateAssistant(ctx context.Context, assistantID int64) {
	s.invalidated = append(s.invalidated, assistantID)
}

type txProviderMock struct {
	db *sqlx.DB
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func newTxProviderMock(t *testing.T) (*txProviderMock, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func expectLockedTx(mock sqlmock.Sqlmock, assistantID int64) {
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(assistantID).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

type reconcileFixture struct {
	service     *ReconcileService
	assignments *assignmentsStub
	windows     *windowStoreStub
	cache       *invalidatorStub
	mock        sqlmock.Sqlmock
}

func newReconcileFixture(t *testing.T, current ...models.CourseAssignmentDetail) *reconcileFixture {
	users := &usersStub{users: map[int64]*models.User{
		7: {ID: 7, Name: "Hanna", Role: models.RoleAssistant},
		8: {ID: 8, Name: "Selam", Role: models.RoleLearner},
	}}
	courses := &coursesStub{byCode: map[string]*models.Course{
		"SWEN131": {ID: 1, Code: "SWEN131"},
		"MATH161": {ID: 2, Code: "MATH161"},
		"SWEN232": {ID: 3, Code: "SWEN232"},
	}}
	codeByID := map[int64]string{1: "SWEN131", 2: "MATH161", 3: "SWEN232"}

	assignments := newAssignmentsStub(codeByID, current...)
	windows := &windowStoreStub{}
	cache := &invalidatorStub{}
	tx, mock := newTxProviderMock(t)

	service := NewReconcileService(users, courses, assignments, windows, tx, cache, nil, nil)
	return &reconcileFixture{
		service:     service,
		assignments: assignments,
		windows:     windows,
		cache:       cache,
		mock:        mock,
	}
}

func TestReconcileAddsCourses(t *testing.T) {
	f := newReconcileFixture(t)
	expectLockedTx(f.mock, 7)
	f.mock.ExpectCommit()

	resp, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID:        7,
		CourseIDs:          []string{"SWEN131", "MATH161"},
		SpecialCourseCodes: []string{"MATH161"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.AddedCoursesCount)
	assert.Equal(t, 0, resp.RemovedCoursesCount)
	assert.Equal(t, 1, resp.SpecialAddedCount)
	assert.Equal(t, 0, resp.SpecialRemovedCount)
	require.Len(t, f.assignments.created, 2)
	assert.False(t, f.assignments.created[0].Special)
	assert.True(t, f.assignments.created[1].Special)
	assert.Equal(t, []int64{7}, f.cache.invalidated)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestReconcileRemovesCoursesAndTheirWindows(t *testing.T) {
	f := newReconcileFixture(t,
		models.CourseAssignmentDetail{
			CourseAssignment: models.CourseAssignment{ID: 50, AssistantID: 7, CourseID: 1},
			CourseCode:       "SWEN131",
		},
		models.CourseAssignmentDetail{
			CourseAssignment: models.CourseAssignment{ID: 51, AssistantID: 7, CourseID: 2, Special: true},
			CourseCode:       "MATH161",
		},
	)
	expectLockedTx(f.mock, 7)
	f.mock.ExpectCommit()

	resp, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 7,
		CourseIDs:   []string{"SWEN131"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.AddedCoursesCount)
	assert.Equal(t, 1, resp.RemovedCoursesCount)
	assert.Equal(t, 1, resp.SpecialRemovedCount, "removing a special course counts as a special removal")
	assert.Equal(t, []int64{2}, f.assignments.deleted)
	assert.True(t, f.windows.clearedAll, "windows of the removed course are cleared")
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, "SWEN131", resp.Assignments[0].CourseCode)
}

func TestReconcileIdenticalStateIsIdempotent(t *testing.T) {
	f := newReconcileFixture(t,
		models.CourseAssignmentDetail{
			CourseAssignment: models.CourseAssignment{ID: 50, AssistantID: 7, CourseID: 1, Special: true},
			CourseCode:       "SWEN131",
		},
	)
	expectLockedTx(f.mock, 7)
	f.mock.ExpectCommit()

	resp, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID:        7,
		CourseIDs:          []string{"SWEN131"},
		SpecialCourseCodes: []string{"SWEN131"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.AddedCoursesCount)
	assert.Equal(t, 0, resp.RemovedCoursesCount)
	assert.Equal(t, 0, resp.SpecialAddedCount)
	assert.Equal(t, 0, resp.SpecialRemovedCount)
	assert.Empty(t, f.assignments.created)
	assert.Empty(t, f.assignments.deleted)
	assert.Empty(t, f.assignments.specialSet)
}

func TestReconcileRejectsNonAssistant(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 8,
		CourseIDs:   []string{"SWEN131"},
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotAssistant.Code, appErr.Code)
	assert.NoError(t, f.mock.ExpectationsWereMet(), "no transaction is opened")
}

func TestReconcileRejectsUnknownAssistant(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 404,
		CourseIDs:   []string{"SWEN131"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReconcileRejectsUnknownCourse(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 7,
		CourseIDs:   []string{"NOPE999"},
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "NOPE999")
}

func TestReconcileRejectsSpecialOutsideDesiredSet(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID:        7,
		CourseIDs:          []string{"SWEN131"},
		SpecialCourseCodes: []string{"MATH161"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReconcileRejectsAvailabilityOutsideDesiredSet(t *testing.T) {
	f := newReconcileFixture(t)

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 7,
		CourseIDs:   []string{"SWEN131"},
		AvailabilityUpdates: []dto.AvailabilityUpdate{
			{CourseCode: "MATH161", Availability: &dto.AvailabilitySpec{
				Days: []string{"monday"}, StartTime: "10:00", EndTime: "12:00",
			}},
		},
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "outside the desired set")
	assert.NoError(t, f.mock.ExpectationsWereMet(), "validation happens before any write")
}

func TestReconcileSyncsTargetedCoursesOnly(t *testing.T) {
	f := newReconcileFixture(t,
		models.CourseAssignmentDetail{
			CourseAssignment: models.CourseAssignment{ID: 50, AssistantID: 7, CourseID: 1},
			CourseCode:       "SWEN131",
		},
		models.CourseAssignmentDetail{
			CourseAssignment: models.CourseAssignment{ID: 51, AssistantID: 7, CourseID: 2},
			CourseCode:       "MATH161",
		},
	)
	expectLockedTx(f.mock, 7)
	f.mock.ExpectCommit()

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 7,
		CourseIDs:   []string{"SWEN131", "MATH161"},
		AvailabilityUpdates: []dto.AvailabilityUpdate{
			{CourseCode: "SWEN131", Availability: &dto.AvailabilitySpec{
				Days: []string{"monday"}, StartTime: "10:00", EndTime: "12:00",
			}},
		},
	})
	require.NoError(t, err)

	require.Len(t, f.windows.created, 1)
	assert.Equal(t, int64(1), f.windows.created[0].CourseID, "only the targeted course is touched")
	assert.False(t, f.windows.clearedAll)
}

func TestReconcileExplicitNilAvailabilityClearsWindows(t *testing.T) {
	f := newReconcileFixture(t,
		models.CourseAssignmentDetail{
			CourseAssignment: models.CourseAssignment{ID: 50, AssistantID: 7, CourseID: 1},
			CourseCode:       "SWEN131",
		},
	)
	expectLockedTx(f.mock, 7)
	f.mock.ExpectCommit()

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 7,
		CourseIDs:   []string{"SWEN131"},
		AvailabilityUpdates: []dto.AvailabilityUpdate{
			{CourseCode: "SWEN131", Availability: nil},
		},
	})
	require.NoError(t, err)
	assert.True(t, f.windows.clearedAll)
}

func TestReconcileRollsBackOnWriteFailure(t *testing.T) {
	f := newReconcileFixture(t)
	f.assignments.createErr = errors.New("insert failed")
	expectLockedTx(f.mock, 7)
	f.mock.ExpectRollback()

	_, err := f.service.Reconcile(context.Background(), dto.ReconcileRequest{
		AssistantID: 7,
		CourseIDs:   []string{"SWEN131"},
	})
	require.Error(t, err)

	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.cache.invalidated, "cache is not invalidated on rollback")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
