package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/study-crew/peer-assist-api/internal/dto"
	"github.com/study-crew/peer-assist-api/internal/models"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
)

type identityReader interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type catalogReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
}

type assignmentStore interface {
	ListDetailsByAssistant(ctx context.Context, exec sqlx.ExtContext, assistantID int64) ([]models.CourseAssignmentDetail, error)
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.CourseAssignment) error
	UpdateSpecial(ctx context.Context, exec sqlx.ExtContext, assignmentID int64, special bool, updatedAt time.Time) error
	DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type rosterInvalidator interface {
	InvalidateAssistant(ctx context.Context, assistantID int64)
}

// ReconcileService is the transaction coordinator: it validates a desired
// roster snapshot, diffs it against persisted state, and applies assignment
// and availability changes as one atomic unit.
type ReconcileService struct {
	users       identityReader
	courses     catalogReader
	assignments assignmentStore
	windows     availabilityWindowStore
	tx          txProvider
	cache       rosterInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
	sync        availabilitySynchronizer
}

// NewReconcileService wires the coordinator's dependencies.
func NewReconcileService(
	users identityReader,
	courses catalogReader,
	assignments assignmentStore,
	windows availabilityWindowStore,
	tx txProvider,
	cache rosterInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *ReconcileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{
		users:       users,
		courses:     courses,
		assignments: assignments,
		windows:     windows,
		tx:          tx,
		cache:       cache,
		validator:   validate,
		logger:      logger,
		sync:        availabilitySynchronizer{windows: windows},
	}
}

// Reconcile mutates the assistant's persisted assignments, special flags, and
// availability windows to match the request exactly. Every write happens in
// one transaction; any validation, not-found, or persistence failure rolls the
// whole call back. Concurrent calls for the same assistant serialize on a
// per-assistant advisory lock taken before current state is read.
func (s *ReconcileService) Reconcile(ctx context.Context, req dto.ReconcileRequest) (*dto.ReconcileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reconciliation payload")
	}

	desired := dedupe(req.CourseIDs)
	desiredSet := make(map[string]struct{}, len(desired))
	for _, code := range desired {
		desiredSet[code] = struct{}{}
	}
	for _, code := range req.SpecialCourseCodes {
		if _, ok := desiredSet[code]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("special course %s is not in the desired course set", code))
		}
	}

	assistant, err := s.users.FindByID(ctx, req.AssistantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assistant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assistant")
	}
	if !assistant.IsAssistant() {
		return nil, appErrors.Clone(appErrors.ErrNotAssistant, "user must be an assistant to be assigned to courses")
	}

	coursesByCode := make(map[string]*models.Course, len(desired))
	for _, code := range desired {
		course, err := s.courses.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course with code %s does not exist", code))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		coursesByCode[code] = course
	}

	schedules, err := s.parseSchedules(desiredSet, req.AvailabilityUpdates)
	if err != nil {
		return nil, err
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				s.logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	// Serializes concurrent reconciliations for one assistant; released at
	// commit or rollback.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, req.AssistantID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock assistant roster")
	}

	current, err := s.assignments.ListDetailsByAssistant(ctx, tx, req.AssistantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current assignments")
	}

	currentState := make([]CurrentAssignment, len(current))
	assignmentByCode := make(map[string]models.CourseAssignmentDetail, len(current))
	for i, assignment := range current {
		currentState[i] = CurrentAssignment{Code: assignment.CourseCode, Special: assignment.Special}
		assignmentByCode[assignment.CourseCode] = assignment
	}

	diff := ComputeAssignmentDiff(desired, req.SpecialCourseCodes, currentState)

	for _, code := range diff.ToRemove {
		assignment := assignmentByCode[code]
		if _, err := s.windows.DeleteByCourse(ctx, tx, req.AssistantID, assignment.CourseID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove course availability")
		}
		if err := s.assignments.DeleteByCourse(ctx, tx, req.AssistantID, assignment.CourseID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove assignment")
		}
	}

	specialSet := make(map[string]struct{}, len(req.SpecialCourseCodes))
	for _, code := range req.SpecialCourseCodes {
		specialSet[code] = struct{}{}
	}
	for _, code := range diff.ToAdd {
		_, special := specialSet[code]
		assignment := models.CourseAssignment{
			AssistantID: req.AssistantID,
			CourseID:    coursesByCode[code].ID,
			Special:     special,
		}
		if err := s.assignments.Create(ctx, tx, &assignment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
		}
	}

	now := time.Now().UTC()
	for _, flip := range diff.SpecialFlips {
		assignment := assignmentByCode[flip.Code]
		if err := s.assignments.UpdateSpecial(ctx, tx, assignment.ID, flip.Special, now); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update special flag")
		}
	}

	for _, code := range desired {
		schedule, targeted := schedules[code]
		if !targeted {
			// No update entry for this course: its windows stay as they are.
			continue
		}
		if err := s.sync.syncCourse(ctx, tx, req.AssistantID, coursesByCode[code].ID, schedule); err != nil {
			return nil, err
		}
	}

	resultAssignments, err := s.assignments.ListDetailsByAssistant(ctx, tx, req.AssistantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resulting assignments")
	}
	resultWindows, err := s.windows.ListDetailsByAssistant(ctx, tx, req.AssistantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resulting availability")
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit roster changes")
	}
	committed = true

	if s.cache != nil {
		s.cache.InvalidateAssistant(ctx, req.AssistantID)
	}

	s.logger.Info("roster reconciled",
		zap.Int64("assistant_id", req.AssistantID),
		zap.Int("added", diff.AddedCount()),
		zap.Int("removed", diff.RemovedCount()),
		zap.Int("special_added", diff.SpecialAdded),
		zap.Int("special_removed", diff.SpecialRemoved),
	)

	return &dto.ReconcileResponse{
		AddedCoursesCount:   diff.AddedCount(),
		RemovedCoursesCount: diff.RemovedCount(),
		SpecialAddedCount:   diff.SpecialAdded,
		SpecialRemovedCount: diff.SpecialRemoved,
		Assignments:         resultAssignments,
		Availability:        resultWindows,
	}, nil
}

// parseSchedules validates every availability update up front, before any
// write is attempted. Updates must target courses in the desired set.
func (s *ReconcileService) parseSchedules(desiredSet map[string]struct{}, updates []dto.AvailabilityUpdate) (map[string]*availabilitySchedule, error) {
	schedules := make(map[string]*availabilitySchedule, len(updates))
	for _, update := range updates {
		if _, ok := desiredSet[update.CourseCode]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("availability update references course %s outside the desired set", update.CourseCode))
		}
		if update.Availability == nil {
			schedules[update.CourseCode] = nil
			continue
		}
		schedule, err := parseAvailabilitySpec(update.CourseCode, update.Availability)
		if err != nil {
			return nil, err
		}
		schedules[update.CourseCode] = schedule
	}
	return schedules, nil
}
