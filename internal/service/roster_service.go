package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/study-crew/peer-assist-api/internal/dto"
	"github.com/study-crew/peer-assist-api/internal/models"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
)

type rosterAssignmentReader interface {
	ListDetailsByAssistant(ctx context.Context, exec sqlx.ExtContext, assistantID int64) ([]models.CourseAssignmentDetail, error)
	FindByAssistantAndCourse(ctx context.Context, assistantID, courseID int64) (*models.CourseAssignmentDetail, error)
	ListAssistantsByCourse(ctx context.Context, courseID int64) ([]models.CourseAssistant, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// RosterService serves the read side of assistant rosters, with an optional
// Redis-backed cache that the reconciler invalidates after every commit.
type RosterService struct {
	users       identityReader
	courses     catalogReader
	assignments rosterAssignmentReader
	windows     availabilityWindowStore
	cache       rosterCache
	metrics     *MetricsService
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewRosterService constructs the roster read service.
func NewRosterService(
	users identityReader,
	courses catalogReader,
	assignments rosterAssignmentReader,
	windows availabilityWindowStore,
	cache rosterCache,
	metrics *MetricsService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &RosterService{
		users:       users,
		courses:     courses,
		assignments: assignments,
		windows:     windows,
		cache:       cache,
		metrics:     metrics,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

func rosterCacheKey(assistantID int64) string {
	return fmt.Sprintf("roster:%d:entries", assistantID)
}

// ListByAssistant returns the assistant's assignments, each with its
// availability windows. The second return reports a cache hit.
func (s *RosterService) ListByAssistant(ctx context.Context, assistantID int64) ([]dto.RosterEntry, bool, error) {
	if _, err := s.users.FindByID(ctx, assistantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "assistant not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assistant")
	}

	key := rosterCacheKey(assistantID)
	if s.cache != nil {
		start := time.Now()
		var cached []dto.RosterEntry
		err := s.cache.Get(ctx, key, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			return cached, true, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("roster cache read failed", zap.Error(err))
		}
	}

	assignments, err := s.assignments.ListDetailsByAssistant(ctx, nil, assistantID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	windows, err := s.windows.ListDetailsByAssistant(ctx, nil, assistantID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}

	windowsByCourse := make(map[int64][]models.AvailabilityWindowDetail, len(windows))
	for _, window := range windows {
		windowsByCourse[window.CourseID] = append(windowsByCourse[window.CourseID], window)
	}

	entries := make([]dto.RosterEntry, 0, len(assignments))
	for _, assignment := range assignments {
		entries = append(entries, dto.RosterEntry{
			CourseAssignmentDetail: assignment,
			Availability:           windowsByCourse[assignment.CourseID],
		})
	}

	if s.cache != nil {
		start := time.Now()
		if err := s.cache.Set(ctx, key, entries, s.cacheTTL); err != nil {
			s.logger.Warn("roster cache write failed", zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(start))
	}

	return entries, false, nil
}

// AssignmentDetails loads a single assignment; courseRef may be a course id or
// a course code.
func (s *RosterService) AssignmentDetails(ctx context.Context, assistantID int64, courseRef string) (*models.CourseAssignmentDetail, error) {
	if _, err := s.users.FindByID(ctx, assistantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assistant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assistant")
	}

	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignments.FindByAssistantAndCourse(ctx, assistantID, course.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found for this assistant and course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// AssistantsForCourse lists assistants offering a course; courseRef may be a
// course id or code.
func (s *RosterService) AssistantsForCourse(ctx context.Context, courseRef string) ([]models.CourseAssistant, error) {
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	assistants, err := s.assignments.ListAssistantsByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course assistants")
	}
	return assistants, nil
}

// InvalidateAssistant drops the assistant's cached roster entries.
func (s *RosterService) InvalidateAssistant(ctx context.Context, assistantID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("roster:%d:*", assistantID)); err != nil {
		s.logger.Warn("roster cache invalidation failed", zap.Int64("assistant_id", assistantID), zap.Error(err))
	}
}

func (s *RosterService) resolveCourse(ctx context.Context, courseRef string) (*models.Course, error) {
	if id, err := strconv.ParseInt(courseRef, 10, 64); err == nil {
		course, err := s.courses.FindByID(ctx, id)
		if err == nil {
			return course, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
	}
	course, err := s.courses.FindByCode(ctx, courseRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}
