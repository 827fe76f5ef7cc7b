package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/study-crew/peer-assist-api/internal/dto"
	"github.com/study-crew/peer-assist-api/internal/models"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
)

type availabilityWindowStore interface {
	ListDetailsByAssistant(ctx context.Context, exec sqlx.ExtContext, assistantID int64) ([]models.AvailabilityWindowDetail, error)
	ListByCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64) ([]models.AvailabilityWindow, error)
	Create(ctx context.Context, exec sqlx.ExtContext, window *models.AvailabilityWindow) error
	UpdateTimes(ctx context.Context, exec sqlx.ExtContext, id int64, start, end models.TimeOfDay, updatedAt time.Time) error
	DeleteByCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64) (int64, error)
	DeleteByCourseAndDay(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64, day models.Weekday) error
}

// availabilitySchedule holds the validated weekly range for one course.
type availabilitySchedule struct {
	days  []models.Weekday
	start models.TimeOfDay
	end   models.TimeOfDay
}

// parseAvailabilitySpec validates a per-course availability payload at the
// request boundary. Every failure names the offending course.
func parseAvailabilitySpec(courseCode string, spec *dto.AvailabilitySpec) (*availabilitySchedule, error) {
	if len(spec.Days) == 0 || spec.StartTime == "" || spec.EndTime == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid availability data for course %s", courseCode))
	}

	seen := make(map[models.Weekday]struct{}, len(spec.Days))
	days := make([]models.Weekday, 0, len(spec.Days))
	for _, raw := range spec.Days {
		day, err := models.ParseWeekday(raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s for course %s", err.Error(), courseCode))
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Index() < days[j].Index() })

	start, err := models.ParseTimeOfDay(spec.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid availability data for course %s: %s", courseCode, err.Error()))
	}
	end, err := models.ParseTimeOfDay(spec.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid availability data for course %s: %s", courseCode, err.Error()))
	}
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("end time must be after start time for course %s", courseCode))
	}

	return &availabilitySchedule{days: days, start: start, end: end}, nil
}

// availabilitySynchronizer reconciles per-course weekday windows against a
// desired schedule inside the caller's transaction.
type availabilitySynchronizer struct {
	windows availabilityWindowStore
}

// syncCourse makes the persisted windows for (assistant, course) equal exactly
// the desired schedule: one row per selected day, all sharing the supplied
// time range. A nil schedule clears every window for the course. Rows whose
// day survives keep their identity and created_at; their times are only
// written when they actually change.
func (s *availabilitySynchronizer) syncCourse(ctx context.Context, exec sqlx.ExtContext, assistantID, courseID int64, schedule *availabilitySchedule) error {
	if schedule == nil {
		if _, err := s.windows.DeleteByCourse(ctx, exec, assistantID, courseID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear course availability")
		}
		return nil
	}

	existing, err := s.windows.ListByCourse(ctx, exec, assistantID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course availability")
	}

	existingByDay := make(map[models.Weekday]models.AvailabilityWindow, len(existing))
	for _, window := range existing {
		existingByDay[window.Day] = window
	}

	desiredDays := make(map[models.Weekday]struct{}, len(schedule.days))
	for _, day := range schedule.days {
		desiredDays[day] = struct{}{}
	}

	for _, window := range existing {
		if _, keep := desiredDays[window.Day]; keep {
			continue
		}
		if err := s.windows.DeleteByCourseAndDay(ctx, exec, assistantID, courseID, window.Day); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove deselected day")
		}
	}

	now := time.Now().UTC()
	for _, day := range schedule.days {
		window, ok := existingByDay[day]
		if ok {
			if window.StartTime == schedule.start && window.EndTime == schedule.end {
				continue
			}
			if err := s.windows.UpdateTimes(ctx, exec, window.ID, schedule.start, schedule.end, now); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability window")
			}
			continue
		}
		created := models.AvailabilityWindow{
			AssistantID: assistantID,
			CourseID:    courseID,
			Day:         day,
			StartTime:   schedule.start,
			EndTime:     schedule.end,
		}
		if err := s.windows.Create(ctx, exec, &created); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability window")
		}
	}

	return nil
}
