package dto

import "github.com/study-crew/peer-assist-api/internal/models"

// AvailabilitySpec carries one weekly time range applied to every selected day
// of a course. A nil spec on an update means "clear availability".
type AvailabilitySpec struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// AvailabilityUpdate targets one course of the desired set.
type AvailabilityUpdate struct {
	CourseCode   string            `json:"course_code" validate:"required"`
	Availability *AvailabilitySpec `json:"availability,omitempty"`
}

// ReconcileRequest submits the assistant's complete desired roster state.
// CourseIDs is the entire desired assignment set, not an incremental delta.
type ReconcileRequest struct {
	AssistantID         int64                `json:"assistant_id" validate:"required"`
	CourseIDs           []string             `json:"course_ids"`
	SpecialCourseCodes  []string             `json:"special_course_codes"`
	AvailabilityUpdates []AvailabilityUpdate `json:"availability_updates" validate:"dive"`
}

// ReconcileResponse reports what changed plus the resulting records.
type ReconcileResponse struct {
	AddedCoursesCount   int                               `json:"added_courses_count"`
	RemovedCoursesCount int                               `json:"removed_courses_count"`
	SpecialAddedCount   int                               `json:"special_added_count"`
	SpecialRemovedCount int                               `json:"special_removed_count"`
	Assignments         []models.CourseAssignmentDetail   `json:"assignments"`
	Availability        []models.AvailabilityWindowDetail `json:"availability"`
}
