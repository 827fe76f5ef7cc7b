package dto

import "github.com/study-crew/peer-assist-api/internal/models"

// RosterEntry pairs an assignment with its availability windows.
type RosterEntry struct {
	models.CourseAssignmentDetail
	Availability []models.AvailabilityWindowDetail `json:"availability_times"`
}

