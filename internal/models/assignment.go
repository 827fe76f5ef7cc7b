package models

import "time"

// CourseAssignment links an assistant to a course they tutor. Unique per
// (assistant_id, course_id). The special flag highlights the assistant's
// preferred course and is updated in place rather than recreated.
type CourseAssignment struct {
	ID          int64     `db:"id" json:"id"`
	AssistantID int64     `db:"assistant_id" json:"assistant_id"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	Special     bool      `db:"special" json:"special"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseAssignmentDetail enriches an assignment with catalog fields.
type CourseAssignmentDetail struct {
	CourseAssignment
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
}

// CourseAssistant describes an assistant offering a course.
type CourseAssistant struct {
	AssignmentID int64  `db:"assignment_id" json:"assignment_id"`
	AssistantID  int64  `db:"assistant_id" json:"assistant_id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	AcademicYear int    `db:"academic_year" json:"academic_year"`
	Bio          string `db:"bio" json:"bio,omitempty"`
	Special      bool   `db:"special" json:"special"`
}
