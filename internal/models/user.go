package models

import "time"

// UserRole represents the available roles for users.
type UserRole string

const (
	RoleLearner   UserRole = "user"
	RoleAssistant UserRole = "assistant"
)

// User represents an application user stored in the users table.
type User struct {
	ID               int64     `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Role             UserRole  `db:"role" json:"role"`
	AcademicYear     int       `db:"academic_year" json:"academic_year"`
	Bio              string    `db:"bio" json:"bio,omitempty"`
	TelegramUsername string    `db:"telegram_username" json:"telegram_username,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// IsAssistant reports whether the user can be assigned to courses.
func (u *User) IsAssistant() bool {
	return u != nil && u.Role == RoleAssistant
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
