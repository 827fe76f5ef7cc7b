package models

import "time"

// Course is a catalog entity identified by a unique code. The roster engine
// only ever reads courses.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Year        string    `db:"year" json:"year"`
	Semester    int       `db:"semester" json:"semester"`
	Description string    `db:"description" json:"description"`
	CreditHour  int       `db:"credit_hour" json:"credit_hour"`
	Program     string    `db:"program" json:"program"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
