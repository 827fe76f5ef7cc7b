package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Weekday is the closed set of days an availability window may fall on.
// Sunday is deliberately absent.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

var weekdayOrder = map[Weekday]int{
	Monday:    0,
	Tuesday:   1,
	Wednesday: 2,
	Thursday:  3,
	Friday:    4,
	Saturday:  5,
}

// Weekdays returns the supported days in calendar order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// ParseWeekday normalises a day name and rejects anything outside the
// supported set.
func ParseWeekday(raw string) (Weekday, error) {
	day := Weekday(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := weekdayOrder[day]; !ok {
		return "", fmt.Errorf("unsupported day %q", raw)
	}
	return day, nil
}

// Index returns the calendar position of the day, monday first.
func (d Weekday) Index() int {
	return weekdayOrder[d]
}

// TimeOfDay is a wall-clock time stored as minutes since midnight. It maps to
// a PostgreSQL TIME column and renders as "HH:MM" in JSON.
type TimeOfDay int

// ParseTimeOfDay parses a strict "HH:MM" value.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

// String renders the canonical "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// MarshalJSON renders the time as a "HH:MM" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts a "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer for TIME columns.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String() + ":00", nil
}

// Scan implements sql.Scanner accepting TIME column representations.
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = TimeOfDay(v.Hour()*60 + v.Minute())
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) scanString(raw string) error {
	trimmed := raw
	if len(trimmed) > 5 {
		trimmed = trimmed[:5]
	}
	parsed, err := ParseTimeOfDay(trimmed)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// AvailabilityWindow is a recurring weekly interval during which an assistant
// is reachable for a specific course. Unique per (assistant, course, day).
type AvailabilityWindow struct {
	ID          int64     `db:"id" json:"id"`
	AssistantID int64     `db:"assistant_id" json:"assistant_id"`
	CourseID    int64     `db:"course_id" json:"course_id"`
	Day         Weekday   `db:"day" json:"day"`
	StartTime   TimeOfDay `db:"start_time" json:"start_time"`
	EndTime     TimeOfDay `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AvailabilityWindowDetail enriches a window with the course code.
type AvailabilityWindowDetail struct {
	AvailabilityWindow
	CourseCode string `db:"course_code" json:"course_code"`
}
