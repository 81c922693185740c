package models

import "time"

// Exception kinds, in precedence order (highest first).
const (
	ExceptionClosed        = "closed"
	ExceptionPartialClosed = "partial_closed"
	ExceptionModifiedHours = "modified_hours"
	ExceptionSpecialOpen   = "special_open"
)

// ScheduleException is a date-scoped override of the weekly hours covering
// [StartDate, EndDate]. StartTime/EndTime carry the blocked sub-range for
// partial_closed; the morning/afternoon pairs carry replacement hours for
// modified_hours and special_open.
type ScheduleException struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StartDate string `gorm:"size:10;index;not null" json:"start_date"`
	EndDate   string `gorm:"size:10;index;not null" json:"end_date"`

	Kind string `gorm:"size:20;not null" json:"kind"`

	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`

	MorningOpen    string `gorm:"size:5" json:"morning_open"`
	MorningClose   string `gorm:"size:5" json:"morning_close"`
	AfternoonOpen  string `gorm:"size:5" json:"afternoon_open"`
	AfternoonClose string `gorm:"size:5" json:"afternoon_close"`

	Reason string `gorm:"size:100" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Matches reports whether the exception covers the given "YYYY-MM-DD" date.
func (e *ScheduleException) Matches(date string) bool {
	return e.StartDate <= date && date <= e.EndDate
}
