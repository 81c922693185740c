package models

import "time"

// WeeklyHours holds the recurring business hours for one weekday
// (0=Sunday..6=Saturday). Morning and afternoon pairs are "HH:MM" strings;
// OpenTime/CloseTime is the legacy single-period configuration kept for
// rows migrated from the old schema.
type WeeklyHours struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Weekday int `gorm:"uniqueIndex" json:"weekday"`

	MorningOpen    string `gorm:"size:5" json:"morning_open"`
	MorningClose   string `gorm:"size:5" json:"morning_close"`
	AfternoonOpen  string `gorm:"size:5" json:"afternoon_open"`
	AfternoonClose string `gorm:"size:5" json:"afternoon_close"`

	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`

	Closed bool `json:"closed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
