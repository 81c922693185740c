package models

import "time"

// Holiday marks a single calendar date as fully closed. Dates are stored as
// "YYYY-MM-DD" strings so lookups behave the same on Postgres and SQLite.
type Holiday struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Date string `gorm:"size:10;uniqueIndex;not null" json:"date"`
	Name string `gorm:"size:100" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
