package models

import "time"

// Setting is one key/value row of the booking configuration
// (cutoff, horizon, slot duration, default capacity).
type Setting struct {
	Key   string `gorm:"primaryKey;size:50" json:"key"`
	Value string `gorm:"size:100" json:"value"`

	UpdatedAt time.Time `json:"updated_at"`
}
