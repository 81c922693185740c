package models

import "time"

// SlotCapacity overrides how many simultaneous bookings a time-of-day slot
// accepts. Either Weekday or Date is set, never both: a specific-date row
// beats a weekday row, which beats the default_slot_capacity setting.
type SlotCapacity struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Weekday *int    `json:"weekday"`
	Date    *string `gorm:"size:10" json:"date"`

	TimeOfDay string `gorm:"size:5;not null" json:"time_of_day"`
	Capacity  int    `gorm:"not null" json:"capacity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SlotCapacity) TableName() string { return "slot_capacities" }
