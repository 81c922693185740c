package settings

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// Setting keys as stored in the settings table.
const (
	KeyCutoffDays      = "booking_cutoff_days"
	KeyCutoffHours     = "booking_cutoff_hours"
	KeyMaxDaysAhead    = "booking_max_days_ahead"
	KeySlotDurationMin = "slot_duration_minutes"
	KeyDefaultCapacity = "default_slot_capacity"
)

// Snapshot is the booking configuration read once per request and passed
// explicitly into the engine, so every resolver stays pure given its inputs.
type Snapshot struct {
	CutoffDays      int
	CutoffHours     int
	MaxDaysAhead    int
	SlotDurationMin int
	DefaultCapacity int
}

func Defaults() Snapshot {
	return Snapshot{
		CutoffDays:      2,
		CutoffHours:     3,
		MaxDaysAhead:    60,
		SlotDurationMin: 30,
		DefaultCapacity: 1,
	}
}

// FromMap builds a snapshot from raw key/value rows, falling back to the
// documented default for every absent or non-numeric value.
func FromMap(values map[string]string) Snapshot {
	s := Defaults()
	s.CutoffDays = intOr(values[KeyCutoffDays], s.CutoffDays)
	s.CutoffHours = intOr(values[KeyCutoffHours], s.CutoffHours)
	s.MaxDaysAhead = intOr(values[KeyMaxDaysAhead], s.MaxDaysAhead)
	s.SlotDurationMin = intOr(values[KeySlotDurationMin], s.SlotDurationMin)
	s.DefaultCapacity = intOr(values[KeyDefaultCapacity], s.DefaultCapacity)

	// The cutoff hour is a clock hour on the cutoff day.
	if s.CutoffHours < 0 || s.CutoffHours > 23 {
		s.CutoffHours = Defaults().CutoffHours
	}
	if s.SlotDurationMin <= 0 {
		s.SlotDurationMin = Defaults().SlotDurationMin
	}
	if s.MaxDaysAhead < 0 {
		s.MaxDaysAhead = Defaults().MaxDaysAhead
	}
	if s.CutoffDays < 0 {
		s.CutoffDays = Defaults().CutoffDays
	}
	return s
}

func Load(db *gorm.DB) (Snapshot, error) {
	var rows []models.Setting
	if err := db.Find(&rows).Error; err != nil {
		return Defaults(), err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return FromMap(values), nil
}

// CutoffInstant returns the last instant at which bookings for date are
// still accepted: cutoff_days before date, at clock hour 24-cutoff_hours.
// date must be midnight in the clinic timezone.
func (s Snapshot) CutoffInstant(date time.Time) time.Time {
	day := date.AddDate(0, 0, -s.CutoffDays)
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		24-s.CutoffHours, 0, 0, 0,
		date.Location(),
	)
}

// WithinHorizon reports whether date is no further out than today plus
// booking_max_days_ahead. Both arguments must be midnight-truncated.
func (s Snapshot) WithinHorizon(today, date time.Time) bool {
	return !date.After(today.AddDate(0, 0, s.MaxDaysAhead))
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
