package handlers

import (
	"time"

	"github.com/clinicdesk/clinic-scheduler/internal/timezone"
)

// The clinic runs on one timezone for parsing, cutoffs and display.

func clinicLocation(tz string) *time.Location {
	return timezone.Location(tz)
}

func nowInClinic(tz string) time.Time {
	return timezone.NowIn(tz)
}

func parseClinicDate(tz string, dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, clinicLocation(tz))
}

func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}
