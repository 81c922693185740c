package scheduling

import (
	"time"

	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// ResolveCapacity returns the number of simultaneous confirmed bookings
// allowed at timeOfDay ("HH:MM") on date. A specific-date override wins over
// a weekday override, which wins over the default from settings. The result
// is never below 1.
func ResolveCapacity(
	overrides []models.SlotCapacity,
	date time.Time,
	timeOfDay string,
	defaultCapacity int,
) int {

	dateStr := date.Format("2006-01-02")
	weekday := int(date.Weekday())

	for i := range overrides {
		o := &overrides[i]
		if o.Date != nil && *o.Date == dateStr && o.TimeOfDay == timeOfDay && o.Capacity >= 1 {
			return o.Capacity
		}
	}

	for i := range overrides {
		o := &overrides[i]
		if o.Date == nil && o.Weekday != nil && *o.Weekday == weekday &&
			o.TimeOfDay == timeOfDay && o.Capacity >= 1 {
			return o.Capacity
		}
	}

	if defaultCapacity < 1 {
		return 1
	}
	return defaultCapacity
}
