package scheduling

import (
	"time"

	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// Slot is one candidate booking window. Unavailable slots are kept in the
// result (Available=false) so the front-end can render them disabled.
type Slot struct {
	StartAt   time.Time
	EndAt     time.Time
	Available bool
}

// SlotParams carries everything BuildSlots needs; no lookups happen inside.
type SlotParams struct {
	Day             ResolvedDay
	ServiceDuration time.Duration
	StepMinutes     int
	Now             time.Time

	// StaffID filters which existing appointments compete for capacity:
	// set, only that staff's and unstaffed rows count; nil, all rows count.
	StaffID *uint

	// Existing must hold only confirmed appointments touching the day.
	Existing []models.Appointment

	// Capacity resolves the allowed simultaneous bookings for a slot start.
	Capacity func(startAt time.Time) int
}

// BuildSlots walks each open period in StepMinutes increments and emits
// candidates of ServiceDuration length. A candidate is dropped entirely when
// it reaches past the period close, intersects the partial-closure range, or
// does not start strictly after Now; otherwise it is emitted with its
// availability flag.
func BuildSlots(p SlotParams) []Slot {
	if p.ServiceDuration <= 0 || p.StepMinutes <= 0 {
		return nil
	}

	step := time.Duration(p.StepMinutes) * time.Minute
	var slots []Slot

	for _, period := range p.Day.Periods {
		for cur := period.Open; !cur.Add(p.ServiceDuration).After(period.Close); cur = cur.Add(step) {
			end := cur.Add(p.ServiceDuration)

			if p.Day.Blocked != nil &&
				cur.Before(p.Day.Blocked.Close) && end.After(p.Day.Blocked.Open) {
				continue
			}

			if !cur.After(p.Now) {
				continue
			}

			count := CountOverlapping(p.Existing, cur, end, p.StaffID)
			capacity := 1
			if p.Capacity != nil {
				capacity = p.Capacity(cur)
			}

			slots = append(slots, Slot{
				StartAt:   cur,
				EndAt:     end,
				Available: count < capacity,
			})
		}
	}

	return slots
}

// CountOverlapping counts confirmed appointments whose half-open interval
// [StartAt, EndAt) overlaps [start, end). With a staff filter, an unstaffed
// appointment still counts: it consumes any staff member's time.
func CountOverlapping(existing []models.Appointment, start, end time.Time, staffID *uint) int {
	count := 0
	for i := range existing {
		ap := &existing[i]
		if ap.Status != string(StatusConfirmed) {
			continue
		}
		if !ap.StartAt.Before(end) || !ap.EndAt.After(start) {
			continue
		}
		if staffID != nil && ap.StaffID != nil && *ap.StaffID != *staffID {
			continue
		}
		count++
	}
	return count
}
