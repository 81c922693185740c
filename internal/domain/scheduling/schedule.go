package scheduling

import (
	"time"

	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// ===============================
// Resolved schedule
// ===============================

// Period is one effective open window within a single day.
type Period struct {
	Open  time.Time
	Close time.Time
}

// ResolvedDay is the effective schedule for one calendar date after
// applying holidays, exceptions and the weekly hours, in that order.
// Blocked carries the partial-closure sub-range when one applies; it is
// enforced during slot generation, not by trimming Periods.
type ResolvedDay struct {
	Date          time.Time
	Open          bool
	Periods       []Period
	ClosureReason string
	Blocked       *Period
}

const (
	reasonHoliday   = "holiday"
	reasonTempClose = "temporarily closed"
	reasonClosed    = "closed on this day"
)

// exception kinds from highest to lowest precedence
var kindPrecedence = []string{
	models.ExceptionClosed,
	models.ExceptionPartialClosed,
	models.ExceptionModifiedHours,
	models.ExceptionSpecialOpen,
}

// ResolveDay merges the weekly hours row for date's weekday with the holiday
// and exception rows matching that date. date must be midnight in the clinic
// timezone; all returned times share its location.
func ResolveDay(
	date time.Time,
	holiday *models.Holiday,
	exceptions []models.ScheduleException,
	weekly *models.WeeklyHours,
) ResolvedDay {

	day := ResolvedDay{Date: date}

	if holiday != nil {
		day.ClosureReason = holiday.Name
		if day.ClosureReason == "" {
			day.ClosureReason = reasonHoliday
		}
		return day
	}

	exc := pickException(date.Format("2006-01-02"), exceptions)

	if exc != nil && exc.Kind == models.ExceptionClosed {
		day.ClosureReason = exc.Reason
		if day.ClosureReason == "" {
			day.ClosureReason = reasonTempClose
		}
		return day
	}

	if exc != nil && exc.Kind == models.ExceptionModifiedHours {
		day.Periods = periodsFromPairs(date,
			pair{exc.MorningOpen, exc.MorningClose},
			pair{exc.AfternoonOpen, exc.AfternoonClose},
		)
		day.Open = len(day.Periods) > 0
		if !day.Open {
			day.ClosureReason = reasonClosed
		}
		return day
	}

	if exc != nil && exc.Kind == models.ExceptionSpecialOpen {
		// Opens the day even if the weekly row says closed; each missing
		// pair falls back to the weekday's own pair.
		morning := pair{exc.MorningOpen, exc.MorningClose}
		afternoon := pair{exc.AfternoonOpen, exc.AfternoonClose}
		if weekly != nil {
			if morning.empty() {
				morning = pair{weekly.MorningOpen, weekly.MorningClose}
			}
			if afternoon.empty() {
				afternoon = pair{weekly.AfternoonOpen, weekly.AfternoonClose}
			}
		}
		day.Periods = periodsFromPairs(date, morning, afternoon)
		day.Open = len(day.Periods) > 0
		if !day.Open {
			day.ClosureReason = reasonClosed
		}
		return day
	}

	// No exception, or partial_closed (which only trims generated slots).
	if weekly == nil || weekly.Closed {
		day.ClosureReason = reasonClosed
		return day
	}

	day.Periods = periodsFromPairs(date,
		pair{weekly.MorningOpen, weekly.MorningClose},
		pair{weekly.AfternoonOpen, weekly.AfternoonClose},
	)
	if len(day.Periods) == 0 {
		// Legacy rows carry a single open/close pair.
		day.Periods = periodsFromPairs(date, pair{weekly.OpenTime, weekly.CloseTime})
	}

	// Zero periods with the closed flag unset still means closed.
	day.Open = len(day.Periods) > 0
	if !day.Open {
		day.ClosureReason = reasonClosed
		return day
	}

	if exc != nil && exc.Kind == models.ExceptionPartialClosed {
		if blocked, ok := periodFromPair(date, pair{exc.StartTime, exc.EndTime}); ok {
			day.Blocked = &blocked
		}
	}

	return day
}

// pickException returns the highest-precedence exception covering date.
func pickException(date string, exceptions []models.ScheduleException) *models.ScheduleException {
	for _, kind := range kindPrecedence {
		for i := range exceptions {
			if exceptions[i].Kind == kind && exceptions[i].Matches(date) {
				return &exceptions[i]
			}
		}
	}
	return nil
}

// ===============================
// "HH:MM" helpers
// ===============================

type pair struct {
	open  string
	close string
}

func (p pair) empty() bool { return p.open == "" || p.close == "" }

// AtClock anchors an "HH:MM" string on the given date, in its location.
func AtClock(date time.Time, hm string) (time.Time, bool) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		date.Location(),
	), true
}

func periodFromPair(date time.Time, p pair) (Period, bool) {
	if p.empty() {
		return Period{}, false
	}
	open, ok1 := AtClock(date, p.open)
	close, ok2 := AtClock(date, p.close)
	if !ok1 || !ok2 || !close.After(open) {
		return Period{}, false
	}
	return Period{Open: open, Close: close}, true
}

func periodsFromPairs(date time.Time, pairs ...pair) []Period {
	var periods []Period
	for _, p := range pairs {
		if period, ok := periodFromPair(date, p); ok {
			periods = append(periods, period)
		}
	}
	return periods
}
