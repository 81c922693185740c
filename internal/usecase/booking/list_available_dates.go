package booking

import (
	"context"
	"time"

	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
	"github.com/clinicdesk/clinic-scheduler/internal/settings"
	"github.com/clinicdesk/clinic-scheduler/internal/timezone"
)

type AvailableDate struct {
	Date    time.Time
	Weekday int
}

type ListAvailableDates struct {
	repo domain.Repository
}

func NewListAvailableDates(repo domain.Repository) *ListAvailableDates {
	return &ListAvailableDates{repo: repo}
}

// Execute applies the closure, cutoff and horizon rules at day granularity:
// every date from today through the horizon that is not past its cutoff, not
// a holiday, not fully closed by an exception, and either open per its
// weekly row or opened by a special_open exception.
func (uc *ListAvailableDates) Execute(
	ctx context.Context,
	now time.Time,
	snap settings.Snapshot,
) ([]AvailableDate, error) {

	today := timezone.Midnight(now)
	last := today.AddDate(0, 0, snap.MaxDaysAhead)

	holidays, err := uc.repo.ListHolidaysBetween(
		ctx,
		today.Format("2006-01-02"),
		last.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}
	holidaySet := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		holidaySet[h.Date] = true
	}

	exceptions, err := uc.repo.ListExceptionsBetween(
		ctx,
		today.Format("2006-01-02"),
		last.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}

	weeklyRows, err := uc.repo.ListWeeklyHours(ctx)
	if err != nil {
		return nil, err
	}
	weekly := make(map[int]*models.WeeklyHours, len(weeklyRows))
	for i := range weeklyRows {
		weekly[weeklyRows[i].Weekday] = &weeklyRows[i]
	}

	var dates []AvailableDate

	for offset := 0; offset <= snap.MaxDaysAhead; offset++ {
		date := today.AddDate(0, 0, offset)
		dateStr := date.Format("2006-01-02")

		if now.After(snap.CutoffInstant(date)) {
			continue
		}
		if holidaySet[dateStr] {
			continue
		}

		day := domain.ResolveDay(date, nil, matching(exceptions, dateStr), weekly[int(date.Weekday())])
		if !day.Open {
			continue
		}

		dates = append(dates, AvailableDate{
			Date:    date,
			Weekday: int(date.Weekday()),
		})
	}

	return dates, nil
}

func matching(exceptions []models.ScheduleException, date string) []models.ScheduleException {
	var out []models.ScheduleException
	for _, e := range exceptions {
		if e.Matches(date) {
			out = append(out, e)
		}
	}
	return out
}
