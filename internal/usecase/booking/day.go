package booking

import (
	"context"
	"time"

	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
)

// resolveDay loads the schedule rows for one date and hands them to the
// resolver. date must be midnight in the clinic timezone.
func resolveDay(
	ctx context.Context,
	repo domain.Repository,
	date time.Time,
) (domain.ResolvedDay, error) {

	dateStr := date.Format("2006-01-02")

	holiday, err := repo.GetHoliday(ctx, dateStr)
	if err != nil {
		return domain.ResolvedDay{}, err
	}

	exceptions, err := repo.ListExceptionsForDate(ctx, dateStr)
	if err != nil {
		return domain.ResolvedDay{}, err
	}

	weekly, err := repo.GetWeeklyHours(ctx, int(date.Weekday()))
	if err != nil {
		return domain.ResolvedDay{}, err
	}

	return domain.ResolveDay(date, holiday, exceptions, weekly), nil
}
