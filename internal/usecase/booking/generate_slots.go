package booking

import (
	"context"
	"time"

	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	"github.com/clinicdesk/clinic-scheduler/internal/settings"
	"github.com/clinicdesk/clinic-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type GenerateSlotsInput struct {
	// Date is the requested day at midnight in the clinic timezone.
	Date time.Time

	ServiceID uint
	StaffID   *uint

	Now      time.Time
	Settings settings.Snapshot
}

// ======================================================
// USE CASE
// ======================================================

type GenerateSlots struct {
	repo domain.Repository
}

func NewGenerateSlots(repo domain.Repository) *GenerateSlots {
	return &GenerateSlots{repo: repo}
}

// Execute returns every candidate slot for the day, unavailable ones
// included. Policy violations come back as business errors whose message is
// the user-facing reason.
func (uc *GenerateSlots) Execute(
	ctx context.Context,
	in GenerateSlotsInput,
) ([]domain.Slot, error) {

	today := timezone.Midnight(in.Now)

	// --------------------------------------------------
	// 1. Horizon
	// --------------------------------------------------
	if !in.Settings.WithinHorizon(today, in.Date) {
		return nil, httperr.ErrBusinessMsg("beyond_horizon", "beyond booking horizon")
	}

	// --------------------------------------------------
	// 2. Cutoff
	// --------------------------------------------------
	if in.Now.After(in.Settings.CutoffInstant(in.Date)) {
		return nil, httperr.ErrBusinessMsg("booking_window_closed", "booking window closed for this date")
	}

	// --------------------------------------------------
	// 3. Effective schedule
	// --------------------------------------------------
	day, err := resolveDay(ctx, uc.repo, in.Date)
	if err != nil {
		return nil, err
	}
	if !day.Open {
		return nil, httperr.ErrBusinessMsg("day_closed", day.ClosureReason)
	}

	// --------------------------------------------------
	// 4. Service
	// --------------------------------------------------
	service, err := uc.repo.GetActiveService(ctx, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusinessMsg("invalid_service", "invalid service")
	}

	// --------------------------------------------------
	// 5. Existing bookings + capacity overrides
	// --------------------------------------------------
	dayStart := in.Date
	dayEnd := in.Date.AddDate(0, 0, 1)

	existing, err := uc.repo.ListConfirmedBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	overrides, err := uc.repo.ListCapacityOverrides(
		ctx,
		int(in.Date.Weekday()),
		in.Date.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6. Walk
	// --------------------------------------------------
	slots := domain.BuildSlots(domain.SlotParams{
		Day:             day,
		ServiceDuration: time.Duration(service.DurationMin) * time.Minute,
		StepMinutes:     in.Settings.SlotDurationMin,
		Now:             in.Now,
		StaffID:         in.StaffID,
		Existing:        existing,
		Capacity: func(startAt time.Time) int {
			return domain.ResolveCapacity(
				overrides,
				in.Date,
				startAt.Format("15:04"),
				in.Settings.DefaultCapacity,
			)
		},
	})

	return slots, nil
}
