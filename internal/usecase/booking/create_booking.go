package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduler/internal/audit"
	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
	"github.com/clinicdesk/clinic-scheduler/internal/settings"
	"github.com/clinicdesk/clinic-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	ServiceID uint
	StaffID   *uint

	// RFC3339 timestamps as sent by the client.
	StartAt string
	EndAt   string

	PatientName  string
	PatientPhone string
	PatientEmail string
	Notes        string

	Now      time.Time
	Settings settings.Snapshot
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:  repo,
		audit: audit,
	}
}

// Execute re-derives every booking constraint at commit time, ignoring
// whatever slot list the client saw, then inserts under the capacity guard.
func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Appointment, error) {

	loc := in.Now.Location()

	// --------------------------------------------------
	// 1. Interval
	// --------------------------------------------------
	start, err := time.Parse(time.RFC3339, in.StartAt)
	if err != nil {
		return nil, httperr.ErrBusinessMsg("invalid_interval", "invalid interval")
	}
	end, err := time.Parse(time.RFC3339, in.EndAt)
	if err != nil {
		return nil, httperr.ErrBusinessMsg("invalid_interval", "invalid interval")
	}
	start = start.In(loc)
	end = end.In(loc)

	if !start.Before(end) {
		return nil, httperr.ErrBusinessMsg("invalid_interval", "invalid interval")
	}

	date := timezone.Midnight(start)
	today := timezone.Midnight(in.Now)

	// --------------------------------------------------
	// 2. Horizon + cutoff, against the start date
	// --------------------------------------------------
	if !in.Settings.WithinHorizon(today, date) {
		return nil, httperr.ErrBusinessMsg("beyond_horizon", "beyond booking horizon")
	}
	if in.Now.After(in.Settings.CutoffInstant(date)) {
		return nil, httperr.ErrBusinessMsg("booking_window_closed", "booking window closed for this date")
	}

	// --------------------------------------------------
	// 3. No retroactive booking
	// --------------------------------------------------
	if !start.After(in.Now) {
		return nil, httperr.ErrBusinessMsg("past_date", "cannot book a time in the past")
	}

	// --------------------------------------------------
	// 4. Day must be open
	// --------------------------------------------------
	day, err := resolveDay(ctx, uc.repo, date)
	if err != nil {
		return nil, err
	}
	if !day.Open {
		return nil, httperr.ErrBusinessMsg("day_closed", day.ClosureReason)
	}
	if !withinOpenPeriods(day, start, end) {
		return nil, httperr.ErrBusinessMsg("outside_opening_hours", "outside opening hours")
	}

	// --------------------------------------------------
	// 5. Service, and the duration invariant
	// --------------------------------------------------
	service, err := uc.repo.GetActiveService(ctx, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusinessMsg("invalid_service", "invalid service")
	}
	if !end.Equal(start.Add(time.Duration(service.DurationMin) * time.Minute)) {
		return nil, httperr.ErrBusinessMsg("invalid_interval", "invalid interval")
	}

	// --------------------------------------------------
	// 6. Staff, when a preference was given
	// --------------------------------------------------
	if in.StaffID != nil {
		if _, err := uc.repo.GetActiveStaff(ctx, *in.StaffID); err != nil {
			return nil, httperr.ErrBusinessMsg("invalid_staff", "invalid staff")
		}
	}

	// --------------------------------------------------
	// 7. Capacity for the requested slot
	// --------------------------------------------------
	overrides, err := uc.repo.ListCapacityOverrides(
		ctx,
		int(date.Weekday()),
		date.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}
	capacity := domain.ResolveCapacity(
		overrides,
		date,
		start.Format("15:04"),
		in.Settings.DefaultCapacity,
	)

	// --------------------------------------------------
	// 8. Patient
	// --------------------------------------------------
	patient, err := uc.repo.GetOrCreatePatient(
		ctx,
		in.PatientName,
		in.PatientPhone,
		in.PatientEmail,
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 9. Guarded insert (re-counts overlaps in the transaction)
	// --------------------------------------------------
	ap := &models.Appointment{
		Reference: uuid.NewString(),
		PatientID: patient.ID,
		ServiceID: service.ID,
		StaffID:   in.StaffID,
		StartAt:   start,
		EndAt:     end,
		Status:    string(domain.InitialStatus()),
		Notes:     in.Notes,
	}

	if err := uc.repo.CreateWithCapacityGuard(ctx, ap, capacity); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 10. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

// withinOpenPeriods reports whether [start, end) fits inside one effective
// open period and clears the partial-closure range.
func withinOpenPeriods(day domain.ResolvedDay, start, end time.Time) bool {
	if day.Blocked != nil &&
		start.Before(day.Blocked.Close) && end.After(day.Blocked.Open) {
		return false
	}
	for _, p := range day.Periods {
		if !start.Before(p.Open) && !end.After(p.Close) {
			return true
		}
	}
	return false
}
