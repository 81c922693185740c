package booking

import (
	"context"
	"time"

	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ByDate lists every appointment starting on the given day. date must be
// midnight in the clinic timezone.
func (uc *ListAppointments) ByDate(
	ctx context.Context,
	date time.Time,
) ([]models.Appointment, error) {
	return uc.repo.ListForPeriod(ctx, date, date.AddDate(0, 0, 1))
}

// ByMonth lists every appointment starting in the month containing date.
func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	date time.Time,
) ([]models.Appointment, error) {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	return uc.repo.ListForPeriod(ctx, first, first.AddDate(0, 1, 0))
}
