package scheduling

import (
	"context"
	"time"

	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

// Repository is the storage boundary of the scheduling engine. Date
// parameters are "YYYY-MM-DD" strings in the clinic timezone.
type Repository interface {
	// -------- Catalog --------
	GetActiveService(
		ctx context.Context,
		id uint,
	) (*models.Service, error)

	GetActiveStaff(
		ctx context.Context,
		id uint,
	) (*models.Staff, error)

	// -------- Schedule tables --------
	GetHoliday(
		ctx context.Context,
		date string,
	) (*models.Holiday, error)

	ListHolidaysBetween(
		ctx context.Context,
		startDate string,
		endDate string,
	) ([]models.Holiday, error)

	GetWeeklyHours(
		ctx context.Context,
		weekday int,
	) (*models.WeeklyHours, error)

	ListWeeklyHours(
		ctx context.Context,
	) ([]models.WeeklyHours, error)

	ListExceptionsForDate(
		ctx context.Context,
		date string,
	) ([]models.ScheduleException, error)

	ListExceptionsBetween(
		ctx context.Context,
		startDate string,
		endDate string,
	) ([]models.ScheduleException, error)

	ListCapacityOverrides(
		ctx context.Context,
		weekday int,
		date string,
	) ([]models.SlotCapacity, error)

	// -------- Appointments (read) --------
	ListConfirmedBetween(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	ListForPeriod(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Patients --------
	GetOrCreatePatient(
		ctx context.Context,
		name string,
		phone string,
		email string,
	) (*models.Patient, error)

	// -------- Appointments (write) --------

	// CreateWithCapacityGuard inserts ap only if, inside one transaction,
	// the count of overlapping confirmed appointments (same staff or
	// unstaffed) stays below capacity. Returns the slot_already_booked
	// business error otherwise.
	CreateWithCapacityGuard(
		ctx context.Context,
		ap *models.Appointment,
		capacity int,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error
}
