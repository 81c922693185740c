package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

type SchedulingGormRepository struct {
	db *gorm.DB
}

func NewSchedulingGormRepository(db *gorm.DB) *SchedulingGormRepository {
	return &SchedulingGormRepository{db: db}
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *SchedulingGormRepository) GetActiveService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *SchedulingGormRepository) GetActiveStaff(
	ctx context.Context,
	id uint,
) (*models.Staff, error) {

	var st models.Staff
	if err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&st).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// --------------------------------------------------
// Schedule tables
// --------------------------------------------------

func (r *SchedulingGormRepository) GetHoliday(
	ctx context.Context,
	date string,
) (*models.Holiday, error) {

	var h models.Holiday
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		First(&h).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *SchedulingGormRepository) ListHolidaysBetween(
	ctx context.Context,
	startDate string,
	endDate string,
) ([]models.Holiday, error) {

	var holidays []models.Holiday
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date ASC").
		Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func (r *SchedulingGormRepository) GetWeeklyHours(
	ctx context.Context,
	weekday int,
) (*models.WeeklyHours, error) {

	var wh models.WeeklyHours
	err := r.db.WithContext(ctx).
		Where("weekday = ?", weekday).
		First(&wh).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

func (r *SchedulingGormRepository) ListWeeklyHours(
	ctx context.Context,
) ([]models.WeeklyHours, error) {

	var hours []models.WeeklyHours
	if err := r.db.WithContext(ctx).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *SchedulingGormRepository) ListExceptionsForDate(
	ctx context.Context,
	date string,
) ([]models.ScheduleException, error) {

	var exceptions []models.ScheduleException
	if err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Order("id ASC").
		Find(&exceptions).Error; err != nil {
		return nil, err
	}
	return exceptions, nil
}

func (r *SchedulingGormRepository) ListExceptionsBetween(
	ctx context.Context,
	startDate string,
	endDate string,
) ([]models.ScheduleException, error) {

	var exceptions []models.ScheduleException
	if err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate).
		Order("id ASC").
		Find(&exceptions).Error; err != nil {
		return nil, err
	}
	return exceptions, nil
}

func (r *SchedulingGormRepository) ListCapacityOverrides(
	ctx context.Context,
	weekday int,
	date string,
) ([]models.SlotCapacity, error) {

	var overrides []models.SlotCapacity
	if err := r.db.WithContext(ctx).
		Where("weekday = ? OR date = ?", weekday, date).
		Find(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}

// --------------------------------------------------
// Appointments (read)
// --------------------------------------------------

func (r *SchedulingGormRepository) ListConfirmedBetween(
	ctx context.Context,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "staff_id", "status", "start_at", "end_at").
		Where(
			"status = ? AND start_at < ? AND end_at > ?",
			string(domain.StatusConfirmed), end, start,
		).
		Order("start_at ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *SchedulingGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Service").
		Preload("Staff").
		First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *SchedulingGormRepository) ListForPeriod(
	ctx context.Context,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Service").
		Preload("Staff").
		Where("start_at >= ? AND start_at < ?", start, end).
		Order("start_at ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Patients
// --------------------------------------------------

func (r *SchedulingGormRepository) GetOrCreatePatient(
	ctx context.Context,
	name string,
	phone string,
	email string,
) (*models.Patient, error) {

	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&patient).Error

	if err == nil {
		return &patient, nil
	}

	patient = models.Patient{
		Name:  name,
		Phone: phone,
		Email: email,
	}

	if err := r.db.WithContext(ctx).Create(&patient).Error; err != nil {
		return nil, err
	}

	return &patient, nil
}

// --------------------------------------------------
// Appointments (write)
// --------------------------------------------------

// CreateWithCapacityGuard re-counts overlapping confirmed appointments inside
// the insert transaction so two concurrent bookings cannot both pass the
// validator and land in a full slot. On Postgres the competing rows are
// locked with FOR UPDATE; SQLite serializes writers on its own.
func (r *SchedulingGormRepository) CreateWithCapacityGuard(
	ctx context.Context,
	ap *models.Appointment,
	capacity int,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		q := tx.Model(&models.Appointment{})
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		q = q.Where(
			"status = ? AND start_at < ? AND end_at > ?",
			string(domain.StatusConfirmed), ap.EndAt, ap.StartAt,
		)
		if ap.StaffID != nil {
			q = q.Where("staff_id = ? OR staff_id IS NULL", *ap.StaffID)
		}

		var conflicts []models.Appointment
		if err := q.Find(&conflicts).Error; err != nil {
			return err
		}

		if len(conflicts) >= capacity {
			return httperr.ErrBusiness("slot_already_booked")
		}

		return tx.Create(ap).Error
	})
}

func (r *SchedulingGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// Compile-time check
var _ domain.Repository = (*SchedulingGormRepository)(nil)
