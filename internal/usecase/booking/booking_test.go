package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicdesk/clinic-scheduler/internal/audit"
	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	infraRepo "github.com/clinicdesk/clinic-scheduler/internal/infra/repository"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
	"github.com/clinicdesk/clinic-scheduler/internal/settings"
)

// ======================================================
// FIXTURES
// ======================================================

func setupBookingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection, so every query sees the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Service{},
		&models.Staff{},
		&models.Patient{},
		&models.WeeklyHours{},
		&models.Holiday{},
		&models.ScheduleException{},
		&models.SlotCapacity{},
		&models.Appointment{},
		&models.Setting{},
		&models.User{},
		&models.AuditLog{},
	))

	seedTestWeeklyHours(t, db)
	return db
}

// Monday through Saturday 09:00-12:00 / 13:00-18:00, Sunday closed.
func seedTestWeeklyHours(t *testing.T, db *gorm.DB) {
	t.Helper()

	for weekday := 0; weekday <= 6; weekday++ {
		wh := models.WeeklyHours{
			Weekday:        weekday,
			MorningOpen:    "09:00",
			MorningClose:   "12:00",
			AfternoonOpen:  "13:00",
			AfternoonClose: "18:00",
		}
		if weekday == 0 {
			wh = models.WeeklyHours{Weekday: weekday, Closed: true}
		}
		require.NoError(t, db.Create(&wh).Error)
	}
}

func seedTestService(t *testing.T, db *gorm.DB, durationMin int) models.Service {
	t.Helper()

	svc := models.Service{
		Name:        "General consultation",
		DurationMin: durationMin,
		Active:      true,
	}
	require.NoError(t, db.Create(&svc).Error)
	return svc
}

func seedTestAppointment(
	t *testing.T,
	db *gorm.DB,
	serviceID uint,
	staffID *uint,
	start time.Time,
	end time.Time,
) models.Appointment {
	t.Helper()

	// References must stay unique even when seeded rows share a start time.
	ref := uuid.NewString()

	patient := models.Patient{
		Name:  "Seeded Patient",
		Phone: "070-" + ref[:8],
	}
	require.NoError(t, db.Create(&patient).Error)

	ap := models.Appointment{
		Reference: ref,
		PatientID: patient.ID,
		ServiceID: serviceID,
		StaffID:   staffID,
		StartAt:   start,
		EndAt:     end,
		Status:    string(domain.StatusConfirmed),
	}
	require.NoError(t, db.Create(&ap).Error)
	return ap
}

func testRepo(db *gorm.DB) domain.Repository {
	return infraRepo.NewSchedulingGormRepository(db)
}

func testDispatcher(db *gorm.DB) *audit.Dispatcher {
	return audit.NewDispatcher(audit.New(db))
}

// Same-day bookings stay open until midnight with a zero cutoff.
func testSnapshot() settings.Snapshot {
	return settings.Snapshot{
		CutoffDays:      0,
		CutoffHours:     0,
		MaxDaysAhead:    60,
		SlotDurationMin: 30,
		DefaultCapacity: 1,
	}
}

// testMonday is the reference day for most cases: a plain open Monday.
func testMonday(t *testing.T) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", "2026-09-07")
	require.NoError(t, err)
	return d
}

func clock(date time.Time, hm string) time.Time {
	at, _ := domain.AtClock(date, hm)
	return at
}

func rfc(ts time.Time) string {
	return ts.Format(time.RFC3339)
}
