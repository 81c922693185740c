package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

func TestGenerateSlotsFullOpenDay(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	monday := testMonday(t)

	slots, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: svc.ID,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.NoError(t, err)
	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].StartAt.Format("15:04"))
	assert.Equal(t, "17:30", slots[15].StartAt.Format("15:04"))
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestGenerateSlotsBookedSlotStaysInListUnavailable(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	monday := testMonday(t)
	seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))

	slots, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: svc.ID,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.NoError(t, err)
	require.Len(t, slots, 16)
	for _, s := range slots {
		if s.StartAt.Format("15:04") == "10:00" {
			assert.False(t, s.Available)
		} else {
			assert.True(t, s.Available)
		}
	}
}

func TestGenerateSlotsClosedExceptionReturnsReason(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	require.NoError(t, db.Create(&models.ScheduleException{
		StartDate: "2026-12-29",
		EndDate:   "2027-01-03",
		Kind:      models.ExceptionClosed,
		Reason:    "New Year holidays",
	}).Error)

	date, _ := time.Parse("2006-01-02", "2026-12-30")

	_, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      date,
		ServiceID: svc.ID,
		Now:       clock(date.AddDate(0, 0, -10), "09:00"),
		Settings:  testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "day_closed"))
	assert.Equal(t, "New Year holidays", err.Error())
}

func TestGenerateSlotsHolidayClosesDay(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	monday := testMonday(t)
	require.NoError(t, db.Create(&models.Holiday{
		Date: "2026-09-07",
		Name: "Founding Day",
	}).Error)

	_, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: svc.ID,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "day_closed"))
	assert.Equal(t, "Founding Day", err.Error())
}

func TestGenerateSlotsBeyondHorizon(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	monday := testMonday(t)

	_, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday.AddDate(0, 0, 61),
		ServiceID: svc.ID,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "beyond_horizon"))
}

func TestGenerateSlotsCutoffClosesWindow(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	monday := testMonday(t)

	snap := testSnapshot()
	snap.CutoffDays = 2
	snap.CutoffHours = 3

	// The cutoff for Monday fell on Saturday 21:00; asking on Monday is late.
	_, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: svc.ID,
		Now:       clock(monday, "00:30"),
		Settings:  snap,
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "booking_window_closed"))
}

func TestGenerateSlotsUnknownService(t *testing.T) {
	db := setupBookingTestDB(t)
	uc := NewGenerateSlots(testRepo(db))

	monday := testMonday(t)

	_, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: 999,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "invalid_service"))
}

func TestGenerateSlotsInactiveService(t *testing.T) {
	db := setupBookingTestDB(t)
	uc := NewGenerateSlots(testRepo(db))

	// Create then flip: the column default would swallow a zero-value
	// Active on insert.
	svc := models.Service{Name: "Retired service", DurationMin: 30, Active: true}
	require.NoError(t, db.Create(&svc).Error)
	require.NoError(t, db.Model(&svc).Update("active", false).Error)

	monday := testMonday(t)

	_, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: svc.ID,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "invalid_service"))
}

func TestGenerateSlotsCapacityOverrideFromDB(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	monday := testMonday(t)
	date := "2026-09-07"
	require.NoError(t, db.Create(&models.SlotCapacity{
		Date:      &date,
		TimeOfDay: "10:00",
		Capacity:  3,
	}).Error)

	seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))
	seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))

	slots, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: svc.ID,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.NoError(t, err)
	for _, s := range slots {
		if s.StartAt.Format("15:04") == "10:00" {
			assert.True(t, s.Available, "third seat still open")
		}
	}
}

func TestGenerateSlotsStaffFilter(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewGenerateSlots(testRepo(db))

	staff := models.Staff{Name: "Dr. Sato", Active: true}
	require.NoError(t, db.Create(&staff).Error)
	other := models.Staff{Name: "Dr. Tanaka", Active: true}
	require.NoError(t, db.Create(&other).Error)

	monday := testMonday(t)
	seedTestAppointment(t, db, svc.ID, &other.ID,
		clock(monday, "09:00"), clock(monday, "09:30"))

	slots, err := uc.Execute(context.Background(), GenerateSlotsInput{
		Date:      monday,
		ServiceID: svc.ID,
		StaffID:   &staff.ID,
		Now:       clock(monday, "00:30"),
		Settings:  testSnapshot(),
	})

	require.NoError(t, err)
	for _, s := range slots {
		if s.StartAt.Format("15:04") == "09:00" {
			assert.True(t, s.Available, "another staff member's booking does not block")
		}
	}
}
