package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
	"github.com/clinicdesk/clinic-scheduler/internal/models"
)

func TestCreateBookingSuccess(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	monday := testMonday(t)

	ap, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "09:00")),
		EndAt:        rfc(clock(monday, "09:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		PatientEmail: "aiko@example.com",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, ap.Reference)
	assert.Equal(t, string(domain.StatusConfirmed), ap.Status)
	assert.Equal(t, svc.ID, ap.ServiceID)

	var patient models.Patient
	require.NoError(t, db.Where("phone = ?", "070-1234-5678").First(&patient).Error)
	assert.Equal(t, patient.ID, ap.PatientID)
}

func TestCreateBookingReusesPatientByPhone(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	monday := testMonday(t)

	first, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "09:00")),
		EndAt:        rfc(clock(monday, "09:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "10:00")),
		EndAt:        rfc(clock(monday, "10:30")),
		PatientName:  "A. Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})
	require.NoError(t, err)

	assert.Equal(t, first.PatientID, second.PatientID)

	var count int64
	require.NoError(t, db.Model(&models.Patient{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateBookingRejectsPastStart(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	monday := testMonday(t)

	// A start exactly at now is already in the past.
	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "10:00")),
		EndAt:        rfc(clock(monday, "10:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "10:00"),
		Settings:     testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "past_date"))
	assert.Equal(t, "cannot book a time in the past", err.Error())
}

func TestCreateBookingRejectsMalformedInterval(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	monday := testMonday(t)

	cases := []struct {
		name    string
		startAt string
		endAt   string
	}{
		{"unparseable start", "tomorrow at nine", rfc(clock(monday, "09:30"))},
		{"end before start", rfc(clock(monday, "09:30")), rfc(clock(monday, "09:00"))},
		{"duration mismatch", rfc(clock(monday, "09:00")), rfc(clock(monday, "09:45"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), CreateBookingInput{
				ServiceID:    svc.ID,
				StartAt:      tc.startAt,
				EndAt:        tc.endAt,
				PatientName:  "Aiko Yamada",
				PatientPhone: "070-1234-5678",
				Now:          clock(monday, "08:00"),
				Settings:     testSnapshot(),
			})

			require.Error(t, err)
			assert.True(t, httperr.IsBusiness(err, "invalid_interval"))
		})
	}
}

func TestCreateBookingRejectsOutsideOpeningHours(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	monday := testMonday(t)

	// Lunch break on an otherwise open day.
	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "12:00")),
		EndAt:        rfc(clock(monday, "12:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "outside_opening_hours"))
}

func TestCreateBookingRejectsClosedDay(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	sunday := testMonday(t).AddDate(0, 0, 6)

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(sunday, "10:00")),
		EndAt:        rfc(clock(sunday, "10:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(testMonday(t), "08:00"),
		Settings:     testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "day_closed"))
}

func TestCreateBookingRejectsBlockedRange(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	require.NoError(t, db.Create(&models.ScheduleException{
		StartDate: "2026-09-07",
		EndDate:   "2026-09-07",
		Kind:      models.ExceptionPartialClosed,
		StartTime: "14:00",
		EndTime:   "15:00",
	}).Error)

	monday := testMonday(t)

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "14:30")),
		EndAt:        rfc(clock(monday, "15:00")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "outside_opening_hours"))
}

func TestCreateBookingRejectsUnknownStaff(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	monday := testMonday(t)
	staffID := uint(99)

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StaffID:      &staffID,
		StartAt:      rfc(clock(monday, "09:00")),
		EndAt:        rfc(clock(monday, "09:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "invalid_staff"))
}

func TestCreateBookingFullSlotRejected(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	monday := testMonday(t)

	_, err := uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "09:00")),
		EndAt:        rfc(clock(monday, "09:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "09:00")),
		EndAt:        rfc(clock(monday, "09:30")),
		PatientName:  "Kenta Mori",
		PatientPhone: "070-9999-0000",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "slot_already_booked"))
}

func TestCreateBookingCapacityOverrideAdmitsSecondPatient(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCreateBooking(testRepo(db), testDispatcher(db))

	date := "2026-09-07"
	require.NoError(t, db.Create(&models.SlotCapacity{
		Date:      &date,
		TimeOfDay: "09:00",
		Capacity:  2,
	}).Error)

	monday := testMonday(t)

	book := func(phone string) error {
		_, err := uc.Execute(context.Background(), CreateBookingInput{
			ServiceID:    svc.ID,
			StartAt:      rfc(clock(monday, "09:00")),
			EndAt:        rfc(clock(monday, "09:30")),
			PatientName:  "Patient " + phone,
			PatientPhone: phone,
			Now:          clock(monday, "08:00"),
			Settings:     testSnapshot(),
		})
		return err
	}

	require.NoError(t, book("070-0000-0001"))
	require.NoError(t, book("070-0000-0002"))

	err := book("070-0000-0003")
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "slot_already_booked"))
}

func TestCreateBookingCancelledSlotCanBeRebooked(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	repo := testRepo(db)
	dispatcher := testDispatcher(db)
	create := NewCreateBooking(repo, dispatcher)
	cancel := NewCancelAppointment(repo, dispatcher)

	monday := testMonday(t)

	first, err := create.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "09:00")),
		EndAt:        rfc(clock(monday, "09:30")),
		PatientName:  "Aiko Yamada",
		PatientPhone: "070-1234-5678",
		Now:          clock(monday, "08:00"),
		Settings:     testSnapshot(),
	})
	require.NoError(t, err)

	_, err = cancel.Execute(context.Background(), 1, first.ID, clock(monday, "08:10"))
	require.NoError(t, err)

	_, err = create.Execute(context.Background(), CreateBookingInput{
		ServiceID:    svc.ID,
		StartAt:      rfc(clock(monday, "09:00")),
		EndAt:        rfc(clock(monday, "09:30")),
		PatientName:  "Kenta Mori",
		PatientPhone: "070-9999-0000",
		Now:          clock(monday, "08:20"),
		Settings:     testSnapshot(),
	})
	require.NoError(t, err)
}
