package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/clinicdesk/clinic-scheduler/internal/domain/scheduling"
	"github.com/clinicdesk/clinic-scheduler/internal/httperr"
)

func TestCancelAppointment(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCancelAppointment(testRepo(db), testDispatcher(db))

	monday := testMonday(t)
	seeded := seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))

	ap, err := uc.Execute(context.Background(), 1, seeded.ID, clock(monday, "09:00"))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), ap.Status)
	require.NotNil(t, ap.CancelledAt)
	assert.Equal(t, clock(monday, "09:00"), *ap.CancelledAt)
}

func TestCancelAppointmentTwiceFails(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCancelAppointment(testRepo(db), testDispatcher(db))

	monday := testMonday(t)
	seeded := seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))

	_, err := uc.Execute(context.Background(), 1, seeded.ID, clock(monday, "09:00"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), 1, seeded.ID, clock(monday, "09:05"))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestCancelAppointmentNotFound(t *testing.T) {
	db := setupBookingTestDB(t)
	uc := NewCancelAppointment(testRepo(db), testDispatcher(db))

	_, err := uc.Execute(context.Background(), 1, 999, clock(testMonday(t), "09:00"))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))
}

func TestCompleteAppointment(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewCompleteAppointment(testRepo(db), testDispatcher(db))

	monday := testMonday(t)
	seeded := seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))

	ap, err := uc.Execute(context.Background(), 1, seeded.ID, clock(monday, "10:35"))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCompleted), ap.Status)
	require.NotNil(t, ap.CompletedAt)
}

func TestCompleteCancelledAppointmentFails(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	repo := testRepo(db)
	dispatcher := testDispatcher(db)
	cancel := NewCancelAppointment(repo, dispatcher)
	complete := NewCompleteAppointment(repo, dispatcher)

	monday := testMonday(t)
	seeded := seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))

	_, err := cancel.Execute(context.Background(), 1, seeded.ID, clock(monday, "09:00"))
	require.NoError(t, err)

	_, err = complete.Execute(context.Background(), 1, seeded.ID, clock(monday, "10:35"))
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestListAppointmentsByDateAndMonth(t *testing.T) {
	db := setupBookingTestDB(t)
	svc := seedTestService(t, db, 30)
	uc := NewListAppointments(testRepo(db))

	monday := testMonday(t)
	seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "09:00"), clock(monday, "09:30"))
	seedTestAppointment(t, db, svc.ID, nil,
		clock(monday, "10:00"), clock(monday, "10:30"))
	tuesday := monday.AddDate(0, 0, 1)
	seedTestAppointment(t, db, svc.ID, nil,
		clock(tuesday, "09:00"), clock(tuesday, "09:30"))

	byDate, err := uc.ByDate(context.Background(), monday)
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byMonth, err := uc.ByMonth(context.Background(), monday.AddDate(0, 0, -6))
	require.NoError(t, err)
	assert.Len(t, byMonth, 3)
}
