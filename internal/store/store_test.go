package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"salonflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testBooking(startAt time.Time) *models.Booking {
	return &models.Booking{
		SalonID:      1,
		CustomerID:   7,
		CustomerName: "Анна",
		Phone:        "79991234567",
		ServiceID:    3,
		ServiceName:  "Маникюр",
		MasterName:   "Ольга",
		StartAt:      startAt,
		Status:       models.BookingConfirmed,
		Language:     models.LangRU,
	}
}

func TestBookingCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	booking := testBooking(time.Now().Add(48 * time.Hour))
	require.NoError(t, db.CreateBooking(ctx, booking))
	require.NotZero(t, booking.ID)

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.CustomerName, got.CustomerName)
		assert.Equal(t, models.BookingConfirmed, got.Status)
		assert.Equal(t, models.LangRU, got.Language)
		assert.False(t, got.Reminded)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.GetBooking(ctx, 99999)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.BookingCancelled))
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingCancelled, got.Status)
	})

	t.Run("SetReminded", func(t *testing.T) {
		require.NoError(t, db.SetBookingReminded(ctx, booking.ID))
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.True(t, got.Reminded)
	})

	t.Run("RecordResponse", func(t *testing.T) {
		require.NoError(t, db.RecordBookingResponse(ctx, booking.ID, models.ActionConfirm, "да, приду"))
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ActionConfirm, got.ResponseAction)
		assert.Equal(t, "да, приду", got.ResponseText)
	})
}

func TestReminderLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	booking := testBooking(time.Now().Add(48 * time.Hour))
	require.NoError(t, db.CreateBooking(ctx, booking))

	reminder := &models.Reminder{
		BookingID:   booking.ID,
		SalonID:     booking.SalonID,
		ScheduledAt: booking.StartAt.Add(-24 * time.Hour),
		JobID:       "reminder:1",
	}
	require.NoError(t, db.CreateReminder(ctx, reminder))
	require.NotZero(t, reminder.ID)
	assert.Equal(t, models.ReminderPending, reminder.Status)

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetReminder(ctx, reminder.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, got.BookingID)
		assert.Equal(t, models.ReminderPending, got.Status)
		assert.Nil(t, got.SentAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := db.GetReminder(ctx, 424242)
		assert.ErrorIs(t, err, ErrReminderNotFound)
	})

	t.Run("MarkSent", func(t *testing.T) {
		require.NoError(t, db.IncrementReminderAttempts(ctx, reminder.ID))
		require.NoError(t, db.MarkReminderSent(ctx, reminder.ID, "wamid.123"))

		got, err := db.GetReminder(ctx, reminder.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReminderSent, got.Status)
		assert.Equal(t, "wamid.123", got.MessageID)
		assert.Equal(t, 1, got.Attempts)
		require.NotNil(t, got.SentAt)
	})

	t.Run("RecordResponse", func(t *testing.T) {
		require.NoError(t, db.RecordReminderResponse(ctx, reminder.ID, models.ActionCancel, "отмена"))

		got, err := db.GetReminder(ctx, reminder.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ActionCancel, got.ResponseAction)
		assert.Equal(t, "отмена", got.ResponseText)
		require.NotNil(t, got.ResponseReceivedAt)
	})
}

func TestLatestReminder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	booking := testBooking(time.Now().Add(48 * time.Hour))
	require.NoError(t, db.CreateBooking(ctx, booking))

	t.Run("NoneReturnsNil", func(t *testing.T) {
		got, err := db.LatestReminder(ctx, booking.ID, models.ReminderPending, models.ReminderSent)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	first := &models.Reminder{BookingID: booking.ID, SalonID: 1, ScheduledAt: time.Now(), JobID: "reminder:a"}
	require.NoError(t, db.CreateReminder(ctx, first))
	require.NoError(t, db.UpdateReminderStatus(ctx, first.ID, models.ReminderCancelled, ""))

	second := &models.Reminder{BookingID: booking.ID, SalonID: 1, ScheduledAt: time.Now(), JobID: "reminder:b"}
	require.NoError(t, db.CreateReminder(ctx, second))

	t.Run("PicksLatestMatchingStatus", func(t *testing.T) {
		got, err := db.LatestReminder(ctx, booking.ID, models.ReminderPending, models.ReminderSent)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("CancelledStillQueryable", func(t *testing.T) {
		got, err := db.LatestReminder(ctx, booking.ID, models.ReminderCancelled)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, first.ID, got.ID)
	})
}

func TestReminderStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	t.Run("EmptySetAllZero", func(t *testing.T) {
		stats, err := db.ReminderStats(ctx, 55)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
		assert.Equal(t, "0.0", stats.DeliveryRate)
		assert.Equal(t, "0.0", stats.ResponseRate)
	})

	booking := testBooking(time.Now().Add(48 * time.Hour))
	require.NoError(t, db.CreateBooking(ctx, booking))

	mk := func(status models.ReminderStatus, action models.ResponseAction) {
		r := &models.Reminder{BookingID: booking.ID, SalonID: 9, ScheduledAt: time.Now(), JobID: "j"}
		require.NoError(t, db.CreateReminder(ctx, r))
		if status == models.ReminderSent {
			require.NoError(t, db.MarkReminderSent(ctx, r.ID, "m"))
		} else if status != models.ReminderPending {
			require.NoError(t, db.UpdateReminderStatus(ctx, r.ID, status, ""))
		}
		if action != "" {
			require.NoError(t, db.RecordReminderResponse(ctx, r.ID, action, string(action)))
		}
	}

	mk(models.ReminderSent, models.ActionConfirm)
	mk(models.ReminderSent, models.ActionCancel)
	mk(models.ReminderSent, "")
	mk(models.ReminderFailed, "")
	mk(models.ReminderPending, "")

	stats, err := db.ReminderStats(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Sent)
	assert.Equal(t, 1, stats.Confirmed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, "60.0", stats.DeliveryRate)
	assert.Equal(t, "66.7", stats.ResponseRate)
}

func TestCustomerChatID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := testBooking(time.Now().Add(24 * time.Hour))
	require.NoError(t, db.CreateBooking(ctx, first))

	second := testBooking(time.Now().Add(48 * time.Hour))
	second.CustomerID = 42
	require.NoError(t, db.CreateBooking(ctx, second))

	t.Run("PicksLatestBooking", func(t *testing.T) {
		chatID, err := db.CustomerChatID(ctx, "79991234567")
		require.NoError(t, err)
		assert.Equal(t, int64(42), chatID)
	})

	t.Run("UnknownPhone", func(t *testing.T) {
		_, err := db.CustomerChatID(ctx, "70000000000")
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestBookingLookups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := testBooking(time.Now().Add(24 * time.Hour))
	require.NoError(t, db.CreateBooking(ctx, first))

	second := testBooking(time.Now().Add(48 * time.Hour))
	second.SalonID = 2
	require.NoError(t, db.CreateBooking(ctx, second))

	t.Run("LatestBookingByCustomer", func(t *testing.T) {
		got, err := db.LatestBookingByCustomer(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)

		_, err = db.LatestBookingByCustomer(ctx, 999)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("SalonIDs", func(t *testing.T) {
		ids, err := db.SalonIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, ids)
	})
}
