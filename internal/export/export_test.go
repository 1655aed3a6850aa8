package export

import (
	"context"
	"io"
	"testing"
	"time"

	"salonflow/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeReminderStore struct {
	stats *models.ReminderStats
	rows  []models.Reminder
}

func (f *fakeReminderStore) CreateReminder(context.Context, *models.Reminder) error { return nil }
func (f *fakeReminderStore) GetReminder(context.Context, int64) (*models.Reminder, error) {
	return nil, nil
}
func (f *fakeReminderStore) LatestReminder(context.Context, int64, ...models.ReminderStatus) (*models.Reminder, error) {
	return nil, nil
}
func (f *fakeReminderStore) UpdateReminderStatus(context.Context, int64, models.ReminderStatus, string) error {
	return nil
}
func (f *fakeReminderStore) MarkReminderSent(context.Context, int64, string) error { return nil }
func (f *fakeReminderStore) IncrementReminderAttempts(context.Context, int64) error {
	return nil
}
func (f *fakeReminderStore) RecordReminderResponse(context.Context, int64, models.ResponseAction, string) error {
	return nil
}
func (f *fakeReminderStore) ReminderStats(context.Context, int64) (*models.ReminderStats, error) {
	return f.stats, nil
}
func (f *fakeReminderStore) RemindersBySalon(context.Context, int64) ([]models.Reminder, error) {
	return f.rows, nil
}

func TestStatsExporter(t *testing.T) {
	sentAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeReminderStore{
		stats: &models.ReminderStats{
			Total:        5,
			Sent:         4,
			Confirmed:    3,
			Cancelled:    1,
			Failed:       1,
			DeliveryRate: "80.0",
			ResponseRate: "75.0",
		},
		rows: []models.Reminder{
			{
				ID:             1,
				BookingID:      7,
				Status:         models.ReminderSent,
				Attempts:       1,
				SentAt:         &sentAt,
				ResponseAction: models.ActionConfirm,
				ResponseText:   "да",
			},
			{ID: 2, BookingID: 8, Status: models.ReminderFailed, Attempts: 3},
		},
	}

	logger := zerolog.New(io.Discard)
	exporter := NewStatsExporter(store, t.TempDir(), &logger)

	filePath, err := exporter.Export(context.Background(), 3)
	require.NoError(t, err)

	f, err := excelize.OpenFile(filePath)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "Салон 3")

	total, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "5", total)

	rate, err := f.GetCellValue(sheetName, "B8")
	require.NoError(t, err)
	assert.Equal(t, "80.0", rate)

	firstID, err := f.GetCellValue(sheetName, "A13")
	require.NoError(t, err)
	assert.Equal(t, "1", firstID)

	response, err := f.GetCellValue(sheetName, "F13")
	require.NoError(t, err)
	assert.Equal(t, "confirm", response)
}
