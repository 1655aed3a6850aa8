package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonflow/internal/models"
)

// CreateReminder создает новую запись напоминания
func (d *DB) CreateReminder(ctx context.Context, r *models.Reminder) error {
	query := `
        INSERT INTO reminders (booking_id, salon_id, scheduled_at, status, job_id, attempts, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = models.ReminderPending
	}

	result, err := d.db.ExecContext(ctx, query,
		r.BookingID,
		r.SalonID,
		r.ScheduledAt,
		r.Status,
		r.JobID,
		r.Attempts,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	r.ID = id
	return nil
}

const reminderColumns = `id, booking_id, salon_id, scheduled_at, status, job_id, attempts, last_error, message_id, sent_at, response_received_at, response_action, response_text, created_at, updated_at`

func scanReminder(row interface{ Scan(...interface{}) error }) (*models.Reminder, error) {
	var r models.Reminder
	var lastError, messageID, responseAction, responseText sql.NullString
	var sentAt, responseReceivedAt sql.NullTime

	err := row.Scan(
		&r.ID,
		&r.BookingID,
		&r.SalonID,
		&r.ScheduledAt,
		&r.Status,
		&r.JobID,
		&r.Attempts,
		&lastError,
		&messageID,
		&sentAt,
		&responseReceivedAt,
		&responseAction,
		&responseText,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.LastError = lastError.String
	r.MessageID = messageID.String
	r.ResponseAction = models.ResponseAction(responseAction.String)
	r.ResponseText = responseText.String
	if sentAt.Valid {
		r.SentAt = &sentAt.Time
	}
	if responseReceivedAt.Valid {
		r.ResponseReceivedAt = &responseReceivedAt.Time
	}
	return &r, nil
}

// GetReminder возвращает напоминание по ID
func (d *DB) GetReminder(ctx context.Context, id int64) (*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`

	r, err := scanReminder(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// LatestReminder возвращает последнее напоминание бронирования в одном из
// указанных статусов, или nil если такого нет.
func (d *DB) LatestReminder(ctx context.Context, bookingID int64, statuses ...models.ReminderStatus) (*models.Reminder, error) {
	if len(statuses) == 0 {
		return nil, fmt.Errorf("at least one status is required")
	}

	placeholders := strings.Repeat("?,", len(statuses))
	placeholders = placeholders[:len(placeholders)-1]
	query := `SELECT ` + reminderColumns + ` FROM reminders
        WHERE booking_id = ? AND status IN (` + placeholders + `)
        ORDER BY created_at DESC, id DESC LIMIT 1`

	args := make([]interface{}, 0, len(statuses)+1)
	args = append(args, bookingID)
	for _, s := range statuses {
		args = append(args, s)
	}

	r, err := scanReminder(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateReminderStatus обновляет статус и последнюю ошибку напоминания
func (d *DB) UpdateReminderStatus(ctx context.Context, id int64, status models.ReminderStatus, lastError string) error {
	return d.execContext(ctx,
		`UPDATE reminders SET status = ?, last_error = ?, updated_at = ? WHERE id = ?`,
		status, lastError, time.Now(), id)
}

// MarkReminderSent помечает напоминание отправленным
func (d *DB) MarkReminderSent(ctx context.Context, id int64, messageID string) error {
	now := time.Now()
	return d.execContext(ctx,
		`UPDATE reminders SET status = ?, message_id = ?, sent_at = ?, updated_at = ? WHERE id = ?`,
		models.ReminderSent, messageID, now, now, id)
}

// IncrementReminderAttempts увеличивает счетчик попыток доставки
func (d *DB) IncrementReminderAttempts(ctx context.Context, id int64) error {
	return d.execContext(ctx,
		`UPDATE reminders SET attempts = attempts + 1, updated_at = ? WHERE id = ?`,
		time.Now(), id)
}

// RecordReminderResponse сохраняет разобранный ответ клиента
func (d *DB) RecordReminderResponse(ctx context.Context, id int64, action models.ResponseAction, text string) error {
	now := time.Now()
	return d.execContext(ctx,
		`UPDATE reminders SET response_action = ?, response_text = ?, response_received_at = ?, updated_at = ? WHERE id = ?`,
		action, text, now, now, id)
}

// RemindersBySalon возвращает все напоминания салона (для экспорта)
func (d *DB) RemindersBySalon(ctx context.Context, salonID int64) ([]models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE salon_id = ? ORDER BY created_at DESC`

	rows, err := d.db.QueryContext(ctx, query, salonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

// ReminderStats агрегирует статистику доставки напоминаний салона
func (d *DB) ReminderStats(ctx context.Context, salonID int64) (*models.ReminderStats, error) {
	query := `
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN status IN ('sent', 'delivered', 'read') OR sent_at IS NOT NULL THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN response_action = 'confirm' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN response_action = 'cancel' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
        FROM reminders WHERE salon_id = ?
    `

	stats := &models.ReminderStats{}
	err := d.db.QueryRowContext(ctx, query, salonID).Scan(
		&stats.Total,
		&stats.Sent,
		&stats.Confirmed,
		&stats.Cancelled,
		&stats.Failed,
	)
	if err != nil {
		return nil, err
	}

	stats.DeliveryRate = formatRate(stats.Sent, stats.Total)
	stats.ResponseRate = formatRate(stats.Confirmed+stats.Cancelled, stats.Sent)
	return stats, nil
}

// formatRate возвращает процент с одним знаком, "0.0" при нулевом знаменателе
func formatRate(numerator, denominator int) string {
	if denominator == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(numerator)/float64(denominator)*100)
}
