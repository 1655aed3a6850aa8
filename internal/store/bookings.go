package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"salonflow/internal/models"
)

// CreateBooking создает новое бронирование
func (d *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `
        INSERT INTO bookings (salon_id, customer_id, customer_name, phone, service_id, service_name, master_name, start_at, status, language, reminded, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = models.BookingPending
	}
	if booking.Language == "" {
		booking.Language = models.DefaultLanguage
	}

	result, err := d.db.ExecContext(ctx, query,
		booking.SalonID,
		booking.CustomerID,
		booking.CustomerName,
		booking.Phone,
		booking.ServiceID,
		booking.ServiceName,
		booking.MasterName,
		booking.StartAt,
		booking.Status,
		booking.Language,
		booking.Reminded,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	booking.ID = id
	return nil
}

// GetBooking возвращает бронирование по ID
func (d *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return d.queryBooking(ctx, `WHERE id = ?`, id)
}

// LatestBookingByCustomer возвращает последнюю запись клиента по chat id.
func (d *DB) LatestBookingByCustomer(ctx context.Context, customerID int64) (*models.Booking, error) {
	return d.queryBooking(ctx, `WHERE customer_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, customerID)
}

func (d *DB) queryBooking(ctx context.Context, clause string, args ...interface{}) (*models.Booking, error) {
	query := `
        SELECT id, salon_id, customer_id, customer_name, phone, service_id, service_name, master_name, start_at, status, language, reminded, response_action, response_text, created_at, updated_at
        FROM bookings ` + clause

	var booking models.Booking
	var masterName, responseAction, responseText sql.NullString
	err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.SalonID,
		&booking.CustomerID,
		&booking.CustomerName,
		&booking.Phone,
		&booking.ServiceID,
		&booking.ServiceName,
		&masterName,
		&booking.StartAt,
		&booking.Status,
		&booking.Language,
		&booking.Reminded,
		&responseAction,
		&responseText,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	booking.MasterName = masterName.String
	booking.ResponseAction = models.ResponseAction(responseAction.String)
	booking.ResponseText = responseText.String
	return &booking, nil
}

// UpdateBookingStatus обновляет статус бронирования
func (d *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	return d.execContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
}

// SetBookingReminded помечает бронирование как напомненное
func (d *DB) SetBookingReminded(ctx context.Context, id int64) error {
	return d.execContext(ctx,
		`UPDATE bookings SET reminded = 1, updated_at = ? WHERE id = ?`,
		time.Now(), id)
}

// RecordBookingResponse сохраняет ответ клиента на бронировании
func (d *DB) RecordBookingResponse(ctx context.Context, id int64, action models.ResponseAction, text string) error {
	return d.execContext(ctx,
		`UPDATE bookings SET response_action = ?, response_text = ?, updated_at = ? WHERE id = ?`,
		action, text, time.Now(), id)
}

// CustomerChatID возвращает чат клиента по нормализованному номеру телефона.
// Берется последняя запись с этим номером.
func (d *DB) CustomerChatID(ctx context.Context, phone string) (int64, error) {
	var chatID int64
	err := d.db.QueryRowContext(ctx,
		`SELECT customer_id FROM bookings WHERE phone = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		phone).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBookingNotFound
	}
	if err != nil {
		return 0, err
	}
	return chatID, nil
}

// SalonIDs возвращает салоны, у которых есть хотя бы одна запись.
func (d *DB) SalonIDs(ctx context.Context) ([]int64, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT DISTINCT salon_id FROM bookings ORDER BY salon_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
