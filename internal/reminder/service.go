package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"salonflow/internal/domain"
	"salonflow/internal/events"
	"salonflow/internal/models"
	"salonflow/internal/store"

	"github.com/rs/zerolog"
)

// sendPayload is the queue job body for a reminder delivery.
type sendPayload struct {
	ReminderID int64 `json:"reminder_id"`
}

// Service drives the reminder lifecycle: scheduling against the delayed
// queue, delivery through the messenger and classification of customer
// replies. Delivery errors are returned to the queue worker, which owns
// retries and the dead-letter decision.
type Service struct {
	reminders domain.ReminderStore
	bookings  domain.BookingStore
	queue     domain.JobQueue
	messenger domain.Messenger
	eventBus  domain.EventPublisher
	logger    *zerolog.Logger
}

func NewService(reminders domain.ReminderStore, bookings domain.BookingStore, queue domain.JobQueue, messenger domain.Messenger, eventBus domain.EventPublisher, logger *zerolog.Logger) *Service {
	return &Service{
		reminders: reminders,
		bookings:  bookings,
		queue:     queue,
		messenger: messenger,
		eventBus:  eventBus,
		logger:    logger,
	}
}

func jobID(bookingID int64) string {
	return "reminder:" + strconv.FormatInt(bookingID, 10)
}

// Schedule создает напоминание за сутки до записи и ставит отложенную задачу
// на отправку. Повторный вызов для той же записи отменяет предыдущее
// напоминание и заводит новое (перенос времени записи).
func (s *Service) Schedule(ctx context.Context, bookingID int64) error {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	fireAt := booking.StartAt.Add(-models.ReminderLeadTime)
	if fireAt.Before(time.Now()) {
		s.logger.Info().
			Int64("booking_id", bookingID).
			Time("start_at", booking.StartAt).
			Msg("booking starts in less than a day, reminder skipped")
		return nil
	}

	// Перенос записи: старое напоминание больше не актуально. Сбой отмены
	// не блокирует новое расписание, устаревшую задачу отсеет Send.
	if err := s.Cancel(ctx, bookingID); err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("failed to cancel superseded reminder")
	}

	rem := &models.Reminder{
		BookingID:   bookingID,
		SalonID:     booking.SalonID,
		ScheduledAt: fireAt,
		Status:      models.ReminderPending,
		JobID:       jobID(bookingID),
	}
	if err := s.reminders.CreateReminder(ctx, rem); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	payload, err := json.Marshal(sendPayload{ReminderID: rem.ID})
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	job := domain.Job{
		ID:          rem.JobID,
		Kind:        models.JobReminderSend,
		Payload:     payload,
		RunAt:       fireAt,
		MaxAttempts: models.ReminderMaxAttempts,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}

	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("reminder_id", rem.ID).
		Time("fire_at", fireAt).
		Msg("reminder scheduled")
	return nil
}

// Cancel retires the active reminder for a booking: the queued job is
// removed and the record is marked CANCELLED. No active reminder is a
// silent success.
func (s *Service) Cancel(ctx context.Context, bookingID int64) error {
	rem, err := s.reminders.LatestReminder(ctx, bookingID,
		models.ReminderPending, models.ReminderSent, models.ReminderFailed)
	if err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}
	if rem == nil {
		return nil
	}

	if err := s.queue.Remove(ctx, rem.JobID); err != nil {
		// Запись все равно помечаем отмененной: Send проверит статус
		// и не отправит устаревшее напоминание.
		s.logger.Warn().Err(err).
			Str("job_id", rem.JobID).
			Msg("failed to remove reminder job from queue")
	}

	if err := s.reminders.UpdateReminderStatus(ctx, rem.ID, models.ReminderCancelled, ""); err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}

	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("reminder_id", rem.ID).
		Msg("reminder cancelled")
	return nil
}

// Send delivers one reminder. It runs inside the queue worker, so a failed
// delivery is reported back via the returned error: the worker reschedules
// with backoff until attempts run out.
func (s *Service) Send(ctx context.Context, reminderID int64) error {
	rem, err := s.reminders.GetReminder(ctx, reminderID)
	if err != nil {
		if errors.Is(err, store.ErrReminderNotFound) {
			s.logger.Warn().Int64("reminder_id", reminderID).Msg("reminder job references a missing record")
			return nil
		}
		return fmt.Errorf("send reminder: %w", err)
	}

	// Защита от устаревших задач: отправляем только из PENDING,
	// FAILED допускается как промежуточное состояние между попытками.
	if rem.Status != models.ReminderPending && rem.Status != models.ReminderFailed {
		s.logger.Debug().
			Int64("reminder_id", reminderID).
			Str("status", string(rem.Status)).
			Msg("stale reminder job skipped")
		return nil
	}

	booking, err := s.bookings.GetBooking(ctx, rem.BookingID)
	if err != nil {
		return s.sendFailed(ctx, rem, fmt.Errorf("send reminder: %w", err))
	}
	if booking.Status == models.BookingCancelled {
		s.logger.Info().
			Int64("booking_id", booking.ID).
			Int64("reminder_id", rem.ID).
			Msg("booking already cancelled, reminder retired")
		return s.reminders.UpdateReminderStatus(ctx, rem.ID, models.ReminderCancelled, "")
	}

	messageID, err := s.messenger.SendText(ctx, booking.Phone, reminderMessage(booking))
	if err != nil {
		return s.sendFailed(ctx, rem, fmt.Errorf("send reminder: %w", err))
	}

	if err := s.reminders.IncrementReminderAttempts(ctx, rem.ID); err != nil {
		s.logger.Error().Err(err).Int64("reminder_id", rem.ID).Msg("failed to bump reminder attempts")
	}
	if err := s.reminders.MarkReminderSent(ctx, rem.ID, messageID); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	if err := s.bookings.SetBookingReminded(ctx, rem.BookingID); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", rem.BookingID).Msg("failed to flag booking as reminded")
	}

	s.publishReminderEvent(events.EventReminderSent, rem, booking, "")

	s.logger.Info().
		Int64("reminder_id", rem.ID).
		Int64("booking_id", rem.BookingID).
		Str("message_id", messageID).
		Msg("reminder sent")
	return nil
}

// sendFailed records a delivery failure and re-raises the cause.
func (s *Service) sendFailed(ctx context.Context, rem *models.Reminder, cause error) error {
	if err := s.reminders.IncrementReminderAttempts(ctx, rem.ID); err != nil {
		s.logger.Error().Err(err).Int64("reminder_id", rem.ID).Msg("failed to bump reminder attempts")
	}
	if err := s.reminders.UpdateReminderStatus(ctx, rem.ID, models.ReminderFailed, cause.Error()); err != nil {
		s.logger.Error().Err(err).Int64("reminder_id", rem.ID).Msg("failed to mark reminder as failed")
	}

	s.publishReminderEvent(events.EventReminderFailed, rem, nil, cause.Error())

	s.logger.Error().Err(cause).
		Int64("reminder_id", rem.ID).
		Int64("booking_id", rem.BookingID).
		Int("attempts", rem.Attempts+1).
		Msg("reminder delivery failed")
	return cause
}

// ProcessResponse classifies a customer's reply to the latest delivered
// reminder and applies it to the booking. A reply with no matching reminder
// is ignored: the customer may be writing about something else entirely.
func (s *Service) ProcessResponse(ctx context.Context, bookingID int64, text string) (models.ResponseAction, error) {
	rem, err := s.reminders.LatestReminder(ctx, bookingID,
		models.ReminderSent, models.ReminderDelivered, models.ReminderRead)
	if err != nil {
		return models.ActionUnknown, fmt.Errorf("process response: %w", err)
	}
	if rem == nil {
		s.logger.Debug().Int64("booking_id", bookingID).Msg("reply without a delivered reminder, ignored")
		return models.ActionUnknown, nil
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return models.ActionUnknown, fmt.Errorf("process response: %w", err)
	}

	action := ParseResponse(text)

	if err := s.reminders.RecordReminderResponse(ctx, rem.ID, action, text); err != nil {
		return action, fmt.Errorf("process response: %w", err)
	}
	if err := s.bookings.RecordBookingResponse(ctx, bookingID, action, text); err != nil {
		return action, fmt.Errorf("process response: %w", err)
	}

	switch action {
	case models.ActionConfirm:
		if err := s.bookings.UpdateBookingStatus(ctx, bookingID, models.BookingConfirmed); err != nil {
			return action, fmt.Errorf("process response: %w", err)
		}
		s.publishBookingEvent(events.EventBookingConfirmed, booking, action, text)
	case models.ActionCancel:
		if err := s.bookings.UpdateBookingStatus(ctx, bookingID, models.BookingCancelled); err != nil {
			return action, fmt.Errorf("process response: %w", err)
		}
		s.publishBookingEvent(events.EventBookingCancelled, booking, action, text)
	case models.ActionReschedule:
		// Статус записи не меняем: перенос завершает менеджер в диалоге.
	}

	if _, err := s.messenger.SendText(ctx, booking.Phone, ackMessage(booking.Language, action)); err != nil {
		s.logger.Warn().Err(err).
			Int64("booking_id", bookingID).
			Msg("failed to acknowledge reminder response")
	}

	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("reminder_id", rem.ID).
		Str("action", string(action)).
		Msg("reminder response processed")
	return action, nil
}

// MarkDelivered advances a sent reminder on a delivery receipt from the channel.
func (s *Service) MarkDelivered(ctx context.Context, reminderID int64) error {
	rem, err := s.reminders.GetReminder(ctx, reminderID)
	if err != nil {
		return err
	}
	if rem.Status != models.ReminderSent {
		return nil
	}
	return s.reminders.UpdateReminderStatus(ctx, reminderID, models.ReminderDelivered, "")
}

// MarkRead advances a reminder on a read receipt.
func (s *Service) MarkRead(ctx context.Context, reminderID int64) error {
	rem, err := s.reminders.GetReminder(ctx, reminderID)
	if err != nil {
		return err
	}
	if rem.Status != models.ReminderSent && rem.Status != models.ReminderDelivered {
		return nil
	}
	return s.reminders.UpdateReminderStatus(ctx, reminderID, models.ReminderRead, "")
}

// Stats возвращает сводку доставки напоминаний по салону.
func (s *Service) Stats(ctx context.Context, salonID int64) (*models.ReminderStats, error) {
	return s.reminders.ReminderStats(ctx, salonID)
}

// HandleSendJob is the queue handler for reminder delivery jobs.
func (s *Service) HandleSendJob(ctx context.Context, job domain.Job) error {
	var p sendPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("reminder job payload: %w", err)
	}
	return s.Send(ctx, p.ReminderID)
}

func (s *Service) publishReminderEvent(eventType string, rem *models.Reminder, booking *models.Booking, errText string) {
	if s.eventBus == nil {
		return
	}
	payload := events.ReminderEventPayload{
		ReminderID: rem.ID,
		BookingID:  rem.BookingID,
		SalonID:    rem.SalonID,
		Status:     string(rem.Status),
		Attempts:   rem.Attempts,
		Error:      errText,
	}
	if booking != nil {
		payload.StartAt = booking.StartAt
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func (s *Service) publishBookingEvent(eventType string, booking *models.Booking, action models.ResponseAction, text string) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		SalonID:      booking.SalonID,
		CustomerName: booking.CustomerName,
		Status:       string(booking.Status),
		Action:       string(action),
		ResponseText: text,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
