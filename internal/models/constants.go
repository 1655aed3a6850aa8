package models

import "time"

const (
	// SessionTTL время жизни контекста разговора
	SessionTTL = 30 * time.Minute

	// ReminderLeadTime за сколько до визита отправляется напоминание
	ReminderLeadTime = 24 * time.Hour

	// ReminderMaxAttempts число попыток доставки напоминания
	ReminderMaxAttempts = 3

	// ReminderRetryDelay базовая задержка между попытками доставки
	ReminderRetryDelay = 60 * time.Second

	// WorkerConcurrency число воркеров очереди напоминаний
	WorkerConcurrency = 5

	// TopRankedStars сколько первых вариантов помечаются звездой
	TopRankedStars = 3

	// ProximityTextMaxDelta максимальная разница во времени для текста близости
	ProximityTextMaxDelta = 3 * time.Hour
)
