package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"salonflow/internal/config"
	"salonflow/internal/events"
	"salonflow/internal/export"
	"salonflow/internal/gateway"
	"salonflow/internal/logging"
	"salonflow/internal/metrics"
	"salonflow/internal/models"
	"salonflow/internal/queue"
	"salonflow/internal/reminder"
	"salonflow/internal/session"
	"salonflow/internal/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := store.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sessions := initSessionStore(ctx, cfg, &logger)
	if redisClient != nil {
		defer session.Close(redisClient)
	}

	eventBus := events.NewEventBus()
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		subscribeMetrics(eventBus)
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	botAPI, err := gateway.NewBot(cfg.Telegram)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	messenger := gateway.NewTelegram(botAPI, db.CustomerChatID, cfg.Telegram, &logger)

	jobQueue := queue.NewDelayed(redisClient)
	reminderSvc := reminder.NewService(db, db, jobQueue, messenger, eventBus, &logger)

	retry := queue.RetryPolicy{InitialDelay: cfg.Reminder.RetryDelay(), BackoffFactor: 2}
	worker := queue.NewWorker(jobQueue, retry, cfg.Worker.Concurrency, &logger)
	worker.SetPolling(cfg.Worker.PollInterval(), cfg.Worker.BatchSize)
	if err := worker.Register(models.JobReminderSend, reminderSvc.HandleSendJob); err != nil {
		return err
	}
	go worker.Start(ctx)

	exporter := export.NewStatsExporter(db, cfg.Exports.Path, &logger)
	go runNightlyExport(ctx, db, exporter, &logger)

	logger.Info().Msg("Ассистент запущен...")
	listenReplies(ctx, botAPI, db, sessions, reminderSvc, &logger)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "assistant-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initSessionStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *session.Store) {
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = session.NewRedisClient(cfg.Redis)
		if errPing := session.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primary := session.NewRedisRepository(redisClient)
	fallback := session.NewMemoryRepository()
	repo := session.NewFailoverRepository(primary, fallback, logger)
	return redisClient, session.NewStore(repo, cfg.Session.TTL(), logger)
}

func subscribeMetrics(bus *events.EventBus) {
	bus.Subscribe(events.EventReminderSent, func(*events.Event) error {
		metrics.IncReminder("sent")
		return nil
	})
	bus.Subscribe(events.EventReminderFailed, func(*events.Event) error {
		metrics.IncReminder("failed")
		return nil
	})
	bus.Subscribe(events.EventBookingConfirmed, func(*events.Event) error {
		metrics.IncResponse("confirm")
		return nil
	})
	bus.Subscribe(events.EventBookingCancelled, func(*events.Event) error {
		metrics.IncResponse("cancel")
		return nil
	})
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

// listenReplies читает входящие сообщения и передает их обработчику ответов
// на напоминания. Сессия клиента продлевается при каждом сообщении.
func listenReplies(
	ctx context.Context,
	botAPI *tgbotapi.BotAPI,
	db *store.DB,
	sessions *session.Store,
	reminderSvc *reminder.Service,
	logger *zerolog.Logger,
) {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := botAPI.GetUpdatesChan(updateCfg)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			chatID := update.Message.Chat.ID
			booking, err := db.LatestBookingByCustomer(ctx, chatID)
			if err != nil {
				logger.Debug().Int64("chat_id", chatID).Msg("message from customer without bookings")
				continue
			}

			// Продлеваем сессию диалога, если она есть.
			sessions.Get(ctx, booking.Phone)

			if _, err := reminderSvc.ProcessResponse(ctx, booking.ID, update.Message.Text); err != nil {
				logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("failed to process reply")
			}
		}
	}
}

// runNightlyExport раз в сутки выгружает статистику напоминаний по каждому салону.
func runNightlyExport(ctx context.Context, db *store.DB, exporter *export.StatsExporter, logger *zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			salons, err := db.SalonIDs(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("failed to list salons for export")
				continue
			}
			for _, salonID := range salons {
				if _, err := exporter.Export(ctx, salonID); err != nil {
					logger.Error().Err(err).Int64("salon_id", salonID).Msg("stats export failed")
				}
			}
		}
	}
}
