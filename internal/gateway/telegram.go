package gateway

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"salonflow/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Sender is the slice of the Telegram client the gateway uses.
// *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatResolver maps a normalized phone (digits only) to a Telegram chat id.
type ChatResolver func(ctx context.Context, phone string) (int64, error)

// Telegram delivers reminder texts over the bot API with a per-recipient
// rate limit, so one salon's burst does not hit Telegram's flood control.
type Telegram struct {
	bot      Sender
	resolve  ChatResolver
	limiters sync.Map // map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	logger   *zerolog.Logger
}

func NewTelegram(bot Sender, resolve ChatResolver, cfg config.TelegramConfig, logger *zerolog.Logger) *Telegram {
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return &Telegram{
		bot:     bot,
		resolve: resolve,
		rps:     rate.Limit(cfg.RateLimitRPS),
		burst:   burst,
		logger:  logger,
	}
}

// NewBot подключается к Telegram Bot API.
func NewBot(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = cfg.Debug
	return bot, nil
}

func (t *Telegram) limiter(key string) *rate.Limiter {
	if v, ok := t.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	lim := rate.NewLimiter(t.rps, t.burst)
	actual, loaded := t.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

// SendText resolves the recipient to a chat and delivers one text message.
// The returned id is the Telegram message id, used later to correlate
// delivery receipts.
func (t *Telegram) SendText(ctx context.Context, recipient, body string) (string, error) {
	chatID, err := t.resolve(ctx, recipient)
	if err != nil {
		return "", fmt.Errorf("resolve recipient %s: %w", recipient, err)
	}

	if err := t.limiter(recipient).Wait(ctx); err != nil {
		return "", err
	}

	sent, err := t.bot.Send(tgbotapi.NewMessage(chatID, body))
	if err != nil {
		return "", fmt.Errorf("telegram send: %w", err)
	}

	t.logger.Debug().
		Str("recipient", recipient).
		Int64("chat_id", chatID).
		Int("message_id", sent.MessageID).
		Msg("message delivered")
	return strconv.Itoa(sent.MessageID), nil
}
