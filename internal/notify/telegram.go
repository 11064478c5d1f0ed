package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"salonbook/internal/events"
)

// TelegramSender is the part of the bot API the notifier uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// TelegramNotifier messages admin chats through a bot.
type TelegramNotifier struct {
	sender  TelegramSender
	chats   []int64
	limiter *rate.Limiter
	retry   RetryConfig
	logger  *zerolog.Logger
}

// NewTelegramNotifier sends to chats at no more than 20 messages per second.
func NewTelegramNotifier(sender TelegramSender, chats []int64, retry RetryConfig, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender:  sender,
		chats:   chats,
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		retry:   retry,
		logger:  logger,
	}
}

// NewBot connects to the Telegram bot API.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return bot, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, e events.Event) error {
	text := Message(e)
	var errs []error
	for _, chatID := range n.chats {
		if err := n.send(ctx, chatID, text); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Str("event", e.Type).Msg("telegram notification failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *TelegramNotifier) send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	var lastErr error
	for attempt := 0; attempt <= n.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, n.delay(attempt, lastErr)); err != nil {
				return err
			}
		}
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err := n.sender.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("after %d retries: %w", n.retry.MaxRetries, lastErr)
}

func (n *TelegramNotifier) delay(attempt int, err error) time.Duration {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	if len(n.retry.RetryDelays) == 0 {
		return 0
	}
	i := min(attempt-1, len(n.retry.RetryDelays)-1)
	return n.retry.RetryDelays[i]
}

// retryable reports whether Telegram may accept the message later.
// Client errors such as a blocked bot or unknown chat are permanent.
func retryable(err error) bool {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return tgErr.Code == 429 || tgErr.Code >= 500
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
