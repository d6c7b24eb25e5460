package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maheshrc27/postbridge/internal/models"
	"golang.org/x/time/rate"
)

const workflowName = "threads_post"

// Notifier delivers best-effort status messages to the operator channel.
// Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, level slog.Level, msg string)
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NotifyPrefix identifies the account and workflow in a shared channel.
func NotifyPrefix(accountName string) string {
	return fmt.Sprintf("[%s] [%s_%s]\n", accountName, accountName, workflowName)
}

// NewNotifier returns a Telegram notifier when the account has a bot token
// and chat id, and a log-only notifier otherwise.
func NewNotifier(acc models.Account, client *http.Client, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("account", acc.Name)

	if acc.TelegramBotToken == "" || acc.TelegramChatID == "" {
		logger.Warn("Telegram bot is not configured. Messages will only be logged.")
		return NewLogNotifier(acc.Name, logger)
	}

	if client == nil {
		client = http.DefaultClient
	}
	bot, err := tgbotapi.NewBotAPIWithClient(acc.TelegramBotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		logger.Warn("Telegram bot unavailable, falling back to logs", "error", err)
		return NewLogNotifier(acc.Name, logger)
	}

	return NewTelegramNotifier(acc.Name, acc.TelegramChatID, bot, logger)
}

type logNotifier struct {
	prefix string
	logger *slog.Logger
}

func NewLogNotifier(accountName string, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &logNotifier{prefix: NotifyPrefix(accountName), logger: logger}
}

func (n *logNotifier) Notify(ctx context.Context, level slog.Level, msg string) {
	n.logger.Log(ctx, level, n.prefix+msg)
}

type telegramNotifier struct {
	prefix  string
	chatID  string
	sender  telegramSender
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewTelegramNotifier(accountName, chatID string, sender telegramSender, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &telegramNotifier{
		prefix: NotifyPrefix(accountName),
		chatID: chatID,
		sender: sender,
		// Telegram allows roughly one message per second per chat.
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger,
	}
}

func (n *telegramNotifier) message(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(n.chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(n.chatID, text)
}

func (n *telegramNotifier) Notify(ctx context.Context, level slog.Level, msg string) {
	full := n.prefix + msg
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Telegram send error", "error", fmt.Errorf("%w: %v", ErrNotify, r))
		}
	}()

	n.logger.Log(ctx, level, full)

	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.Error("Telegram send error", "error", fmt.Errorf("%w: %w", ErrNotify, err))
		return
	}
	if _, err := n.sender.Send(n.message(full)); err != nil {
		n.logger.Error("Telegram send error", "error", fmt.Errorf("%w: %w", ErrNotify, err))
	}
}
