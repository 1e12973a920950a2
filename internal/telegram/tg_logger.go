package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/domain"
)

type TelegramLogger struct {
	bot API
	cfg *config.Config
}

func NewTelegramLogger(b API, cfg *config.Config) *TelegramLogger {
	return &TelegramLogger{bot: b, cfg: cfg}
}

type LogType string

const (
	LogTypeError     LogType = "error"
	LogTypeSelection LogType = "selection"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.getTopicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		MessageThreadID: topicID,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ Error\n\nContext: %s\nError: %s\nTime: %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogSelection(chatID int64, username string, p domain.Product) {
	msg := fmt.Sprintf("💍 Selection\n\nChat: %d\nUser: @%s\nProduct: %s (%s)",
		chatID, username, p.Name, p.ID)
	if p.Price.Valid {
		msg += "\nPrice: " + p.Price.Decimal.StringFixed(2)
	}
	l.Log(LogTypeSelection, msg)
}

func (l *TelegramLogger) getTopicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeSelection:
		return l.cfg.LogTopicSelection
	default:
		return 0
	}
}
