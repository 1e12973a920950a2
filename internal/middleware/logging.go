package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Logging returns middleware that logs update processing time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			src := sourceOf(update)

			next(ctx, b, update)

			slog.Debug("update processed",
				"type", src.kind,
				"chat_id", src.chatID,
				"user_id", src.userID,
				"duration", time.Since(start),
			)
		}
	}
}

type updateSource struct {
	kind    string
	chatID  int64
	userID  int64
	private bool
}

func sourceOf(update *models.Update) updateSource {
	src := updateSource{kind: "unknown"}
	switch {
	case update.Message != nil:
		src.kind = "message"
		src.chatID = update.Message.Chat.ID
		src.private = update.Message.Chat.Type == models.ChatTypePrivate
		if update.Message.From != nil {
			src.userID = update.Message.From.ID
		}
	case update.CallbackQuery != nil:
		src.kind = "callback_query"
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			src.chatID = msg.Chat.ID
			src.private = msg.Chat.Type == models.ChatTypePrivate
		}
		src.userID = update.CallbackQuery.From.ID
	}
	return src
}
