package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/middleware"
)

func (h *Handler) handleEnd(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || middleware.GetSession(ctx) == nil {
		return
	}
	chatID := update.Message.Chat.ID

	h.sessions.Reset(chatID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🔄 Conversation reset.\n\n" + conversation.Greeting,
	})
}
