package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/middleware"
)

const helpText = "📋 *Commands:*\n" +
	"/send — Send attached images without a description\n" +
	"/attachments — Review attached images\n" +
	"/clear — Remove all attached images\n" +
	"/cart — Your selected pieces\n" +
	"/servercart — Selection stored on the server\n" +
	"/end — Start over\n\n" +
	"Send photos and/or a text description to get recommendations."

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if middleware.GetSession(ctx) == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "👋 I work in private chats. Message me directly to get recommendations.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      "👋 " + conversation.Greeting + "\n\n" + helpText,
		ParseMode: models.ParseModeMarkdownV1,
	})
}
