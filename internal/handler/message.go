package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/domain"
	"github.com/set-night/jewelbot/internal/middleware"
)

// handleMessage routes non-command messages in private chats.
func (h *Handler) handleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	// Skip commands
	if strings.HasPrefix(msg.Text, "/") {
		return
	}
	sess := middleware.GetSession(ctx)
	if sess == nil {
		return
	}

	if isMedia(update) {
		h.handleMedia(ctx, b, msg, sess)
		return
	}
	if msg.Text == "" {
		return
	}
	h.send(ctx, msg.Chat.ID, sess, msg.Text)
}

func (h *Handler) handleSend(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	if sess == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if sess.Staging.Len() == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📎 Nothing attached. Send photos or describe the style you are after.",
		})
		return
	}
	h.send(ctx, chatID, sess, "")
}

// send runs one request cycle. The transcript, including any failure
// notice, reaches the chat through the session's presenter.
func (h *Handler) send(ctx context.Context, chatID int64, sess *conversation.Session, text string) {
	err := sess.Sequencer.Send(ctx, text)
	switch {
	case err == nil, errors.Is(err, domain.ErrNothingToSend):
	case errors.Is(err, domain.ErrSendInFlight):
		h.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Still working on your previous request.",
		})
	default:
		slog.Error("recommendation request failed", "chat_id", chatID, "error", err)
		h.tgLogger.LogError(err, fmt.Sprintf("send, chat %d", chatID))
	}
}
