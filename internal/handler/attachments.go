package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/domain"
	"github.com/set-night/jewelbot/internal/middleware"
	tg "github.com/set-night/jewelbot/internal/telegram"
)

func (h *Handler) handleAttachments(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	if sess == nil {
		return
	}
	chatID := update.Message.Chat.ID

	items := sess.Staging.List()
	if len(items) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📎 No images attached.",
		})
		return
	}

	for i, a := range items {
		if i >= config.MaxPreviewsShown {
			break
		}
		h.sendPreview(ctx, chatID, i+1, a)
	}

	tg.SendPlain(ctx, b, chatID, attachmentsText(items, h.cfg.MaxAttachments), tg.Markup(tg.AttachmentsKeyboard(items)))
}

func (h *Handler) sendPreview(ctx context.Context, chatID int64, n int, a domain.PendingAttachment) {
	r, err := h.previews.Open(a.Preview)
	if err != nil {
		slog.Warn("open preview", "attachment_id", a.ID, "error", err)
		return
	}
	defer r.Close()

	caption := fmt.Sprintf("%d. %s", n, a.Name)
	if err := tg.SendPhotoFromReader(ctx, h.bot, chatID, a.Name, r, caption, nil); err != nil {
		slog.Warn("send preview", "attachment_id", a.ID, "error", err)
	}
}

func attachmentsText(items []domain.PendingAttachment, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📎 Attached %d of %d:\n", len(items), limit)
	for i, a := range items {
		fmt.Fprintf(&sb, "\n%d. %s (%s)", i+1, a.Name, humanSize(a.Size))
	}
	sb.WriteString("\n\nTap an image below to remove it.")
	return sb.String()
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func (h *Handler) handleAttachmentRemove(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	id, ok := tg.CallbackPayload(update.CallbackQuery.Data, tg.PrefixAttachmentRemove)
	if sess == nil || !ok {
		answer(ctx, b, update, "")
		return
	}

	if err := sess.Staging.Remove(id); err != nil {
		if !errors.Is(err, domain.ErrAttachmentNotFound) {
			slog.Warn("remove attachment", "attachment_id", id, "error", err)
		}
		answer(ctx, b, update, "Already removed")
	} else {
		answer(ctx, b, update, "Removed")
	}

	chatID, messageID, ok := callbackMessage(update)
	if !ok {
		return
	}
	items := sess.Staging.List()
	text := "📎 No images attached."
	if len(items) > 0 {
		text = attachmentsText(items, h.cfg.MaxAttachments)
	}
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
	if kb := tg.AttachmentsKeyboard(items); kb != nil {
		params.ReplyMarkup = kb
	}
	b.EditMessageText(ctx, params)
}

func (h *Handler) handleClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	if sess == nil {
		return
	}
	chatID := update.Message.Chat.ID

	n := sess.Staging.Len()
	if err := sess.Staging.Clear(); err != nil {
		slog.Warn("clear attachments", "chat_id", chatID, "error", err)
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("🧹 Removed %d image(s).", n),
	})
}
