package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/middleware"
	tg "github.com/set-night/jewelbot/internal/telegram"
)

func cartView(cart *conversation.SelectionCart) (string, *models.InlineKeyboardMarkup) {
	items := cart.List()
	return tg.CartSummary(items, cart.Total().StringFixed(2)), tg.CartKeyboard(items)
}

func (h *Handler) handleCart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	if sess == nil {
		return
	}

	text, kb := cartView(sess.Cart)
	tg.SendPlain(ctx, b, update.Message.Chat.ID, text, tg.Markup(kb))
}

func (h *Handler) handleCartRemove(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	ref, ok := tg.CallbackPayload(update.CallbackQuery.Data, tg.PrefixCartRemove)
	if sess == nil || !ok {
		answer(ctx, b, update, "")
		return
	}

	removed := false
	for _, item := range sess.Cart.List() {
		if item.ProductRef == ref {
			removed = sess.Cart.Remove(item.Key)
			break
		}
	}
	if removed {
		answer(ctx, b, update, "Removed from selection")
	} else {
		answer(ctx, b, update, "Already removed")
	}
	h.refreshCart(ctx, b, update, sess.Cart)
}

func (h *Handler) handleCartClear(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	if sess == nil {
		answer(ctx, b, update, "")
		return
	}

	sess.Cart.Clear()
	answer(ctx, b, update, "Selection cleared")
	h.refreshCart(ctx, b, update, sess.Cart)
}

func (h *Handler) refreshCart(ctx context.Context, b *bot.Bot, update *models.Update, cart *conversation.SelectionCart) {
	chatID, messageID, ok := callbackMessage(update)
	if !ok {
		return
	}
	text, kb := cartView(cart)
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	b.EditMessageText(ctx, params)
}

// handleServerCart shows the selection the recommendation service holds,
// which only fills when SYNC_SERVER_CART is on.
func (h *Handler) handleServerCart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || middleware.GetSession(ctx) == nil {
		return
	}
	chatID := update.Message.Chat.ID

	reqCtx, cancel := context.WithTimeout(ctx, config.SideRequestTimeout)
	defer cancel()

	products, err := h.recommender.Cart(reqCtx)
	if err != nil {
		slog.Error("fetch server cart", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not reach the recommendation service.",
		})
		return
	}

	if len(products) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "🗄 The server-side selection is empty."})
		return
	}
	var sb strings.Builder
	sb.WriteString("🗄 Server-side selection:\n")
	for i, p := range products {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, p.Name)
		if p.Price.Valid {
			fmt.Fprintf(&sb, " (%s)", p.Price.Decimal.StringFixed(2))
		}
	}
	tg.SendPlain(ctx, b, chatID, sb.String(), nil)
}
