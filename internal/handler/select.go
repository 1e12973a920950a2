package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/domain"
	"github.com/set-night/jewelbot/internal/middleware"
	"github.com/set-night/jewelbot/internal/repository"
	tg "github.com/set-night/jewelbot/internal/telegram"
)

func (h *Handler) handleSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	sess := middleware.GetSession(ctx)
	id, ok := tg.CallbackPayload(update.CallbackQuery.Data, tg.PrefixSelect)
	if sess == nil || !ok {
		answer(ctx, b, update, "")
		return
	}

	product, err := sess.FindProduct(id)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			slog.Error("find product", "product_id", id, "error", err)
		}
		answer(ctx, b, update, "This piece is no longer in the conversation.")
		return
	}

	if !sess.Sequencer.SelectProduct(product) {
		answer(ctx, b, update, "Already in your selection")
		return
	}
	answer(ctx, b, update, "Added to your selection")

	chatID, _, _ := callbackMessage(update)
	from := update.CallbackQuery.From
	h.tgLogger.LogSelection(chatID, from.Username, product)
	go h.recordSelection(repository.SelectionEvent{ChatID: chatID, Username: from.Username, Product: product})
}

// recordSelection stores the pick and mirrors it to the service cart when
// enabled. Failures only get logged; the local cart is authoritative.
func (h *Handler) recordSelection(ev repository.SelectionEvent) {
	ctx, cancel := context.WithTimeout(h.ctx, config.SideRequestTimeout)
	defer cancel()

	if h.selections != nil {
		if err := h.selections.Record(ctx, ev); err != nil {
			slog.Error("record selection", "product_id", ev.Product.ID, "error", err)
		}
	}

	if !h.cfg.SyncServerCart {
		return
	}
	res, err := h.recommender.Select(ctx, ev.Product.ID)
	if err != nil {
		slog.Error("sync selection", "product_id", ev.Product.ID, "error", err)
		h.tgLogger.LogError(err, fmt.Sprintf("select %s, chat %d", ev.Product.ID, ev.ChatID))
		return
	}
	if !res.OK {
		slog.Warn("service rejected selection", "product_id", ev.Product.ID, "message", res.Message)
	}
}
