package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/repository"
)

const statPeriod = 7 * 24 * time.Hour

func (h *Handler) handleStat(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if !h.cfg.IsAdmin(update.Message.From.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	var sb strings.Builder
	sb.WriteString("📊 Statistics\n\n")
	fmt.Fprintf(&sb, "Active conversations: %d\n", h.sessions.Count())
	fmt.Fprintf(&sb, "Staged previews on disk: %d\n", h.previews.Live())

	if h.selections == nil {
		sb.WriteString("\nSelection analytics are off (no DATABASE_URL).")
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sb.String()})
		return
	}

	since := time.Now().Add(-statPeriod)
	totals, err := h.selections.Totals(ctx, since)
	if err != nil {
		slog.Error("selection totals", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Failed to load statistics."})
		return
	}
	top, err := h.selections.TopSelections(ctx, since, config.StatTopLimit)
	if err != nil {
		slog.Error("top selections", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Failed to load statistics."})
		return
	}

	sb.WriteString(formatSelectionStats(totals, top))
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sb.String()})
}

func formatSelectionStats(totals repository.SelectionTotals, top []repository.SelectionStat) string {
	var sb strings.Builder
	sb.WriteString("\nLast 7 days:\n")
	fmt.Fprintf(&sb, "Selections: %d from %d chats\n", totals.Picks, totals.Chats)
	fmt.Fprintf(&sb, "Selected value: %s\n", totals.Value.StringFixed(2))
	if len(top) == 0 {
		return sb.String()
	}
	sb.WriteString("\nTop pieces:\n")
	for i, s := range top {
		fmt.Fprintf(&sb, "%d. %s — %d\n", i+1, s.ProductName, s.Picks)
	}
	return sb.String()
}
