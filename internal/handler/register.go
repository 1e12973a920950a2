package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	tg "github.com/set-night/jewelbot/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/send", bot.MatchTypePrefix, h.handleSend)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/attachments", bot.MatchTypePrefix, h.handleAttachments)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clear", bot.MatchTypePrefix, h.handleClear)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cart", bot.MatchTypeExact, h.handleCart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/servercart", bot.MatchTypePrefix, h.handleServerCart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/end", bot.MatchTypePrefix, h.handleEnd)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stat", bot.MatchTypePrefix, h.handleStat)

	// Product callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.PrefixSelect, bot.MatchTypePrefix, h.handleSelect)

	// Attachment callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.PrefixAttachmentRemove, bot.MatchTypePrefix, h.handleAttachmentRemove)

	// Cart callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.PrefixCartRemove, bot.MatchTypePrefix, h.handleCartRemove)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackCartClear, bot.MatchTypeExact, h.handleCartClear)

	// Everything else: photos, image documents and free text. An empty
	// prefix also matches captioned media, whose Text is empty.
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.handleMessage)
}

func answer(ctx context.Context, b *bot.Bot, update *models.Update, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	})
}

// callbackMessage returns the chat and message a callback was pressed on.
func callbackMessage(update *models.Update) (chatID int64, messageID int, ok bool) {
	msg := update.CallbackQuery.Message.Message
	if msg == nil {
		return 0, 0, false
	}
	return msg.Chat.ID, msg.ID, true
}
