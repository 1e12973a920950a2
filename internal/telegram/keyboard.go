package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/domain"
)

// Callback data prefixes.
const (
	PrefixSelect           = "sel_"
	PrefixAttachmentRemove = "att_rm_"
	PrefixCartRemove       = "cart_rm_"
	CallbackCartClear      = "cart_clear"
)

// Telegram rejects callback data longer than this many bytes.
const maxCallbackData = 64

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// URLButton creates a URL inline keyboard button.
func URLButton(text, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text: text,
		URL:  url,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

func callbackData(prefix, payload string) (string, bool) {
	data := prefix + payload
	return data, payload != "" && len(data) <= maxCallbackData
}

// CallbackPayload strips prefix from data.
func CallbackPayload(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}
	payload := strings.TrimPrefix(data, prefix)
	return payload, payload != ""
}

// ProductKeyboard returns the Select button for a product card, plus an
// image link when the product has a web image. Nil when nothing fits.
func ProductKeyboard(productID, imageURL string) *models.InlineKeyboardMarkup {
	var row []models.InlineKeyboardButton
	if data, ok := callbackData(PrefixSelect, productID); ok {
		row = append(row, InlineButton("✅ Select", data))
	}
	if strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://") {
		row = append(row, URLButton("🖼 Image", imageURL))
	}
	if len(row) == 0 {
		return nil
	}
	return InlineKeyboard(row)
}

// AttachmentsKeyboard lists staged files with one remove button each.
func AttachmentsKeyboard(items []domain.PendingAttachment) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for i, a := range items {
		data, ok := callbackData(PrefixAttachmentRemove, a.ID)
		if !ok {
			continue
		}
		rows = append(rows, ButtonRow(InlineButton(fmt.Sprintf("❌ %d. %s", i+1, a.Name), data)))
	}
	if len(rows) == 0 {
		return nil
	}
	return InlineKeyboard(rows...)
}

// CartKeyboard has a remove button per item and a clear-all row.
func CartKeyboard(items []domain.CartItem) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, item := range items {
		data, ok := callbackData(PrefixCartRemove, item.ProductRef)
		if !ok {
			continue
		}
		rows = append(rows, ButtonRow(InlineButton("❌ "+item.Name, data)))
	}
	if len(items) > 0 {
		rows = append(rows, ButtonRow(InlineButton("🗑 Clear cart", CallbackCartClear)))
	}
	if len(rows) == 0 {
		return nil
	}
	return InlineKeyboard(rows...)
}

// Markup converts kb to a ReplyMarkup, keeping a nil keyboard a nil
// interface so no empty markup is sent.
func Markup(kb *models.InlineKeyboardMarkup) models.ReplyMarkup {
	if kb == nil {
		return nil
	}
	return kb
}
