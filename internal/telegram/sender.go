package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const MaxMessageLen = 4096

// API is the subset of *bot.Bot used to talk back to a chat.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// SendLongMessage sends a potentially long message, splitting it into parts if needed.
// Falls back to plain text if Markdown parsing fails.
func SendLongMessage(ctx context.Context, b API, chatID int64, text string, replyMarkup models.ReplyMarkup) error {
	text = FixMarkdown(text)
	parts := SplitMessage(text, MaxMessageLen)

	for i, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}
		// keyboard goes under the last part
		if i == len(parts)-1 && replyMarkup != nil {
			params.ReplyMarkup = replyMarkup
		}

		_, err := b.SendMessage(ctx, params)
		if err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "error", err)
			params.ParseMode = ""
			_, err = b.SendMessage(ctx, params)
			if err != nil {
				return fmt.Errorf("send message: %w", err)
			}
		}
	}

	return nil
}

// SendPlain sends text without any parse mode.
func SendPlain(ctx context.Context, b API, chatID int64, text string, replyMarkup models.ReplyMarkup) error {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if replyMarkup != nil {
		params.ReplyMarkup = replyMarkup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// StartTyping sends "typing..." action every 4 seconds until the returned cancel function is called.
func StartTyping(ctx context.Context, b API, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()
		b.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.SendChatAction(ctx, &bot.SendChatActionParams{
					ChatID: chatID,
					Action: models.ChatActionTyping,
				})
			}
		}
	}()
	return cancel
}

// SendPhotoURL sends a photo Telegram fetches itself.
func SendPhotoURL(ctx context.Context, b API, chatID int64, url, caption string, replyMarkup models.ReplyMarkup) error {
	params := &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileString{Data: url},
		Caption: truncate(caption, MaxCaptionLen),
	}
	if replyMarkup != nil {
		params.ReplyMarkup = replyMarkup
	}
	if _, err := b.SendPhoto(ctx, params); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// SendPhotoFromReader uploads a photo from a local source.
func SendPhotoFromReader(ctx context.Context, b API, chatID int64, filename string, r io.Reader, caption string, replyMarkup models.ReplyMarkup) error {
	params := &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: filename, Data: r},
		Caption: truncate(caption, MaxCaptionLen),
	}
	if replyMarkup != nil {
		params.ReplyMarkup = replyMarkup
	}
	if _, err := b.SendPhoto(ctx, params); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

const MaxCaptionLen = 1024

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
