package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/domain"
	tg "github.com/set-night/jewelbot/internal/telegram"
)

// mediaFile is the Telegram file behind a photo or document message.
type mediaFile struct {
	fileID   string
	name     string
	mimeType string
}

func isMedia(update *models.Update) bool {
	msg := update.Message
	return msg != nil && (len(msg.Photo) > 0 || msg.Document != nil)
}

// mediaOf picks the file to stage. Photos use their largest size; documents
// must carry an image MIME type.
func mediaOf(msg *models.Message) (mediaFile, error) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return mediaFile{
			fileID:   photo.FileID,
			name:     "photo_" + photo.FileUniqueID + ".jpg",
			mimeType: "image/jpeg",
		}, nil
	}
	if doc := msg.Document; doc != nil {
		if !domain.IsImageMime(doc.MimeType) {
			return mediaFile{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, doc.MimeType)
		}
		return mediaFile{fileID: doc.FileID, name: doc.FileName, mimeType: doc.MimeType}, nil
	}
	return mediaFile{}, domain.ErrNilFile
}

func (h *Handler) handleMedia(ctx context.Context, b *bot.Bot, msg *models.Message, sess *conversation.Session) {
	chatID := msg.Chat.ID

	mf, err := mediaOf(msg)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🖼 Only images can be attached.",
		})
		return
	}

	file, err := tg.DownloadAttachment(ctx, b, mf.fileID, mf.name, mf.mimeType, config.MaxAttachmentBytes)
	if err != nil {
		slog.Error("download attachment", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not download the image. Please try again.",
		})
		return
	}

	if _, err := sess.Staging.Stage([]domain.FileHandle{file}); err != nil {
		text := "❌ Could not attach the image."
		if errors.Is(err, domain.ErrTooManyAttachments) {
			text = fmt.Sprintf("📎 You can attach up to %d images. Send them or remove some with /attachments.", h.cfg.MaxAttachments)
		} else {
			slog.Error("stage attachment", "chat_id", chatID, "error", err)
		}
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
		return
	}

	caption := strings.TrimSpace(msg.Caption)
	if msg.MediaGroupID != "" {
		h.albums.Add(msg.MediaGroupID, caption, func(count int, caption string) {
			h.afterStaging(h.ctx, chatID, sess, caption)
		})
		return
	}
	h.afterStaging(ctx, chatID, sess, caption)
}

// afterStaging sends straight away when a caption came with the images,
// otherwise it acknowledges what is staged.
func (h *Handler) afterStaging(ctx context.Context, chatID int64, sess *conversation.Session, caption string) {
	if caption != "" {
		h.send(ctx, chatID, sess, caption)
		return
	}
	n := sess.Staging.Len()
	if n == 0 {
		return
	}
	h.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("📎 %d image(s) attached. Describe the style or /send.", n),
	})
}

// albumTracker coalesces the updates of one Telegram media group so the
// chat gets a single acknowledgement, or a single send when any item of
// the album carried a caption.
type albumTracker struct {
	window time.Duration
	after  func(time.Duration, func())

	mu     sync.Mutex
	groups map[string]*album
}

type album struct {
	count   int
	caption string
}

func newAlbumTracker(window time.Duration) *albumTracker {
	return &albumTracker{
		window: window,
		after:  func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		groups: make(map[string]*album),
	}
}

// Add records one item of group. flush runs once per group, window after
// its first item, with the item count and the first non-empty caption.
func (t *albumTracker) Add(groupID, caption string, flush func(count int, caption string)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.groups[groupID]
	if !ok {
		a = &album{}
		t.groups[groupID] = a
		t.after(t.window, func() {
			t.mu.Lock()
			delete(t.groups, groupID)
			count, caption := a.count, a.caption
			t.mu.Unlock()
			flush(count, caption)
		})
	}
	a.count++
	if a.caption == "" {
		a.caption = caption
	}
}
