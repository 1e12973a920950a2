package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Limiter counts messages per chat in fixed one-minute windows.
type Limiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	windows map[int64]window
}

type window struct {
	start time.Time
	count int
}

func NewLimiter(perMinute int) *Limiter {
	return &Limiter{
		limit:   perMinute,
		now:     time.Now,
		windows: make(map[int64]window),
	}
}

// Allow records one message for chatID and reports whether it is within
// the limit. A non-positive limit disables limiting.
func (l *Limiter) Allow(chatID int64) bool {
	if l.limit <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[chatID]
	if now.Sub(w.start) >= time.Minute {
		w = window{start: now}
	}
	w.count++
	l.windows[chatID] = w
	return w.count <= l.limit
}

// Prune forgets windows that ended before now.
func (l *Limiter) Prune() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, w := range l.windows {
		if now.Sub(w.start) >= time.Minute {
			delete(l.windows, id)
		}
	}
}

// RateLimit returns middleware that enforces per-minute rate limits.
func RateLimit(limiter *Limiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			if !limiter.Allow(chatID) {
				slog.Debug("rate limited", "chat_id", chatID, "limit", limiter.limit)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Too many messages. Please wait a moment.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
