package middleware

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/service"
)

type ctxKey string

const SessionKey ctxKey = "session"

// GetSession extracts the chat's conversation from context.
func GetSession(ctx context.Context) *conversation.Session {
	s, ok := ctx.Value(SessionKey).(*conversation.Session)
	if !ok {
		return nil
	}
	return s
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *conversation.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionLoader returns middleware that loads the private chat's
// conversation into context. Group chats get no session.
func SessionLoader(sessions *service.ChatSessionService) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			src := sourceOf(update)
			if src.private && src.chatID != 0 {
				ctx = WithSession(ctx, sessions.FindOrCreate(src.chatID))
			}
			next(ctx, b, update)
		}
	}
}
