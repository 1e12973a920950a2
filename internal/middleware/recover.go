package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrorReporter forwards handler failures to operators.
type ErrorReporter interface {
	LogError(err error, context string)
}

type ErrorReporterFunc func(err error, context string)

func (f ErrorReporterFunc) LogError(err error, context string) { f(err, context) }

// Recover returns middleware that recovers from panics. Recovered panics
// are also passed to reporter when it is non-nil.
func Recover(reporter ErrorReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				src := sourceOf(update)
				slog.Error("panic recovered in handler",
					"panic", r,
					"type", src.kind,
					"chat_id", src.chatID,
					"stack", string(debug.Stack()),
				)
				if reporter != nil {
					reporter.LogError(fmt.Errorf("panic: %v", r), fmt.Sprintf("%s in chat %d", src.kind, src.chatID))
				}
			}()
			next(ctx, b, update)
		}
	}
}
