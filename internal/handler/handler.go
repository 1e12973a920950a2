package handler

import (
	"context"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/preview"
	"github.com/set-night/jewelbot/internal/repository"
	"github.com/set-night/jewelbot/internal/service"
	"github.com/set-night/jewelbot/internal/telegram"
)

// SelectionStore records product picks. Nil when no database is configured.
type SelectionStore interface {
	Record(ctx context.Context, ev repository.SelectionEvent) error
	TopSelections(ctx context.Context, since time.Time, limit int) ([]repository.SelectionStat, error)
	Totals(ctx context.Context, since time.Time) (repository.SelectionTotals, error)
}

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	ctx         context.Context
	bot         *bot.Bot
	cfg         *config.Config
	sessions    *service.ChatSessionService
	recommender *service.RecommenderService
	previews    *preview.DiskStore
	selections  SelectionStore
	tgLogger    *telegram.TelegramLogger
	albums      *albumTracker
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	// Ctx outlives single updates; deferred work such as album flushes and
	// transcript rendering runs on it.
	Ctx         context.Context
	Bot         *bot.Bot
	Cfg         *config.Config
	Sessions    *service.ChatSessionService
	Recommender *service.RecommenderService
	Previews    *preview.DiskStore
	Selections  SelectionStore
	TgLogger    *telegram.TelegramLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return &Handler{
		ctx:         ctx,
		bot:         deps.Bot,
		cfg:         deps.Cfg,
		sessions:    deps.Sessions,
		recommender: deps.Recommender,
		previews:    deps.Previews,
		selections:  deps.Selections,
		tgLogger:    deps.TgLogger,
		albums:      newAlbumTracker(config.MediaGroupWindow),
	}
}

// AttachPresenter renders a new session into its chat. It is installed as
// the session registry's creation hook.
func (h *Handler) AttachPresenter(chatID int64, sess *conversation.Session) func() {
	p := telegram.NewPresenter(h.ctx, h.bot, chatID, h.recommender.ResolveImage)
	return p.Attach(sess)
}
