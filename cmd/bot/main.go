package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"

	jewelbot "github.com/set-night/jewelbot"
	"github.com/set-night/jewelbot/internal/config"
	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/handler"
	"github.com/set-night/jewelbot/internal/middleware"
	"github.com/set-night/jewelbot/internal/preview"
	"github.com/set-night/jewelbot/internal/repository"
	"github.com/set-night/jewelbot/internal/service"
	"github.com/set-night/jewelbot/internal/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Selection analytics are optional
	var selections handler.SelectionStore
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		migrationsFS, err := fs.Sub(jewelbot.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		selections = repository.NewSelectionRepository(pool)
	} else {
		slog.Info("DATABASE_URL not set, selection analytics disabled")
	}

	// Preview files left over from a previous run belong to no session
	previews, err := preview.NewDiskStore(cfg.PreviewDir)
	if err != nil {
		slog.Error("failed to open preview store", "error", err)
		os.Exit(1)
	}
	if n, err := previews.Sweep(); err != nil {
		slog.Warn("sweep previews", "error", err)
	} else if n > 0 {
		slog.Info("removed stale previews", "count", n)
	}

	// Initialize services
	recommender := service.NewRecommenderService(cfg.Recommender.URL, cfg.Recommender.Timeout)
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := recommender.Health(healthCtx); err != nil {
		slog.Warn("recommendation service unreachable at startup", "url", recommender.BaseURL(), "error", err)
	}
	cancel()

	sessions := service.NewChatSessionService(conversation.SessionDeps{
		Previews:       previews,
		Remote:         recommender,
		MaxAttachments: cfg.MaxAttachments,
		Sequencer: conversation.SequencerConfig{
			ClientName:     cfg.Recommender.ClientName,
			UploadNotes:    cfg.Recommender.UploadNotes,
			RequestTimeout: cfg.Recommender.Timeout,
			AckDelay:       cfg.AckDelay,
		},
	})
	defer sessions.CloseAll()

	limiter := middleware.NewLimiter(cfg.RateLimitPerMinute)

	// The telegram logger needs the bot, which needs the middlewares first
	var tgLogger *telegram.TelegramLogger
	reporter := middleware.ErrorReporterFunc(func(err error, where string) {
		tgLogger.LogError(err, where)
	})

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(reporter),
			middleware.Logging(),
			middleware.RateLimit(limiter),
			middleware.SessionLoader(sessions),
		),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("drop pending updates", "error", err)
		}
	}

	// Initialize telegram logger
	tgLogger = telegram.NewTelegramLogger(b, cfg)

	// Initialize handler
	h := handler.New(handler.Deps{
		Ctx:         ctx,
		Bot:         b,
		Cfg:         cfg,
		Sessions:    sessions,
		Recommender: recommender,
		Previews:    previews,
		Selections:  selections,
		TgLogger:    tgLogger,
	})
	sessions.OnCreate(h.AttachPresenter)

	// Register all handlers
	h.Register()

	// Start idle session cleanup goroutine
	go func() {
		ticker := time.NewTicker(config.SessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.CleanupIdle(cfg.SessionIdleTimeout); n > 0 {
					slog.Info("closed idle sessions", "count", n)
				}
				limiter.Prune()
			}
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
