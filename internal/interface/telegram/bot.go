// Package telegram runs the bot: it registers or removes the webhook, feeds
// long-polled updates to the dispatcher and manages the lifecycle of the
// HTTP server.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
)

// Update receiving modes.
const (
	ModeWebhook = "webhook"
	ModePolling = "polling"
)

// DefaultAllowedUpdates are the update types the dispatcher handles.
var DefaultAllowedUpdates = []string{
	"message",
	"edited_message",
	"callback_query",
	"inline_query",
	"chosen_inline_result",
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the bot runner.
type BotConfig struct {
	// Mode is the update receiving mode: "polling" or "webhook".
	Mode string

	// WebhookURL is the public URL registered with setWebhook (webhook mode).
	WebhookURL string

	// AllowedUpdates specifies which update types to receive.
	AllowedUpdates []string

	// DeleteWebhookOnShutdown removes the webhook when the runner stops.
	DeleteWebhookOnShutdown bool

	// DropPendingUpdates is passed to deleteWebhook.
	DropPendingUpdates bool

	// ShutdownTimeout bounds HTTP shutdown and webhook removal.
	ShutdownTimeout time.Duration

	Logger *slog.Logger
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		Mode:                    ModeWebhook,
		AllowedUpdates:          DefaultAllowedUpdates,
		DeleteWebhookOnShutdown: true,
		ShutdownTimeout:         15 * time.Second,
		Logger:                  slog.Default(),
	}
}

// Validate checks the configuration for the selected mode.
func (c BotConfig) Validate() error {
	switch c.Mode {
	case ModeWebhook:
		if c.WebhookURL == "" {
			return errors.New("webhook URL is required for webhook mode")
		}
	case ModePolling:
	default:
		return fmt.Errorf("unknown mode %q (want %q or %q)", c.Mode, ModeWebhook, ModePolling)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Platform is the Bot API surface the runner drives.
type Platform interface {
	SetWebhook(ctx context.Context, url string, allowedUpdates []string) error
	DeleteWebhook(ctx context.Context, dropPending bool) error
	// Start long-polls until ctx is cancelled.
	Start(ctx context.Context)
}

// Server is the HTTP server serving the webhook and probes.
type Server interface {
	StartAsync() <-chan error
	Shutdown(ctx context.Context) error
}

// Dispatcher handles one update.
type Dispatcher interface {
	Dispatch(ctx context.Context, u update.Update)
}

// Claimer reports whether an update id is seen for the first time.
type Claimer interface {
	Claim(ctx context.Context, updateID int64) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot owns the update receiving lifecycle.
type Bot struct {
	config     BotConfig
	platform   Platform
	server     Server
	dispatcher Dispatcher
	dedup      Claimer
	logger     *slog.Logger

	runningMu sync.Mutex
	running   bool
}

// NewBot creates a runner. server may be nil in polling mode; dedup may be nil.
func NewBot(config BotConfig, platform Platform, server Server, dispatcher Dispatcher, dedup Claimer) (*Bot, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if len(config.AllowedUpdates) == 0 {
		config.AllowedUpdates = DefaultAllowedUpdates
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultBotConfig().ShutdownTimeout
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if platform == nil || dispatcher == nil {
		return nil, errors.New("platform and dispatcher are required")
	}
	if config.Mode == ModeWebhook && server == nil {
		return nil, errors.New("webhook mode requires an HTTP server")
	}

	return &Bot{
		config:     config,
		platform:   platform,
		server:     server,
		dispatcher: dispatcher,
		dedup:      dedup,
		logger:     config.Logger,
	}, nil
}

// HandleUpdate is the polling entry point: it drops re-deliveries and
// dispatches everything else.
func (b *Bot) HandleUpdate(ctx context.Context, u update.Update) {
	if b.dedup != nil {
		first, err := b.dedup.Claim(ctx, u.ID)
		if err != nil {
			b.logger.Warn("update dedup unavailable", "update_id", u.ID, "error", err)
		}
		if !first {
			return
		}
	}
	b.dispatcher.Dispatch(ctx, u)
}

// Run receives updates until ctx is cancelled or the HTTP server fails.
func (b *Bot) Run(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot already running")
	}
	b.running = true
	b.runningMu.Unlock()

	defer func() {
		b.runningMu.Lock()
		b.running = false
		b.runningMu.Unlock()
	}()

	b.logger.Info("starting bot", "mode", b.config.Mode)

	if b.config.Mode == ModePolling {
		return b.runPolling(ctx)
	}
	return b.runWebhook(ctx)
}

func (b *Bot) runWebhook(ctx context.Context) error {
	if err := b.platform.SetWebhook(ctx, b.config.WebhookURL, b.config.AllowedUpdates); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	errCh := b.server.StartAsync()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.config.ShutdownTimeout)
	defer cancel()

	if err := b.server.Shutdown(shutdownCtx); err != nil {
		b.logger.Error("http server shutdown failed", "error", err)
	}

	if b.config.DeleteWebhookOnShutdown {
		if err := b.platform.DeleteWebhook(shutdownCtx, b.config.DropPendingUpdates); err != nil {
			b.logger.Error("failed to delete webhook", "error", err)
		}
	}

	b.logger.Info("bot stopped", "mode", b.config.Mode)
	return runErr
}

func (b *Bot) runPolling(ctx context.Context) error {
	// getUpdates is rejected while a webhook is registered.
	if err := b.platform.DeleteWebhook(ctx, b.config.DropPendingUpdates); err != nil {
		return fmt.Errorf("failed to delete webhook before polling: %w", err)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var errCh <-chan error
	if b.server != nil {
		errCh = b.server.StartAsync()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.platform.Start(pollCtx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			runErr = err
		}
	}
	cancel()
	<-done

	if b.server != nil {
		shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), b.config.ShutdownTimeout)
		defer stop()
		if err := b.server.Shutdown(shutdownCtx); err != nil {
			b.logger.Error("http server shutdown failed", "error", err)
		}
	}

	b.logger.Info("bot stopped", "mode", b.config.Mode)
	return runErr
}
