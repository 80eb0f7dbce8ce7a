package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Dispatcher.
type Config struct {
	// Router resolves message text. Defaults to the base menu.
	Router *menu.Router

	// PhotoAsset is the asset name opened for the photo response.
	PhotoAsset string

	// InlineDelay is the latency simulated before the inline menu is sent.
	InlineDelay time.Duration

	// Observers receive every Outcome.
	Observers []Observer

	// Recovery configures handler panic recovery.
	Recovery RecoveryConfig

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultConfig returns the default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Router:      menu.NewRouter(menu.Options{}),
		PhotoAsset:  "tux.png",
		InlineDelay: 500 * time.Millisecond,
		Recovery:    DefaultRecoveryConfig(),
		Logger:      slog.Default(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// ══════════════════════════════════════════════════════════════════════════════

// Dispatcher classifies updates and runs the matching handler. It holds no
// per-update state and is safe for concurrent use.
type Dispatcher struct {
	sender    Sender
	assets    AssetOpener
	router    *menu.Router
	photo     string
	delay     time.Duration
	observers []Observer
	recovery  *recovery
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. Zero-valued Config fields fall back to
// DefaultConfig.
func NewDispatcher(sender Sender, assets AssetOpener, config Config) *Dispatcher {
	defaults := DefaultConfig()
	if config.Router == nil {
		config.Router = defaults.Router
	}
	if config.PhotoAsset == "" {
		config.PhotoAsset = defaults.PhotoAsset
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.Recovery.MaxPanicsPerMinute <= 0 {
		config.Recovery.MaxPanicsPerMinute = defaults.Recovery.MaxPanicsPerMinute
	}

	return &Dispatcher{
		sender:    sender,
		assets:    assets,
		router:    config.Router,
		photo:     config.PhotoAsset,
		delay:     config.InlineDelay,
		observers: config.Observers,
		recovery:  newRecovery(config.Recovery, config.Logger),
		logger:    config.Logger,
		now:       time.Now,
	}
}

// Dispatch handles one update. It never returns an error and never panics:
// every failure is converted to an *Error, logged as HandleError, reported
// to observers and dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, u update.Update) {
	start := d.now()

	d.logger.Info("Receive message type", "type", u.TypeName(), "update_id", u.ID)

	result := d.recovery.run(ctx, u, func() Result {
		return d.handle(ctx, u)
	})

	outcome := Outcome{
		UpdateID: u.ID,
		Kind:     u.Kind,
		ChatID:   u.ChatID(),
		Trigger:  result.Trigger,
		Status:   result.Status,
		At:       start,
		Duration: d.now().Sub(start),
	}
	if result.Sent != nil {
		outcome.SentID = result.Sent.ID
	}

	if result.Status == StatusFailed {
		dErr := NewError(result.Op, result.Err)
		if dErr == nil {
			dErr = &Error{Op: result.Op, Message: "handler failed without error"}
		}
		outcome.ErrorCode = dErr.Code
		outcome.Error = dErr.Error()
		d.logger.Error("HandleError",
			"error_message", dErr.Error(),
			"op", dErr.Op,
			"update_id", u.ID,
			"kind", u.Kind.String(),
		)
	}

	d.notify(ctx, outcome)
}

// handle maps the update variant to its handler.
func (d *Dispatcher) handle(ctx context.Context, u update.Update) Result {
	if err := u.Validate(); err != nil {
		return failed("Validate", "", shared.WrapError("dispatch", "Validate", shared.ErrMalformedUpdate, "malformed update", err))
	}

	switch u.Kind {
	case update.KindMessage, update.KindEditedMessage:
		return d.handleMessage(ctx, u.Message)
	case update.KindCallbackQuery:
		return d.handleCallbackQuery(ctx, u.CallbackQuery)
	case update.KindInlineQuery:
		return d.handleInlineQuery(ctx, u.SenderID, u.InlineQuery)
	case update.KindChosenInlineResult:
		return d.handleChosenInlineResult(u.SenderID, u.ChosenInlineResult)
	default:
		d.logger.Info("Unknown update type", "type", u.TypeName())
		return ignored("Unknown")
	}
}

func (d *Dispatcher) notify(ctx context.Context, outcome Outcome) {
	for _, o := range d.observers {
		func() {
			defer func() {
				if v := recover(); v != nil {
					d.logger.Error("observer panicked", "panic", v)
				}
			}()
			o.Observe(ctx, outcome)
		}()
	}
}
