package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
)

// ══════════════════════════════════════════════════════════════════════════════
// PANIC RECOVERY
// Handlers run inside recovery so that a crash in one update never reaches
// the transport. Panics become failed Results like any other error.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for handler panic recovery.
type RecoveryConfig struct {
	// EnableStackTrace enables capturing stack traces.
	EnableStackTrace bool

	// OnPanic is called when a panic is recovered.
	OnPanic func(ctx context.Context, info *PanicInfo)

	// MaxPanicsPerMinute caps how many panics per minute are fully reported
	// (stack capture, OnPanic). Excess panics are still recovered.
	MaxPanicsPerMinute int
}

// DefaultRecoveryConfig returns defaults for handler recovery.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace:   true,
		MaxPanicsPerMinute: 100,
	}
}

// PanicInfo contains information about a recovered panic.
type PanicInfo struct {
	Error      error
	PanicValue interface{}
	StackTrace string
	UpdateID   int64
	Kind       update.Kind
	Timestamp  time.Time
	Goroutine  int
}

// String returns a formatted representation of the panic info.
func (p *PanicInfo) String() string {
	var buf bytes.Buffer
	buf.WriteString("=== PANIC RECOVERED ===\n")
	buf.WriteString(fmt.Sprintf("Time:       %s\n", p.Timestamp.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Goroutine:  %d\n", p.Goroutine))
	buf.WriteString(fmt.Sprintf("UpdateID:   %d\n", p.UpdateID))
	buf.WriteString(fmt.Sprintf("Kind:       %s\n", p.Kind))
	buf.WriteString(fmt.Sprintf("Error:      %v\n", p.PanicValue))
	if p.StackTrace != "" {
		buf.WriteString("\nStack Trace:\n")
		buf.WriteString(p.StackTrace)
	}
	buf.WriteString("========================\n")
	return buf.String()
}

type recovery struct {
	config  RecoveryConfig
	limiter *panicRateLimiter
	logger  *slog.Logger
}

func newRecovery(config RecoveryConfig, logger *slog.Logger) *recovery {
	return &recovery{
		config:  config,
		limiter: newPanicRateLimiter(config.MaxPanicsPerMinute),
		logger:  logger,
	}
}

// run executes fn and converts a panic into a failed Result.
func (r *recovery) run(ctx context.Context, u update.Update, fn func() Result) (result Result) {
	defer func() {
		if v := recover(); v != nil {
			info := r.capture(ctx, u, v)
			result = failed("Recover", "", shared.WrapError("dispatch", "Recover", shared.ErrPanic, "handler panicked", info.Error))
		}
	}()
	return fn()
}

func (r *recovery) capture(ctx context.Context, u update.Update, v interface{}) *PanicInfo {
	info := &PanicInfo{
		Error:      toError(v),
		PanicValue: v,
		UpdateID:   u.ID,
		Kind:       u.Kind,
		Timestamp:  time.Now(),
	}

	if !r.limiter.allow() {
		return info
	}

	info.Goroutine = getGoroutineID()
	if r.config.EnableStackTrace {
		info.StackTrace = string(debug.Stack())
	}

	r.logger.Error("panic recovered in update handler",
		"update_id", info.UpdateID,
		"kind", info.Kind.String(),
		"panic", fmt.Sprint(v),
		"stack", info.StackTrace,
	)

	if r.config.OnPanic != nil {
		r.config.OnPanic(ctx, info)
	}
	return info
}

// toError converts a panic value to an error.
func toError(panicValue interface{}) error {
	switch v := panicValue.(type) {
	case error:
		return v
	case string:
		return fmt.Errorf("%s", v)
	default:
		return fmt.Errorf("panic: %v", v)
	}
}

// getGoroutineID returns the current goroutine ID, for panic reports only.
func getGoroutineID() int {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id int
	fmt.Sscanf(string(buf[:n]), "goroutine %d ", &id)
	return id
}

// ─────────────────────────────────────────────────────────────────────────────
// Panic rate limiter
// ─────────────────────────────────────────────────────────────────────────────

type panicRateLimiter struct {
	mu        sync.Mutex
	count     int
	maxPerMin int
	window    time.Time
}

func newPanicRateLimiter(maxPerMin int) *panicRateLimiter {
	return &panicRateLimiter{
		maxPerMin: maxPerMin,
		window:    time.Now(),
	}
}

func (p *panicRateLimiter) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Sub(p.window) > time.Minute {
		p.count = 0
		p.window = now
	}

	if p.count >= p.maxPerMin {
		return false
	}

	p.count++
	return true
}
