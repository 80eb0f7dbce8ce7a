// Package dispatch routes inbound updates to their canned-response handlers
// and owns the single error boundary around them.
package dispatch

import (
	"context"
	"io"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
)

// ══════════════════════════════════════════════════════════════════════════════
// PORTS
// Implemented by infrastructure; the dispatcher depends only on these.
// ══════════════════════════════════════════════════════════════════════════════

// SentMessage identifies a message the platform accepted.
type SentMessage struct {
	ID     int
	ChatID int64
}

// InlineArticle is a text article offered as an inline query result.
type InlineArticle struct {
	ID          string
	Title       string
	MessageText string
}

// Sender is the outbound Bot API facade. Implementations must be safe for
// concurrent use; failures reported by the platform should be returned as
// *shared.APIError.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, markup menu.Markup) (SentMessage, error)
	SendPhoto(ctx context.Context, chatID int64, filename string, photo io.Reader, caption string) (SentMessage, error)
	SendChatAction(ctx context.Context, chatID int64, action menu.ChatAction) error
	AnswerCallbackQuery(ctx context.Context, queryID, text string) error
	AnswerInlineQuery(ctx context.Context, queryID string, results []InlineArticle, personal bool, cacheTime int) error
}

// AssetOpener opens named static assets. A missing asset should satisfy
// errors.Is(err, shared.ErrAssetNotFound).
type AssetOpener interface {
	Open(name string) (io.ReadCloser, error)
}

// Observer receives the outcome of every dispatched update. Observe must not
// block for long; it runs on the dispatching goroutine.
type Observer interface {
	Observe(ctx context.Context, outcome Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, outcome Outcome)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, outcome Outcome) {
	f(ctx, outcome)
}
