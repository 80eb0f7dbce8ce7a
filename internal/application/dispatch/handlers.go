package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
)

// Inline query answer served for every inline query.
var inlineArticles = []InlineArticle{
	{ID: "3", Title: "Bot", MessageText: "hello"},
}

// ─────────────────────────────────────────────────────────────────────────────
// Messages
// ─────────────────────────────────────────────────────────────────────────────

func (d *Dispatcher) handleMessage(ctx context.Context, msg *update.Message) Result {
	if msg.Content != update.ContentText {
		d.logger.Info("non-text message dropped", "content", msg.Content.String(), "chat_id", msg.ChatID)
		return ignored("Message")
	}

	resp := d.router.Resolve(msg.Text)
	trigger := resp.Trigger.String()

	sent, err := d.respond(ctx, msg.ChatID, resp)
	if err != nil {
		return failed("Message", trigger, err)
	}

	d.logger.Info("The message was sent with id", "message_id", sent.ID, "trigger", trigger)
	return handled("Message", trigger, &sent)
}

// respond performs the outbound calls for a canned response. For photos the
// asset is opened first so a missing file produces no outbound call at all.
func (d *Dispatcher) respond(ctx context.Context, chatID int64, resp menu.Response) (SentMessage, error) {
	if resp.IsPhoto() {
		return d.sendPhoto(ctx, chatID, resp)
	}

	if resp.Action != menu.ChatActionNone {
		if err := d.sender.SendChatAction(ctx, chatID, resp.Action); err != nil {
			return SentMessage{}, fmt.Errorf("send chat action: %w", err)
		}
	}

	if resp.Delayed && d.delay > 0 {
		if err := sleep(ctx, d.delay); err != nil {
			return SentMessage{}, err
		}
	}

	sent, err := d.sender.SendText(ctx, chatID, resp.Text, resp.Markup)
	if err != nil {
		return SentMessage{}, fmt.Errorf("send text: %w", err)
	}
	return sent, nil
}

func (d *Dispatcher) sendPhoto(ctx context.Context, chatID int64, resp menu.Response) (SentMessage, error) {
	if d.assets == nil {
		return SentMessage{}, shared.NewDomainError("dispatch", "SendPhoto", shared.ErrAssetNotFound, "no asset store configured")
	}

	file, err := d.assets.Open(d.photo)
	if err != nil {
		return SentMessage{}, fmt.Errorf("open photo %q: %w", d.photo, err)
	}
	defer file.Close()

	if resp.Action != menu.ChatActionNone {
		if err := d.sender.SendChatAction(ctx, chatID, resp.Action); err != nil {
			return SentMessage{}, fmt.Errorf("send chat action: %w", err)
		}
	}

	sent, err := d.sender.SendPhoto(ctx, chatID, d.photo, file, resp.Photo.Caption)
	if err != nil {
		return SentMessage{}, fmt.Errorf("send photo: %w", err)
	}
	return sent, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Callback queries
// ─────────────────────────────────────────────────────────────────────────────

// handleCallbackQuery acknowledges the query, then echoes the data to the
// originating chat. The ack is attempted even when the chat is unknown.
func (d *Dispatcher) handleCallbackQuery(ctx context.Context, cb *update.CallbackQuery) Result {
	text := "Received " + cb.Data

	if err := d.sender.AnswerCallbackQuery(ctx, cb.ID, text); err != nil {
		return failed("CallbackQuery", "", fmt.Errorf("answer callback query: %w", err))
	}

	if cb.ChatID == 0 {
		return failed("CallbackQuery", "", shared.NewDomainError("dispatch", "CallbackQuery", shared.ErrMissingChat, "callback query has no originating chat"))
	}

	sent, err := d.sender.SendText(ctx, cb.ChatID, text, menu.NoMarkup())
	if err != nil {
		return failed("CallbackQuery", "", fmt.Errorf("send text: %w", err))
	}
	return handled("CallbackQuery", "", &sent)
}

// ─────────────────────────────────────────────────────────────────────────────
// Inline mode
// ─────────────────────────────────────────────────────────────────────────────

func (d *Dispatcher) handleInlineQuery(ctx context.Context, senderID int64, q *update.InlineQuery) Result {
	d.logger.Info("Received inline query from", "sender_id", senderID, "query", q.Query)

	if err := d.sender.AnswerInlineQuery(ctx, q.ID, append([]InlineArticle(nil), inlineArticles...), true, 0); err != nil {
		return failed("InlineQuery", "", fmt.Errorf("answer inline query: %w", err))
	}
	return handled("InlineQuery", "", nil)
}

func (d *Dispatcher) handleChosenInlineResult(senderID int64, r *update.ChosenInlineResult) Result {
	d.logger.Info("Received inline result", "result_id", r.ResultID, "sender_id", senderID)
	return ignored("ChosenInlineResult")
}
