// Package telegram adapts github.com/go-telegram/bot to the dispatcher's
// Sender port and converts library updates into domain updates.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Bukinich-Pavel/resume-bot/internal/application/dispatch"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Telegram client.
type ClientConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// BaseURL overrides the Bot API server (default: https://api.telegram.org).
	BaseURL string

	// Timeout is the HTTP request timeout. Must exceed PollTimeout.
	Timeout time.Duration

	// PollTimeout is the long-polling timeout used by Start.
	PollTimeout time.Duration

	// WebhookSecret is the secret token registered with setWebhook.
	WebhookSecret string

	// OnUpdate receives every update delivered by long polling.
	OnUpdate func(ctx context.Context, u update.Update)

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables the library's request logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		Token:       token,
		Timeout:     60 * time.Second,
		PollTimeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client implements dispatch.Sender over the Bot API. It is safe for
// concurrent use.
type Client struct {
	bot        *bot.Bot
	httpClient *http.Client
	apiURL     string
	config     ClientConfig
	logger     *slog.Logger
}

var _ dispatch.Sender = (*Client)(nil)

// NewClient creates a Telegram client. It does not contact the API.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("telegram: empty bot token")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultClientConfig("").Timeout
	}
	if config.PollTimeout <= 0 || config.PollTimeout >= config.Timeout {
		config.PollTimeout = config.Timeout / 2
	}

	c := &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		apiURL:     defaultAPIURL,
		config:     config,
		logger:     config.Logger,
	}
	if config.BaseURL != "" {
		c.apiURL = strings.TrimRight(config.BaseURL, "/")
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(config.PollTimeout, c.httpClient),
		bot.WithDefaultHandler(c.onUpdate),
		bot.WithErrorsHandler(func(err error) {
			c.logger.Error("telegram polling error", "error", err)
		}),
	}
	if config.BaseURL != "" {
		opts = append(opts, bot.WithServerURL(config.BaseURL))
	}
	if config.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(config.WebhookSecret))
	}
	if config.Debug {
		opts = append(opts, bot.WithDebug())
	}

	b, err := bot.New(config.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	c.bot = b
	return c, nil
}

func (c *Client) onUpdate(ctx context.Context, _ *bot.Bot, u *models.Update) {
	if c.config.OnUpdate == nil || u == nil {
		return
	}
	c.config.OnUpdate(ctx, ConvertUpdate(u))
}

// ─────────────────────────────────────────────────────────────────────────────
// Sender
// ─────────────────────────────────────────────────────────────────────────────

// SendText sends a text message with optional keyboard markup.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, markup menu.Markup) (dispatch.SentMessage, error) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if rm := ReplyMarkup(markup); rm != nil {
		params.ReplyMarkup = rm
	}

	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return dispatch.SentMessage{}, wrapError("sendMessage", err)
	}
	return sentMessage(msg, chatID), nil
}

// SendPhoto uploads a photo from r.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, filename string, r io.Reader, caption string) (dispatch.SentMessage, error) {
	msg, err := c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: filename, Data: r},
		Caption: caption,
	})
	if err != nil {
		return dispatch.SentMessage{}, wrapError("sendPhoto", err)
	}
	return sentMessage(msg, chatID), nil
}

// SendChatAction shows a presence signal such as "typing".
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action menu.ChatAction) error {
	_, err := c.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatAction(action),
	})
	return wrapError("sendChatAction", err)
}

// AnswerCallbackQuery acknowledges a callback query with a toast.
func (c *Client) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	_, err := c.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
	})
	return wrapError("answerCallbackQuery", err)
}

// AnswerInlineQuery answers an inline query with text articles.
func (c *Client) AnswerInlineQuery(ctx context.Context, queryID string, results []dispatch.InlineArticle, personal bool, cacheTime int) error {
	items := make([]models.InlineQueryResult, 0, len(results))
	for _, r := range results {
		items = append(items, &models.InlineQueryResultArticle{
			ID:                  r.ID,
			Title:               r.Title,
			InputMessageContent: &models.InputTextMessageContent{MessageText: r.MessageText},
		})
	}

	if cacheTime == 0 {
		return c.answerInlineQueryUncached(ctx, queryID, items, personal)
	}

	_, err := c.bot.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: queryID,
		Results:       items,
		CacheTime:     cacheTime,
		IsPersonal:    personal,
	})
	return wrapError("answerInlineQuery", err)
}

func sentMessage(msg *models.Message, chatID int64) dispatch.SentMessage {
	if msg == nil {
		return dispatch.SentMessage{ChatID: chatID}
	}
	return dispatch.SentMessage{ID: int(msg.ID), ChatID: int64(msg.Chat.ID)}
}

// ══════════════════════════════════════════════════════════════════════════════
// WEBHOOK & POLLING
// ══════════════════════════════════════════════════════════════════════════════

// WebhookStatus is the subset of getWebhookInfo the CLI reports.
type WebhookStatus struct {
	URL                string
	PendingUpdateCount int
	LastErrorMessage   string
}

// SetWebhook registers url as the update endpoint.
func (c *Client) SetWebhook(ctx context.Context, url string, allowedUpdates []string) error {
	_, err := c.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            url,
		SecretToken:    c.config.WebhookSecret,
		AllowedUpdates: allowedUpdates,
	})
	if err != nil {
		return wrapError("setWebhook", err)
	}
	c.logger.Info("webhook registered", "url", url)
	return nil
}

// DeleteWebhook removes the registered webhook.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := c.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: dropPending})
	if err != nil {
		return wrapError("deleteWebhook", err)
	}
	c.logger.Info("webhook deleted", "drop_pending", dropPending)
	return nil
}

// WebhookInfo reports the current webhook registration.
func (c *Client) WebhookInfo(ctx context.Context) (WebhookStatus, error) {
	info, err := c.bot.GetWebhookInfo(ctx)
	if err != nil {
		return WebhookStatus{}, wrapError("getWebhookInfo", err)
	}
	if info == nil {
		return WebhookStatus{}, nil
	}
	return WebhookStatus{
		URL:                info.URL,
		PendingUpdateCount: int(info.PendingUpdateCount),
		LastErrorMessage:   info.LastErrorMessage,
	}, nil
}

// Ping checks the token against getMe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.bot.GetMe(ctx)
	return wrapError("getMe", err)
}

// Start long-polls for updates until ctx is cancelled, handing each one to
// ClientConfig.OnUpdate.
func (c *Client) Start(ctx context.Context) {
	c.bot.Start(ctx)
}
