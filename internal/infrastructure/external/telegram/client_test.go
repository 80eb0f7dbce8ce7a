package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bukinich-Pavel/resume-bot/internal/application/dispatch"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
)

// apiRequest is one request captured by the fake Bot API server.
type apiRequest struct {
	Method string
	Form   map[string]string
	File   string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []apiRequest
	// responses maps a Bot API method to the raw JSON body returned for it.
	responses map[string]string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{responses: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	req := apiRequest{Method: method, Form: map[string]string{}}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					req.Form[k] = v[0]
				}
			}
			for _, files := range r.MultipartForm.File {
				if len(files) == 0 {
					continue
				}
				fh, err := files[0].Open()
				if err == nil {
					data, _ := io.ReadAll(fh)
					fh.Close()
					req.File = string(data)
				}
			}
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	body, ok := f.responses[method]
	f.mu.Unlock()

	if !ok {
		body = `{"ok":true,"result":true}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func (f *fakeAPI) Requests() []apiRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]apiRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeAPI) respond(method, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = body
}

const sentMessageJSON = `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":4242,"type":"private"}}}`

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	config := DefaultClientConfig("123:test-token")
	config.BaseURL = srv.URL
	config.Timeout = 5 * time.Second
	config.PollTimeout = time.Second
	config.WebhookSecret = "s3cret"

	c, err := NewClient(config)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(DefaultClientConfig(""))
	assert.Error(t, err)
}

func TestClient_SendTextWithReplyKeyboard(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.respond("sendMessage", sentMessageJSON)
	c := newTestClient(t, srv)

	sent, err := c.SendText(context.Background(), 4242, menu.TextChoose, menu.MainMenu())
	require.NoError(t, err)
	assert.Equal(t, dispatch.SentMessage{ID: 77, ChatID: 4242}, sent)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "sendMessage", reqs[0].Method)
	assert.Equal(t, "4242", reqs[0].Form["chat_id"])
	assert.Equal(t, menu.TextChoose, reqs[0].Form["text"])

	var markup struct {
		Keyboard [][]struct {
			Text string `json:"text"`
		} `json:"keyboard"`
		Resize bool `json:"resize_keyboard"`
	}
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Form["reply_markup"]), &markup))
	assert.True(t, markup.Resize)
	require.Len(t, markup.Keyboard, 2)
	assert.Equal(t, menu.LabelEducation, markup.Keyboard[0][0].Text)
	assert.Equal(t, menu.LabelPortfolio, markup.Keyboard[1][1].Text)
}

func TestClient_SendTextWithoutMarkup(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.respond("sendMessage", sentMessageJSON)
	c := newTestClient(t, srv)

	_, err := c.SendText(context.Background(), 4242, "Received 11", menu.NoMarkup())
	require.NoError(t, err)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Form["reply_markup"])
}

func TestClient_SendPhoto(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.respond("sendPhoto", sentMessageJSON)
	c := newTestClient(t, srv)

	sent, err := c.SendPhoto(context.Background(), 4242, "tux.png", strings.NewReader("PNGDATA"), menu.CaptionPhoto)
	require.NoError(t, err)
	assert.Equal(t, 77, sent.ID)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "sendPhoto", reqs[0].Method)
	assert.Equal(t, menu.CaptionPhoto, reqs[0].Form["caption"])
	assert.Equal(t, "PNGDATA", reqs[0].File)
}

func TestClient_ChatActionAndAnswers(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.SendChatAction(ctx, 4242, menu.ChatActionUploadPhoto))
	require.NoError(t, c.AnswerCallbackQuery(ctx, "x", "Received 11"))
	require.NoError(t, c.AnswerInlineQuery(ctx, "q1", []dispatch.InlineArticle{{ID: "3", Title: "Bot", MessageText: "hello"}}, true, 0))

	reqs := api.Requests()
	require.Len(t, reqs, 3)

	assert.Equal(t, "sendChatAction", reqs[0].Method)
	assert.Equal(t, "upload_photo", reqs[0].Form["action"])

	assert.Equal(t, "answerCallbackQuery", reqs[1].Method)
	assert.Equal(t, "x", reqs[1].Form["callback_query_id"])
	assert.Equal(t, "Received 11", reqs[1].Form["text"])

	assert.Equal(t, "answerInlineQuery", reqs[2].Method)
	assert.Equal(t, "q1", reqs[2].Form["inline_query_id"])
	assert.Equal(t, "true", reqs[2].Form["is_personal"])
	assert.Equal(t, "0", reqs[2].Form["cache_time"])

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[2].Form["results"]), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "article", results[0]["type"])
	assert.Equal(t, "3", results[0]["id"])
	assert.Equal(t, "Bot", results[0]["title"])
	content, ok := results[0]["input_message_content"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", content["message_text"])
}

func TestClient_AnswerInlineQueryCached(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newTestClient(t, srv)

	require.NoError(t, c.AnswerInlineQuery(context.Background(), "q2", []dispatch.InlineArticle{{ID: "1", Title: "t", MessageText: "m"}}, false, 60))

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "60", reqs[0].Form["cache_time"])
	assert.NotContains(t, reqs[0].Form, "is_personal")
}

func TestClient_AnswerInlineQueryUncachedError(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.respond("answerInlineQuery", `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 3","parameters":{"retry_after":3}}`)
	c := newTestClient(t, srv)

	err := c.AnswerInlineQuery(context.Background(), "q3", nil, true, 0)
	require.Error(t, err)

	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "answerInlineQuery", apiErr.Method)
	assert.Equal(t, 429, apiErr.Code)
	assert.Equal(t, 3, apiErr.RetryAfter)
	assert.ErrorIs(t, err, shared.ErrRateLimited)
}

func TestClient_APIErrorCarriesCode(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.respond("sendMessage", `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
	c := newTestClient(t, srv)

	_, err := c.SendText(context.Background(), 4242, "hi", menu.NoMarkup())
	require.Error(t, err)

	apiErr, ok := shared.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 403, apiErr.Code)
	assert.Equal(t, "sendMessage", apiErr.Method)
	assert.Contains(t, apiErr.Description, "bot was blocked")

	dErr := dispatch.NewError("Message", err)
	assert.Equal(t, 403, dErr.Code)
}

func TestClient_SetAndDeleteWebhook(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, c.SetWebhook(ctx, "https://bot.example.com/webhook/telegram", []string{"message", "callback_query"}))
	require.NoError(t, c.DeleteWebhook(ctx, true))

	reqs := api.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "setWebhook", reqs[0].Method)
	assert.Equal(t, "https://bot.example.com/webhook/telegram", reqs[0].Form["url"])
	assert.Equal(t, "s3cret", reqs[0].Form["secret_token"])
	assert.Equal(t, "deleteWebhook", reqs[1].Method)
	assert.Equal(t, "true", reqs[1].Form["drop_pending_updates"])
}

func TestClient_WebhookInfo(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.respond("getWebhookInfo", `{"ok":true,"result":{"url":"https://bot.example.com/webhook/telegram","has_custom_certificate":false,"pending_update_count":3,"last_error_message":"Connection refused"}}`)
	c := newTestClient(t, srv)

	info, err := c.WebhookInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com/webhook/telegram", info.URL)
	assert.Equal(t, 3, info.PendingUpdateCount)
	assert.Equal(t, "Connection refused", info.LastErrorMessage)
}
