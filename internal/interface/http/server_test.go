package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/update"
	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/metrics"
	"github.com/Bukinich-Pavel/resume-bot/internal/interface/http/handlers"
)

type recordingDispatcher struct {
	mu      sync.Mutex
	updates []update.Update
	panicOn int64
}

func (d *recordingDispatcher) Dispatch(_ context.Context, u update.Update) {
	if d.panicOn != 0 && u.ID == d.panicOn {
		panic("dispatcher exploded")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates = append(d.updates, u)
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.updates)
}

type memClaimer struct {
	seen map[int64]bool
	err  error
}

func (m *memClaimer) Claim(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return true, m.err
	}
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

const helloUpdate = `{"update_id":10,"message":{"message_id":1,"date":0,"chat":{"id":4242,"type":"private"},"from":{"id":7,"is_bot":false,"first_name":"A"},"text":"/Hello"}}`

func postUpdate(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	d := &recordingDispatcher{}
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: d})

	rec := postUpdate(t, s.Handler(), helloUpdate, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, d.count())
	assert.Equal(t, int64(10), d.updates[0].ID)
	assert.Equal(t, update.KindMessage, d.updates[0].Kind)
	assert.Equal(t, "/Hello", d.updates[0].Message.Text)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWebhook_MalformedBody(t *testing.T) {
	d := &recordingDispatcher{}
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: d})

	rec := postUpdate(t, s.Handler(), `{"update_id":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, d.count())
}

func TestWebhook_SecretToken(t *testing.T) {
	d := &recordingDispatcher{}
	cfg := DefaultConfig()
	cfg.WebhookSecret = "s3cret"
	s := NewServer(cfg, Dependencies{Dispatcher: d})

	assert.Equal(t, http.StatusUnauthorized, postUpdate(t, s.Handler(), helloUpdate, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, postUpdate(t, s.Handler(), helloUpdate, map[string]string{SecretTokenHeader: "wrong"}).Code)
	assert.Zero(t, d.count())

	rec := postUpdate(t, s.Handler(), helloUpdate, map[string]string{SecretTokenHeader: "s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, d.count())
}

func TestWebhook_DuplicateDeliverySkipped(t *testing.T) {
	d := &recordingDispatcher{}
	m := metrics.New()
	s := NewServer(DefaultConfig(), Dependencies{
		Dispatcher: d,
		Dedup:      &memClaimer{seen: map[int64]bool{}},
		Metrics:    m,
	})

	assert.Equal(t, http.StatusOK, postUpdate(t, s.Handler(), helloUpdate, nil).Code)
	rec := postUpdate(t, s.Handler(), helloUpdate, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate")
	assert.Equal(t, 1, d.count())
}

func TestWebhook_DedupFailureStillDispatches(t *testing.T) {
	d := &recordingDispatcher{}
	s := NewServer(DefaultConfig(), Dependencies{
		Dispatcher: d,
		Dedup:      &memClaimer{err: errors.New("redis down")},
	})

	assert.Equal(t, http.StatusOK, postUpdate(t, s.Handler(), helloUpdate, nil).Code)
	assert.Equal(t, 1, d.count())
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	d := &recordingDispatcher{}
	cfg := DefaultConfig()
	cfg.MaxBodyBytes = 16
	s := NewServer(cfg, Dependencies{Dispatcher: d})

	rec := postUpdate(t, s.Handler(), helloUpdate, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, d.count())
}

func TestWebhook_PanicRecovered(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: &recordingDispatcher{panicOn: 10}})

	rec := postUpdate(t, s.Handler(), helloUpdate, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: &recordingDispatcher{}})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook/telegram", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: &recordingDispatcher{}, HealthChecker: checker})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/health").Code)
	assert.Equal(t, http.StatusOK, get("/ready").Code)
	assert.Equal(t, http.StatusOK, get("/live").Code)

	checker.AddCheck("redis", func(context.Context) error { return errors.New("refused") })
	assert.Equal(t, http.StatusServiceUnavailable, get("/health").Code)

	rec := get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

func TestReady_MissingAssetKeepsHealth(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	checker.AddReadinessCheck("photo", func(context.Context) error { return errors.New("asset missing") })
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: &recordingDispatcher{}, HealthChecker: checker})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not ready: photo")
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: &recordingDispatcher{}, Metrics: m})

	postUpdate(t, s.Handler(), helloUpdate, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `resume_bot_http_requests_total{code="200",method="POST",path="/webhook/telegram"} 1`)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(r))
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	s := NewServer(DefaultConfig(), Dependencies{Dispatcher: &recordingDispatcher{}})

	assert.NoError(t, s.Shutdown(context.Background()))
}
