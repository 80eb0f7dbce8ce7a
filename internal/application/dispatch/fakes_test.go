package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/Bukinich-Pavel/resume-bot/internal/domain/menu"
	"github.com/Bukinich-Pavel/resume-bot/internal/domain/shared"
)

// call is one recorded outbound call.
type call struct {
	Method    string
	ChatID    int64
	ID        string
	Text      string
	Markup    menu.Markup
	Action    menu.ChatAction
	Filename  string
	Payload   string
	Results   []InlineArticle
	Personal  bool
	CacheTime int
}

// fakeSender records calls in order. failOn makes the named method fail;
// panicOn makes it panic.
type fakeSender struct {
	mu      sync.Mutex
	calls   []call
	nextID  int
	failOn  map[string]error
	panicOn string
}

func newFakeSender() *fakeSender {
	return &fakeSender{nextID: 100, failOn: map[string]error{}}
}

func (f *fakeSender) record(c call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn == c.Method {
		panic("boom in " + c.Method)
	}
	if err := f.failOn[c.Method]; err != nil {
		return err
	}
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeSender) sentID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *fakeSender) SendText(ctx context.Context, chatID int64, text string, markup menu.Markup) (SentMessage, error) {
	if err := f.record(call{Method: "SendText", ChatID: chatID, Text: text, Markup: markup}); err != nil {
		return SentMessage{}, err
	}
	return SentMessage{ID: f.sentID(), ChatID: chatID}, nil
}

func (f *fakeSender) SendPhoto(ctx context.Context, chatID int64, filename string, photo io.Reader, caption string) (SentMessage, error) {
	data, _ := io.ReadAll(photo)
	if err := f.record(call{Method: "SendPhoto", ChatID: chatID, Filename: filename, Payload: string(data), Text: caption}); err != nil {
		return SentMessage{}, err
	}
	return SentMessage{ID: f.sentID(), ChatID: chatID}, nil
}

func (f *fakeSender) SendChatAction(ctx context.Context, chatID int64, action menu.ChatAction) error {
	return f.record(call{Method: "SendChatAction", ChatID: chatID, Action: action})
}

func (f *fakeSender) AnswerCallbackQuery(ctx context.Context, queryID, text string) error {
	return f.record(call{Method: "AnswerCallbackQuery", ID: queryID, Text: text})
}

func (f *fakeSender) AnswerInlineQuery(ctx context.Context, queryID string, results []InlineArticle, personal bool, cacheTime int) error {
	return f.record(call{Method: "AnswerInlineQuery", ID: queryID, Results: results, Personal: personal, CacheTime: cacheTime})
}

func (f *fakeSender) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeSender) Methods() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.Method)
	}
	return out
}

// mapAssets serves assets from memory.
type mapAssets map[string]string

func (m mapAssets) Open(name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, shared.WrapError("assets", "Open", shared.ErrAssetNotFound, "asset not found", fmt.Errorf("open %s: file does not exist", name))
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

// logBuffer is a concurrency-safe log sink.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuffer) Count(substr string) int {
	return strings.Count(b.String(), substr)
}

func newTestLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// outcomeRecorder collects observer outcomes.
type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *outcomeRecorder) Observe(ctx context.Context, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *outcomeRecorder) Last() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return Outcome{}
	}
	return r.outcomes[len(r.outcomes)-1]
}
