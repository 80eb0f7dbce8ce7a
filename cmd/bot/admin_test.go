package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bukinich-Pavel/resume-bot/internal/infrastructure/persistence/postgres"
)

func TestRenderMigrations(t *testing.T) {
	var buf bytes.Buffer
	status := []postgres.Migration{
		{Version: 1, Name: "create_dispatch_journal", IsApplied: true, AppliedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{Version: 2, Name: "index_dispatched_at"},
	}

	require.NoError(t, renderMigrations(&buf, status))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "VERSION")
	assert.Contains(t, out, "create_dispatch_journal")
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "index_dispatched_at")
	assert.Contains(t, out, "no")
}

func TestRenderJournal(t *testing.T) {
	var buf bytes.Buffer
	trigger := "/Hello"
	msg := "Bad Request:\nchat not found"
	entries := []postgres.JournalEntry{
		{UpdateID: 42, Kind: "Message", Trigger: &trigger, Status: "handled", DurationMs: 15, DispatchedAt: time.Now()},
		{UpdateID: 43, Kind: "CallbackQuery", Status: "failed", ErrorMessage: &msg, DispatchedAt: time.Now()},
	}

	require.NoError(t, renderJournal(&buf, entries))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "TRIGGER")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "/Hello")
	assert.Contains(t, out, "Bad Request: chat not found")
	assert.Contains(t, out, "CallbackQuery")
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "-", deref(nil))
	s := "a\nb"
	assert.Equal(t, "a b", deref(&s))
}
