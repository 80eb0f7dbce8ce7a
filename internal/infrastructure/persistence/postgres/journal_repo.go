package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Bukinich-Pavel/resume-bot/internal/application/dispatch"
	"github.com/Bukinich-Pavel/resume-bot/pkg/circuitbreaker"
)

// JournalEntry is one persisted dispatch outcome.
type JournalEntry struct {
	ID            uuid.UUID
	UpdateID      int64
	Kind          string
	ChatID        *int64
	Trigger       *string
	Status        string
	ErrorCode     *int
	ErrorMessage  *string
	SentMessageID *int
	DurationMs    int
	DispatchedAt  time.Time
}

// journalQuerier is the part of *Connection the repository uses.
type journalQuerier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// JournalRepository records dispatch outcomes. It implements
// dispatch.Observer; write failures are logged and never propagated.
// Repeated failures open a circuit breaker so an unreachable database does
// not add the write timeout to every update.
type JournalRepository struct {
	db           journalQuerier
	writeTimeout time.Duration
	breaker      *circuitbreaker.CircuitBreaker
	logger       *slog.Logger
	newID        func() uuid.UUID
}

var _ dispatch.Observer = (*JournalRepository)(nil)

// NewJournalRepository creates a journal over conn.
func NewJournalRepository(conn *Connection, logger *slog.Logger) *JournalRepository {
	return newJournalRepository(conn, logger)
}

func newJournalRepository(db journalQuerier, logger *slog.Logger) *JournalRepository {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := circuitbreaker.New("dispatch_journal",
		circuitbreaker.WithFailureThreshold(3),
		circuitbreaker.WithTimeout(30*time.Second),
		circuitbreaker.WithOnStateChange(func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from, "to", to)
		}),
	)
	return &JournalRepository{
		db:           db,
		writeTimeout: 2 * time.Second,
		breaker:      breaker,
		logger:       logger,
		newID:        uuid.New,
	}
}

const insertJournalSQL = `
INSERT INTO dispatch_journal (
    id, update_id, kind, chat_id, menu_trigger, status,
    error_code, error_message, sent_message_id, duration_ms, dispatched_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Record inserts one outcome.
func (r *JournalRepository) Record(ctx context.Context, o dispatch.Outcome) error {
	e := entryFromOutcome(r.newID(), o)

	_, err := r.db.Exec(ctx, insertJournalSQL,
		e.ID, e.UpdateID, e.Kind, e.ChatID, e.Trigger, e.Status,
		e.ErrorCode, e.ErrorMessage, e.SentMessageID, e.DurationMs, e.DispatchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Observe records the outcome with a bounded timeout, detached from the
// request's cancellation.
func (r *JournalRepository) Observe(ctx context.Context, o dispatch.Outcome) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
	defer cancel()

	err := r.breaker.Execute(writeCtx, func(ctx context.Context) error {
		return r.Record(ctx, o)
	})
	switch {
	case err == nil:
	case circuitbreaker.IsRejected(err):
		r.logger.Debug("dispatch journal paused", "update_id", o.UpdateID)
	default:
		r.logger.Warn("dispatch journal write failed", "update_id", o.UpdateID, "error", err)
	}
}

const recentJournalSQL = `
SELECT id, update_id, kind, chat_id, menu_trigger, status,
       error_code, error_message, sent_message_id, duration_ms, dispatched_at
FROM dispatch_journal
ORDER BY dispatched_at DESC
LIMIT $1`

// Recent returns the latest entries, newest first.
func (r *JournalRepository) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, recentJournalSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(
			&e.ID, &e.UpdateID, &e.Kind, &e.ChatID, &e.Trigger, &e.Status,
			&e.ErrorCode, &e.ErrorMessage, &e.SentMessageID, &e.DurationMs, &e.DispatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func entryFromOutcome(id uuid.UUID, o dispatch.Outcome) JournalEntry {
	e := JournalEntry{
		ID:           id,
		UpdateID:     o.UpdateID,
		Kind:         o.Kind.String(),
		Status:       o.Status.String(),
		DurationMs:   int(o.Duration / time.Millisecond),
		DispatchedAt: o.At,
	}
	if e.DispatchedAt.IsZero() {
		e.DispatchedAt = time.Now()
	}
	if o.ChatID != 0 {
		chatID := o.ChatID
		e.ChatID = &chatID
	}
	if o.Trigger != "" {
		trigger := o.Trigger
		e.Trigger = &trigger
	}
	if o.ErrorCode != 0 {
		code := o.ErrorCode
		e.ErrorCode = &code
	}
	if o.Error != "" {
		msg := o.Error
		e.ErrorMessage = &msg
	}
	if o.SentID != 0 {
		sent := o.SentID
		e.SentMessageID = &sent
	}
	return e
}
