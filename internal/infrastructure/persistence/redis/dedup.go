package redis

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// DefaultDedupTTL covers the platform's webhook redelivery window.
const DefaultDedupTTL = 24 * time.Hour

// setNXer is the subset of Cache the deduplicator needs.
type setNXer interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// Deduplicator marks update ids as seen so a redelivered webhook is not
// dispatched twice.
type Deduplicator struct {
	cache  setNXer
	ttl    time.Duration
	logger *slog.Logger
}

// NewDeduplicator creates a deduplicator. A non-positive ttl uses
// DefaultDedupTTL.
func NewDeduplicator(cache *Cache, ttl time.Duration, logger *slog.Logger) *Deduplicator {
	return newDeduplicator(cache, ttl, logger)
}

func newDeduplicator(cache setNXer, ttl time.Duration, logger *slog.Logger) *Deduplicator {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{cache: cache, ttl: ttl, logger: logger}
}

// Claim reports whether updateID is seen for the first time. Id 0 is never
// recorded. On Redis failure Claim returns true with the error so callers
// can fail open.
func (d *Deduplicator) Claim(ctx context.Context, updateID int64) (bool, error) {
	if updateID == 0 {
		return true, nil
	}

	first, err := d.cache.SetNX(ctx, UpdateKey(updateID), strconv.FormatInt(time.Now().Unix(), 10), d.ttl)
	if err != nil {
		d.logger.Warn("update dedup unavailable", "update_id", updateID, "error", err)
		return true, err
	}
	if !first {
		d.logger.Info("duplicate update skipped", "update_id", updateID)
	}
	return first, nil
}
