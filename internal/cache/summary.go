package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"classtrack/internal/attendance"
)

const summaryKey = "classtrack:summaries"

// SummaryCache stores the admin summary view in Redis so the review
// table does not recompute the full aggregation on every page load.
// The worker refreshes it on change events; the TTL bounds staleness
// if the worker falls behind.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a cache with the given staleness bound.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Put stores the freshly aggregated summary list.
func (c *SummaryCache) Put(ctx context.Context, summaries []attendance.Summary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, summaryKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache summaries: %w", err)
	}
	return nil
}

// Get returns the cached list and whether it was present.
func (c *SummaryCache) Get(ctx context.Context) ([]attendance.Summary, bool, error) {
	payload, err := c.client.Get(ctx, summaryKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cached summaries: %w", err)
	}
	var summaries []attendance.Summary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		// A corrupt entry behaves like a miss; the caller recomputes.
		return nil, false, nil
	}
	return summaries, true, nil
}

// Invalidate drops the cached view.
func (c *SummaryCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, summaryKey).Err()
}
