// Package cache keeps venue booking snapshots in Redis so replicas share the
// fetch result between refreshes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/holidaze/service-booking/internal/domain/availability"
)

const keyPrefix = "holidaze:booking:snapshot:"

// ErrMiss is returned by Get when no snapshot is cached for the venue.
var ErrMiss = errors.New("snapshot not cached")

// SnapshotCache stores the raw booking records of a venue. Records are cached
// rather than the built set so that historical filtering always runs against
// the current day.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache creates a SnapshotCache. A non-positive ttl falls back to
// five minutes.
func NewSnapshotCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl, logger: logger}
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", addr), zap.Int("db", db))
	return client, nil
}

// Key returns the Redis key holding the snapshot of venueID.
func Key(venueID uuid.UUID) string {
	return keyPrefix + venueID.String()
}

// Get returns the cached records of a venue, or ErrMiss.
func (c *SnapshotCache) Get(ctx context.Context, venueID uuid.UUID) ([]availability.BookingRecord, error) {
	raw, err := c.client.Get(ctx, Key(venueID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached snapshot: %w", err)
	}

	var records []availability.BookingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.logger.Warn("discarding unreadable cached snapshot",
			zap.String("venue_id", venueID.String()),
			zap.Error(err),
		)
		_ = c.client.Del(ctx, Key(venueID)).Err()
		return nil, ErrMiss
	}
	return records, nil
}

// Save stores the records of a venue with the configured TTL.
func (c *SnapshotCache) Save(ctx context.Context, venueID uuid.UUID, records []availability.BookingRecord) error {
	if records == nil {
		records = []availability.BookingRecord{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, Key(venueID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// Invalidate removes the cached snapshot of a venue.
func (c *SnapshotCache) Invalidate(ctx context.Context, venueID uuid.UUID) error {
	if err := c.client.Del(ctx, Key(venueID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached snapshot: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable. It is used as a readiness check.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
