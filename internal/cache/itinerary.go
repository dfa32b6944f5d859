// Package cache keeps generated itineraries in Redis so identical requests
// skip the model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"

	"tripplanner/internal/domain"
)

const keyPrefix = "itinerary:"

// ItineraryCache stores plan JSON under a key derived from the selection
// and locale. Entries expire after ttl; cmd/api only builds a cache when
// the configured TTL is positive.
type ItineraryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewItineraryCache returns nil when client is nil so callers can pass the
// result straight into optional wiring.
func NewItineraryCache(client *redis.Client, ttl time.Duration) *ItineraryCache {
	if client == nil {
		return nil
	}
	return &ItineraryCache{client: client, ttl: ttl}
}

// Key returns the Redis key for sel and locale, for example
// "itinerary:paris:5f1c...". The slug keeps keys readable in redis-cli.
func Key(sel domain.TripSelection, locale string) string {
	normalized := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(sel.Location)),
		fmt.Sprint(int(sel.NoOfDays)),
		strings.ToLower(string(sel.Budget)),
		strings.ToLower(string(sel.Travels)),
		strings.ToLower(strings.TrimSpace(locale)),
	}, "|")
	sum := sha256.Sum256([]byte(normalized))
	name := slug.Make(sel.Location)
	if name == "" {
		name = "trip"
	}
	return keyPrefix + name + ":" + hex.EncodeToString(sum[:])
}

// Lookup returns the cached plan, if any.
func (c *ItineraryCache) Lookup(ctx context.Context, sel domain.TripSelection, locale string) (json.RawMessage, bool, error) {
	val, err := c.client.Get(ctx, Key(sel, locale)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if !json.Valid(val) {
		return nil, false, nil
	}
	return json.RawMessage(val), true, nil
}

// Store saves plan under the selection's key.
func (c *ItineraryCache) Store(ctx context.Context, sel domain.TripSelection, locale string, plan json.RawMessage) error {
	if err := c.client.Set(ctx, Key(sel, locale), []byte(plan), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
