package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reviewdesk/reviewdesk/internal/records"
)

const cacheVersionKey = "records:version"

// PageCache keeps listed pages in Redis. Keys embed a version that Invalidate
// bumps, so every write makes all cached pages unreachable at once.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache instantiates the cache helper. A nil client disables caching.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

func (c *PageCache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *PageCache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

func (c *PageCache) key(ctx context.Context, page, limit int) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("records:page:%d:%d:%d", page, limit, ver), nil
}

// Get returns a cached page when present, along with the key the page lives
// under at the version read now. Callers that fill a miss must pass that key to
// Set so a page read before a concurrent Invalidate is never stored under the
// bumped version.
func (c *PageCache) Get(ctx context.Context, page, limit int) (records.Page, string, bool, error) {
	if !c.enabled() {
		return records.Page{}, "", false, nil
	}
	key, err := c.key(ctx, page, limit)
	if err != nil {
		return records.Page{}, "", false, err
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return records.Page{}, key, false, nil
	}
	if err != nil {
		return records.Page{}, "", false, err
	}
	var out records.Page
	if err := json.Unmarshal(raw, &out); err != nil {
		return records.Page{}, key, false, err
	}
	return out, key, true, nil
}

// Set stores a page under a key obtained from Get. An empty key is a no-op.
func (c *PageCache) Set(ctx context.Context, key string, value records.Page) error {
	if !c.enabled() || key == "" {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate bumps the version key.
func (c *PageCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
