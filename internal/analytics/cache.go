package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "dashboard:cache:version"
	bumpChannel     = "dashboard.bump"
)

// adoptVersion raises the stored version to ARGV[1] and never lowers it, so a
// late bump notice cannot resurrect retired panels.
var adoptVersion = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local incoming = tonumber(ARGV[1])
if incoming > current then
	redis.call("SET", KEYS[1], incoming)
	return incoming
end
return current
`)

// Cache keeps built panel payloads in Redis. Keys end with a global version
// so one Bump retires every panel at once. A nil *Cache builds every time.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps client; entries expire after ttl.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool { return c != nil && c.client != nil }

// Version returns the global cache version, starting at 1.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
		return 0, fmt.Errorf("cache: init version: %w", err)
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		return 0, fmt.Errorf("cache: read version: %w", err)
	}
	return max(ver, 1), nil
}

// Key names a panel built from a given fixture version:
// dashboard:<panel>:<fixtureVersion>:<cacheVersion>.
func (c *Cache) Key(ctx context.Context, panel string, fixtureVersion int64) (string, error) {
	key := "dashboard:" + panel + ":" + strconv.FormatInt(fixtureVersion, 10)
	if !c.enabled() {
		return key, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return key + ":" + strconv.FormatInt(ver, 10), nil
}

// Fetch returns the JSON stored under key, running build and storing its
// encoded result on a miss.
func (c *Cache) Fetch(ctx context.Context, key string, build func() (any, error)) (json.RawMessage, error) {
	if build == nil {
		return nil, errors.New("cache: build func required")
	}
	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return payload, nil
		case !errors.Is(err, redis.Nil):
			return nil, fmt.Errorf("cache: get %s: %w", key, err)
		}
	}
	value, err := build()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if c.enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return nil, fmt.Errorf("cache: set %s: %w", key, err)
		}
	}
	return raw, nil
}

// Bump retires every cached panel and announces the new version.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("cache: bump: %w", err)
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation adopts versions announced on channel until ctx is
// done. Notices that do not carry a version retire the current one.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string) error {
	if !c.enabled() {
		return nil
	}
	if channel == "" {
		channel = bumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("cache: subscribe %s: %w", channel, err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				c.adopt(ctx, msg.Payload)
			}
		}
	}()
	return nil
}

func (c *Cache) adopt(ctx context.Context, payload string) {
	ver, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		_ = c.client.Incr(ctx, cacheVersionKey).Err()
		return
	}
	_ = adoptVersion.Run(ctx, c.client, []string{cacheVersionKey}, ver).Err()
}
