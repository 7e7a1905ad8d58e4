// Package cache connects to the Redis instance shared by sessions and the
// dashboard panel cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes how Connect reaches Redis.
type Options struct {
	Addr        string
	Attempts    int
	Backoff     time.Duration
	PingTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 2 * time.Second
	}
	return o
}

// Connect returns a client once Redis answers PING, retrying with a linear
// backoff. The client is closed when every attempt fails.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	opts = opts.withDefaults()
	client := redis.NewClient(&redis.Options{Addr: opts.Addr})

	var err error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return client, nil
		}
		if attempt == opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("platform/cache: connect %s: %w", opts.Addr, ctx.Err())
		case <-time.After(time.Duration(attempt) * opts.Backoff):
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("platform/cache: ping %s after %d attempts: %w", opts.Addr, opts.Attempts, err)
}
