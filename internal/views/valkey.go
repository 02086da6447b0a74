package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultValkeyKey is the hash holding per-post counts.
const DefaultValkeyKey = "views"

// ValkeyCounter keeps counts in a Valkey hash. HINCRBY makes increments
// atomic across server instances.
type ValkeyCounter struct {
	client *redis.Client
	key    string
}

// NewValkeyCounter creates a counter on the given client. An empty key
// selects DefaultValkeyKey.
func NewValkeyCounter(client *redis.Client, key string) *ValkeyCounter {
	if key == "" {
		key = DefaultValkeyKey
	}
	return &ValkeyCounter{client: client, key: key}
}

// Get returns the count for a post, zero when never viewed.
func (c *ValkeyCounter) Get(ctx context.Context, slug string) (int64, error) {
	n, err := c.client.HGet(ctx, c.key, slug).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("valkey get views: %w", err)
	}
	return n, nil
}

// Increment adds one view and returns the new count.
func (c *ValkeyCounter) Increment(ctx context.Context, slug string) (int64, error) {
	n, err := c.client.HIncrBy(ctx, c.key, slug, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("valkey increment views: %w", err)
	}
	return n, nil
}

// Total returns the sum of all counts.
func (c *ValkeyCounter) Total(ctx context.Context) (int64, error) {
	vals, err := c.client.HVals(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("valkey total views: %w", err)
	}
	var total int64
	for _, v := range vals {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		total += n
	}
	return total, nil
}
