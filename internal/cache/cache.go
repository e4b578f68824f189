package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/starterkit/server/internal/logger"
)

// Client is a thin key/value layer over Redis. All failures come back as *Error.
type Client struct {
	rdb *redis.Client
}

// creates a new cache client from a Redis URL and checks the connection
func New(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, Wrap("ping", "", err)
	}

	logger.Info("connected to redis")

	return &Client{rdb: rdb}, nil
}

// wraps an existing go-redis client
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// returns the underlying go-redis client (shared with the rate limiter)
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return Wrap("ping", "", c.rdb.Ping(ctx).Err())
}

// returns the value stored at key; found is false when the key does not exist
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, Wrap("get", key, err)
	}

	return value, true, nil
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	return Wrap("set", key, c.rdb.Set(ctx, key, value, 0).Err())
}

// stores value at key with a time to live
func (c *Client) SetWithExpiration(ctx context.Context, key, value string, ttl time.Duration) error {
	return Wrap("set", key, c.rdb.Set(ctx, key, value, ttl).Err())
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return Wrap("del", keys[0], c.rdb.Del(ctx, keys...).Err())
}

// decodes the JSON value stored at key into v
func (c *Client) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, &Error{Op: "get", Key: key, Kind: KindParser, Err: err}
	}

	return true, nil
}

// stores v as JSON at key with a time to live
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &Error{Op: "set", Key: key, Kind: KindParser, Err: err}
	}

	return c.SetWithExpiration(ctx, key, string(raw), ttl)
}
