package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// errNothing marks a nil load result; it is never written to redis.
var errNothing = errors.New("cache: nothing to store")

// GetOrLoadJSON is GetOrLoad for JSON-encoded values. A nil result from load
// is returned as is and not cached. An entry that no longer decodes into T
// is dropped and loaded again.
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration,
	load func(ctx context.Context) (*T, error)) (*T, error) {
	if c == nil || c.RDB == nil {
		return load(ctx)
	}
	encode := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errNothing
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, encode)
	if errors.Is(err, errNothing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out T
	if json.Unmarshal(b, &out) == nil {
		return &out, nil
	}

	c.Del(ctx, key)
	b, err = c.GetOrLoad(ctx, key, ttl, encode)
	if errors.Is(err, errNothing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
