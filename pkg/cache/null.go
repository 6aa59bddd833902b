package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs --no-cache and the "none" backend, and
// stands in when the cache directory cannot be created.
//
// Like the real backends it reports a cancelled context, so a render
// interrupted between stages fails the same way with or without a cache.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	return nil, false, ctx.Err()
}

func (NullCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}

func (NullCache) Delete(ctx context.Context, _ string) error { return ctx.Err() }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
