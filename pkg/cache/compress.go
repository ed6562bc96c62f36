package cache

import (
	"context"
	"time"

	"github.com/golang/snappy"
)

// Compressed stores snappy-compressed values in an inner cache. Entries that
// fail to decode are deleted and reported as a miss.
type Compressed struct {
	inner Cache
}

// NewCompressed wraps inner.
func NewCompressed(inner Cache) *Compressed { return &Compressed{inner: inner} }

// Get implements [Cache].
func (c *Compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		_ = c.inner.Delete(ctx, key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set implements [Cache].
func (c *Compressed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, snappy.Encode(nil, data), ttl)
}

func (c *Compressed) Delete(ctx context.Context, key string) error { return c.inner.Delete(ctx, key) }

// Clear clears the inner cache if it supports it.
func (c *Compressed) Clear(ctx context.Context) error {
	if cl, ok := c.inner.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

func (c *Compressed) Close() error { return c.inner.Close() }

var (
	_ Cache   = (*Compressed)(nil)
	_ Clearer = (*Compressed)(nil)
)
