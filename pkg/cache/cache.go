// Package cache stores computed layouts and rendered exports so repeated
// requests skip the work.
//
// Every backend implements [Cache]. Keys come from a [Keyer], which hashes
// the inputs that determine an entry: the description and layout config for
// layouts, the snapshot and format for artifacts.
//
// Backends:
//   - [NullCache] stores nothing.
//   - [FileCache] keeps entries under a directory, one file per key.
//   - [RedisCache] keeps entries in Redis with native expiry.
//
// [Compressed] wraps any backend with snappy compression.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported as (nil, false, nil), never as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys a layout result by the description hash and the
	// options that affect placement.
	LayoutKey(descHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered export by the snapshot hash and format.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the description that change a
// layout result. Config is hashed through its JSON form.
type LayoutKeyOpts struct {
	Kind   string `json:"kind"`
	Config any    `json:"config"`
	Salt   string `json:"salt,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the snapshot that change an export.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Title  string `json:"title,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(descHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", descHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}
