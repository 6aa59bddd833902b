// Package cache stores computed layouts and rendered artifacts.
//
// The [Cache] interface has three backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//
// Keys come from a [Keyer] so callers never assemble key strings by hand.
// Every key hashes the inputs that influence the cached value: the content
// hash of the trace or model, and the options of the stage.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(traceXML), cache.LayoutKeyOpts{Mode: "tree"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value stored under key. hit is false on a miss.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per entry type.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
	SnapshotTTL = 24 * time.Hour
)

// LayoutKeyOpts are the options that change a proof layout.
type LayoutKeyOpts struct {
	Mode             string  `json:"mode"`
	Magic            bool    `json:"magic"`
	Focus            string  `json:"focus,omitempty"`
	AllowOverlap     bool    `json:"allow_overlap,omitempty"`
	Compact          bool    `json:"compact,omitempty"`
	DistancePriority bool    `json:"distance_priority,omitempty"`
	BottomRoot       bool    `json:"bottom_root,omitempty"`
	Width            float64 `json:"width,omitempty"`
	Height           float64 `json:"height,omitempty"`
}

// SnapshotKeyOpts are the options that change a counterexample snapshot.
type SnapshotKeyOpts struct {
	MapperHash       string `json:"mapper_hash,omitempty"`
	IgnoreVisibility bool   `json:"ignore_visibility,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey keys a laid-out proof by trace hash and layout options.
	LayoutKey(traceHash string, opts LayoutKeyOpts) string

	// SnapshotKey keys a snapshot by model hash and snapshot options.
	SnapshotKey(modelHash string, opts SnapshotKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of its source layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(traceHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", traceHash, opts)
}

func (DefaultKeyer) SnapshotKey(modelHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", modelHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
