// Package cache provides the injected cache abstraction used by the layout
// pipeline: a key→value store with TTL eviction whose lifetime is controlled
// by the caller, never process-global state.
//
// Backends:
//   - memory: in-process TTL cache for single-binary use and tests
//   - file: file-based cache for CLI usage across invocations
//   - redis: Redis-backed cache for multi-instance deployments
//   - null: caching disabled
//
// Keys are generated through the Keyer interface so layout, spread, mask,
// and artifact entries are namespaced consistently, and ScopedKeyer adds a
// prefix for multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs per entry kind. Layouts and spreads are cheap to recompute, so their
// entries are short-lived; rendered artifacts are the expensive ones.
const (
	TTLLayout   = 1 * time.Hour
	TTLSpread   = 1 * time.Hour
	TTLMask     = 6 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// LayoutKeyOpts are the options that make two layout computations distinct.
type LayoutKeyOpts struct {
	Template        string
	Narration       string
	IllustrationURL string
}

// SpreadKeyOpts distinguish spread builds. Illustrations feed the spread
// image refs, so their hash is part of the key.
type SpreadKeyOpts struct {
	Paired            bool
	PageCount         int
	IllustrationsHash string
}

// MaskKeyOpts distinguish mask generations.
type MaskKeyOpts struct {
	Kind          string // "character", "background", "scene"
	PreserveLevel string
	Position      string
	PageNumber    int
}

// ArtifactKeyOpts distinguish rendered outputs of the same layout.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// Keyer generates cache keys for the pipeline's entry kinds.
type Keyer interface {
	// LayoutKey generates a key for one page's layout.
	LayoutKey(bookID string, pageNumber int, opts LayoutKeyOpts) string

	// SpreadKey generates a key for a book's spread build.
	SpreadKey(storyHash string, opts SpreadKeyOpts) string

	// MaskKey generates a key for a generated mask.
	MaskKey(bookID string, opts MaskKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for one page's layout.
func (k *DefaultKeyer) LayoutKey(bookID string, pageNumber int, opts LayoutKeyOpts) string {
	return hashKey("layout", bookID, pageNumber, opts)
}

// SpreadKey generates a key for a book's spread build.
func (k *DefaultKeyer) SpreadKey(storyHash string, opts SpreadKeyOpts) string {
	return hashKey("spread", storyHash, opts)
}

// MaskKey generates a key for a generated mask.
func (k *DefaultKeyer) MaskKey(bookID string, opts MaskKeyOpts) string {
	return hashKey("mask", bookID, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
