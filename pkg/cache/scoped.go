package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The preview server scopes cache entries per book owner so one user's
// regenerations never evict or collide with another's.
//
// Example usage:
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for a page layout.
func (k *ScopedKeyer) LayoutKey(bookID string, pageNumber int, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(bookID, pageNumber, opts)
}

// SpreadKey generates a prefixed key for a spread build.
func (k *ScopedKeyer) SpreadKey(storyHash string, opts SpreadKeyOpts) string {
	return k.prefix + k.inner.SpreadKey(storyHash, opts)
}

// MaskKey generates a prefixed key for a mask.
func (k *ScopedKeyer) MaskKey(bookID string, opts MaskKeyOpts) string {
	return k.prefix + k.inner.MaskKey(bookID, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
