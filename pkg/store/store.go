// Package store persists stories, illustrations, and page layouts.
//
// Stored layouts may predate the decoration removal; every load path runs
// them through the layout sanitizer before they re-enter the engine or the
// export pipeline, so deprecated fields never escape this package.
package store

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/layout"
)

// Store is the persistence interface for book data.
type Store interface {
	// SaveStory upserts a story by its book ID.
	SaveStory(ctx context.Context, s *book.Story) error

	// LoadStory retrieves a story. Returns nil, nil when not found.
	LoadStory(ctx context.Context, bookID string) (*book.Story, error)

	// SaveIllustrations replaces the illustration set for a book.
	SaveIllustrations(ctx context.Context, bookID string, ills book.Illustrations) error

	// LoadIllustrations retrieves a book's illustrations.
	// Returns an empty set when none exist.
	LoadIllustrations(ctx context.Context, bookID string) (book.Illustrations, error)

	// SaveLayouts replaces the stored page layouts for a book.
	SaveLayouts(ctx context.Context, bookID string, layouts map[int]layout.PageLayout) error

	// LoadLayouts retrieves a book's stored layouts, sanitized.
	// Pages that fail sanitization are dropped, not propagated.
	LoadLayouts(ctx context.Context, bookID string) (map[int]layout.PageLayout, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// sanitizeStored is the shared migration gate for loaded layouts.
func sanitizeStored(raw map[int]*layout.PageLayout, logger *log.Logger) map[int]layout.PageLayout {
	return layout.SanitizeBookLayouts(raw, logger)
}
