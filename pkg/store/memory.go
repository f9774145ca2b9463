package store

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/foldline/storypress/pkg/book"
	sperrors "github.com/foldline/storypress/pkg/errors"
	"github.com/foldline/storypress/pkg/layout"
)

// MemoryStore is an in-process Store for tests and offline CLI use.
// Loaded layouts pass through the same sanitizer gate as the Mongo store so
// both backends have identical migration behavior.
type MemoryStore struct {
	mu      sync.RWMutex
	stories map[string]book.Story
	ills    map[string]book.Illustrations
	layouts map[string]map[int]layout.PageLayout
	logger  *log.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *log.Logger) *MemoryStore {
	if logger == nil {
		logger = log.Default()
	}
	return &MemoryStore{
		stories: make(map[string]book.Story),
		ills:    make(map[string]book.Illustrations),
		layouts: make(map[string]map[int]layout.PageLayout),
		logger:  logger,
	}
}

// SaveStory upserts a story by its book ID.
func (s *MemoryStore) SaveStory(ctx context.Context, st *book.Story) error {
	if st == nil || st.BookID == "" {
		return sperrors.New(sperrors.ErrCodeInvalidInput, "story must have a book ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[st.BookID] = *st
	return nil
}

// LoadStory retrieves a story. Returns nil, nil when not found.
func (s *MemoryStore) LoadStory(ctx context.Context, bookID string) (*book.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stories[bookID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// SaveIllustrations replaces the illustration set for a book.
func (s *MemoryStore) SaveIllustrations(ctx context.Context, bookID string, ills book.Illustrations) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ills[bookID] = append(book.Illustrations(nil), ills...)
	return nil
}

// LoadIllustrations retrieves a book's illustrations.
func (s *MemoryStore) LoadIllustrations(ctx context.Context, bookID string) (book.Illustrations, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(book.Illustrations(nil), s.ills[bookID]...), nil
}

// SaveLayouts replaces the stored page layouts for a book.
func (s *MemoryStore) SaveLayouts(ctx context.Context, bookID string, layouts map[int]layout.PageLayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[int]layout.PageLayout, len(layouts))
	for page, l := range layouts {
		copied[page] = l
	}
	s.layouts[bookID] = copied
	return nil
}

// LoadLayouts retrieves a book's stored layouts, sanitized.
func (s *MemoryStore) LoadLayouts(ctx context.Context, bookID string) (map[int]layout.PageLayout, error) {
	s.mu.RLock()
	stored := s.layouts[bookID]
	raw := make(map[int]*layout.PageLayout, len(stored))
	for page, l := range stored {
		copied := l
		raw[page] = &copied
	}
	s.mu.RUnlock()

	return sanitizeStored(raw, s.logger), nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
