package store

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sperrors "github.com/foldline/storypress/pkg/errors"
	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/layout"
)

// Collection names.
const (
	collStories       = "stories"
	collIllustrations = "illustrations"
	collLayouts       = "layouts"
)

// MongoStore persists book data in MongoDB.
// Documents are keyed by book ID; layouts are stored one document per book
// with a page-number keyed array.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *log.Logger
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig, logger *log.Logger) (*MongoStore, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, sperrors.Wrap(sperrors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, sperrors.Wrap(sperrors.ErrCodeStore, err, "ping mongodb")
	}

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

// storyDoc wraps a story for storage.
type storyDoc struct {
	BookID string     `bson:"_id"`
	Story  book.Story `bson:"story"`
}

// illustrationsDoc wraps a book's illustration set.
type illustrationsDoc struct {
	BookID        string             `bson:"_id"`
	Illustrations book.Illustrations `bson:"illustrations"`
}

// layoutsDoc wraps a book's stored layouts.
// Layouts written by older releases may still carry deprecated decoration
// fields; they are sanitized on load, never on write.
type layoutsDoc struct {
	BookID  string              `bson:"_id"`
	Layouts []layout.PageLayout `bson:"layouts"`
}

// SaveStory upserts a story by its book ID.
func (s *MongoStore) SaveStory(ctx context.Context, st *book.Story) error {
	if st == nil || st.BookID == "" {
		return sperrors.New(sperrors.ErrCodeInvalidInput, "story must have a book ID")
	}
	doc := storyDoc{BookID: st.BookID, Story: *st}
	_, err := s.db.Collection(collStories).ReplaceOne(
		ctx, bson.M{"_id": st.BookID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return sperrors.Wrap(sperrors.ErrCodeStore, err, "save story %s", st.BookID)
	}
	return nil
}

// LoadStory retrieves a story. Returns nil, nil when not found.
func (s *MongoStore) LoadStory(ctx context.Context, bookID string) (*book.Story, error) {
	var doc storyDoc
	err := s.db.Collection(collStories).FindOne(ctx, bson.M{"_id": bookID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, sperrors.Wrap(sperrors.ErrCodeStore, err, "load story %s", bookID)
	}
	return &doc.Story, nil
}

// SaveIllustrations replaces the illustration set for a book.
func (s *MongoStore) SaveIllustrations(ctx context.Context, bookID string, ills book.Illustrations) error {
	doc := illustrationsDoc{BookID: bookID, Illustrations: ills}
	_, err := s.db.Collection(collIllustrations).ReplaceOne(
		ctx, bson.M{"_id": bookID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return sperrors.Wrap(sperrors.ErrCodeStore, err, "save illustrations %s", bookID)
	}
	return nil
}

// LoadIllustrations retrieves a book's illustrations.
func (s *MongoStore) LoadIllustrations(ctx context.Context, bookID string) (book.Illustrations, error) {
	var doc illustrationsDoc
	err := s.db.Collection(collIllustrations).FindOne(ctx, bson.M{"_id": bookID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return book.Illustrations{}, nil
	}
	if err != nil {
		return nil, sperrors.Wrap(sperrors.ErrCodeStore, err, "load illustrations %s", bookID)
	}
	return doc.Illustrations, nil
}

// SaveLayouts replaces the stored page layouts for a book.
func (s *MongoStore) SaveLayouts(ctx context.Context, bookID string, layouts map[int]layout.PageLayout) error {
	doc := layoutsDoc{BookID: bookID, Layouts: make([]layout.PageLayout, 0, len(layouts))}
	for _, l := range layouts {
		doc.Layouts = append(doc.Layouts, l)
	}
	_, err := s.db.Collection(collLayouts).ReplaceOne(
		ctx, bson.M{"_id": bookID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return sperrors.Wrap(sperrors.ErrCodeStore, err, "save layouts %s", bookID)
	}
	return nil
}

// LoadLayouts retrieves a book's stored layouts, sanitized.
// This is the migration gate: deprecated decoration fields written by older
// releases are stripped here, and a page that fails sanitization is logged
// and dropped rather than blocking the rest of the book.
func (s *MongoStore) LoadLayouts(ctx context.Context, bookID string) (map[int]layout.PageLayout, error) {
	var doc layoutsDoc
	err := s.db.Collection(collLayouts).FindOne(ctx, bson.M{"_id": bookID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return map[int]layout.PageLayout{}, nil
	}
	if err != nil {
		return nil, sperrors.Wrap(sperrors.ErrCodeStore, err, "load layouts %s", bookID)
	}

	raw := make(map[int]*layout.PageLayout, len(doc.Layouts))
	for i := range doc.Layouts {
		raw[doc.Layouts[i].PageNumber] = &doc.Layouts[i]
	}
	return sanitizeStored(raw, s.logger), nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
