package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/cpicrag/embeddings"
	"github.com/viant/cpicrag/vectordb/sqlitevec"
)

// DefaultTopK is the number of passages retrieved per query.
const DefaultTopK = 3

// Option configures the Service.
type Option func(*Service)

// WithStore sets the vector store.
func WithStore(store *sqlitevec.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithEmbedder sets the embedder used for documents and queries.
func WithEmbedder(embedder embeddings.Embedder) Option {
	return func(s *Service) { s.embedder = embedder }
}

// WithCollection sets the collection name.
func WithCollection(name string) Option {
	return func(s *Service) { s.collection = name }
}

// WithModel sets the embedding model label recorded with indexed entries.
func WithModel(model string) Option {
	return func(s *Service) { s.model = model }
}

// WithTopK overrides the number of retrieved passages.
func WithTopK(k int) Option {
	return func(s *Service) { s.topK = k }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service exposes indexing and retrieval over one collection.
type Service struct {
	store      *sqlitevec.Store
	embedder   embeddings.Embedder
	collection string
	model      string
	topK       int
	logger     *slog.Logger
	ownsStore  bool
}

// NewService creates a new Service.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{collection: DefaultCollection, topK: DefaultTopK}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		return nil, fmt.Errorf("service: store is required")
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("service: embedder is required")
	}
	if s.collection == "" {
		s.collection = DefaultCollection
	}
	if s.topK <= 0 {
		s.topK = DefaultTopK
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Open builds a Service from cfg, opening the store it points to. The
// returned Service owns the store and closes it on Close.
func Open(ctx context.Context, cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	embedder, err := NewEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	model := ModelName(cfg.Embedder)
	store, err := sqlitevec.Open(ctx,
		sqlitevec.WithDSN(cfg.Store.DSN),
		sqlitevec.WithEmbeddingModel(model),
		sqlitevec.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	s, err := NewService(
		WithStore(store),
		WithEmbedder(embedder),
		WithCollection(cfg.Store.Collection),
		WithModel(model),
		WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	s.ownsStore = true
	return s, nil
}

// Close releases an owned store.
func (s *Service) Close() error {
	if s.ownsStore && s.store != nil {
		return s.store.Close()
	}
	return nil
}

// CollectionName returns the collection the service reads and writes.
func (s *Service) CollectionName() string { return s.collection }

// Collection returns the service collection, or an error wrapping
// sqlitevec.ErrCollectionNotFound when it was never indexed.
func (s *Service) Collection(ctx context.Context) (*sqlitevec.Collection, error) {
	return s.store.GetCollection(ctx, s.collection)
}

// Collections lists every collection in the store.
func (s *Service) Collections(ctx context.Context) ([]sqlitevec.CollectionInfo, error) {
	return s.store.Collections(ctx)
}
