package indexer

import (
	"log/slog"

	"github.com/viant/cpicrag/indexer/fs"
	"github.com/viant/cpicrag/matching"
)

// DefaultFolders are the corpus folders indexed when none are configured.
var DefaultFolders = []string{"cpic", "phenotypes", "mechanisms"}

// Option configures an Indexer.
type Option func(*Indexer)

// WithFS sets the corpus filesystem service.
func WithFS(service fs.Service) Option {
	return func(i *Indexer) { i.fs = service }
}

// WithFolders sets the folders (relative to the corpus root) to index.
func WithFolders(folders ...string) Option {
	return func(i *Indexer) { i.folders = folders }
}

// WithMatcher sets the file acceptance rules.
func WithMatcher(matcher *matching.Manager) Option {
	return func(i *Indexer) { i.matcher = matcher }
}

// WithModel records the embedding model name in entry metadata.
func WithModel(model string) Option {
	return func(i *Indexer) { i.model = model }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Indexer) { i.logger = logger }
}
