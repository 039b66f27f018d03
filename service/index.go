package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs/url"
	"github.com/viant/cpicrag/indexer"
	"github.com/viant/cpicrag/indexer/fs"
	"github.com/viant/cpicrag/matching"
	"github.com/viant/cpicrag/matching/option"
)

// IndexRequest defines inputs for indexing.
type IndexRequest struct {
	Root         string
	Folders      []string
	Extensions   []string
	Exclude      []string
	MaxSizeBytes int
	IgnoreFile   string
}

// IndexRequestFromConfig maps corpus settings to an IndexRequest.
func IndexRequestFromConfig(cfg CorpusConfig) IndexRequest {
	return IndexRequest{
		Root:         cfg.Root,
		Folders:      cfg.Folders,
		Extensions:   cfg.Extensions,
		Exclude:      cfg.Exclude,
		MaxSizeBytes: cfg.MaxSizeBytes,
		IgnoreFile:   cfg.IgnoreFile,
	}
}

// Index embeds the corpus under req.Root into the service collection,
// creating it when absent. Re-running over the same corpus overwrites
// entries in place.
func (s *Service) Index(ctx context.Context, req IndexRequest) (*indexer.Result, error) {
	if req.Root == "" {
		return nil, fmt.Errorf("index: corpus root is required")
	}
	extensions := req.Extensions
	if len(extensions) == 0 {
		extensions = []string{".txt"}
	}
	matchOpts := []option.Option{option.WithExtensions(extensions...), option.WithDefaultExclusionPatterns()}
	if len(req.Exclude) > 0 {
		matchOpts = append(matchOpts, option.WithExclusionPatterns(req.Exclude...))
	}
	if req.MaxSizeBytes > 0 {
		matchOpts = append(matchOpts, option.WithMaxIndexableSize(req.MaxSizeBytes))
	}
	corpus := fs.NewAFS()
	if req.IgnoreFile != "" {
		patterns, err := readIgnoreFile(ctx, corpus, req.Root, req.IgnoreFile)
		if err != nil {
			return nil, err
		}
		matchOpts = append(matchOpts, option.WithIgnoreFile(bytes.NewReader(patterns)))
	}
	opts := []indexer.Option{
		indexer.WithFS(corpus),
		indexer.WithMatcher(matching.New(matchOpts...)),
		indexer.WithModel(s.model),
		indexer.WithLogger(s.logger),
	}
	if len(req.Folders) > 0 {
		opts = append(opts, indexer.WithFolders(req.Folders...))
	}

	coll, err := s.store.GetOrCreateCollection(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	result, err := indexer.New(s.embedder, opts...).Index(ctx, req.Root, coll)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", req.Root, err)
	}
	return result, nil
}

func readIgnoreFile(ctx context.Context, corpus fs.Service, root, location string) ([]byte, error) {
	if url.IsRelative(location) {
		location = url.Join(root, location)
	}
	location, err := fs.Normalize(location)
	if err != nil {
		return nil, err
	}
	data, err := corpus.DownloadURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("index: read ignore file %s: %w", location, err)
	}
	return data, nil
}
