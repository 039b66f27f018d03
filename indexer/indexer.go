package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/cpicrag/embeddings"
	"github.com/viant/cpicrag/embeddings/hashing"
	"github.com/viant/cpicrag/indexer/fs"
	"github.com/viant/cpicrag/matching"
	"github.com/viant/cpicrag/matching/option"
	"github.com/viant/cpicrag/vectordb/meta"
	"github.com/viant/cpicrag/vectordb/sqlitevec"
)

// Sink receives indexed entries; *sqlitevec.Collection implements it.
type Sink interface {
	Add(ctx context.Context, entries ...sqlitevec.Entry) error
}

// Indexer embeds every accepted corpus file into a Sink.
type Indexer struct {
	fs       fs.Service
	embedder embeddings.Embedder
	matcher  *matching.Manager
	folders  []string
	model    string
	logger   *slog.Logger
}

// Result summarizes an indexing run.
type Result struct {
	Folders   int
	Documents int
	Skipped   int
	IDs       []string
	Elapsed   time.Duration
}

// New creates an Indexer for embedder.
func New(embedder embeddings.Embedder, opts ...Option) *Indexer {
	i := &Indexer{embedder: embedder}
	for _, opt := range opts {
		opt(i)
	}
	if i.fs == nil {
		i.fs = fs.NewAFS()
	}
	if len(i.folders) == 0 {
		i.folders = DefaultFolders
	}
	if i.matcher == nil {
		i.matcher = matching.New(option.WithExtensions(".txt"))
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	return i
}

// DocumentID returns the entry id of a file in a corpus folder.
func DocumentID(folder, name string) string {
	return folder + "_" + name
}

// Index walks every configured folder under root and adds one entry per
// accepted file to sink. Any missing folder, read, embed or add failure
// aborts the run.
func (i *Indexer) Index(ctx context.Context, root string, sink Sink) (*Result, error) {
	if i.embedder == nil {
		return nil, fmt.Errorf("indexer: embedder required")
	}
	start := time.Now()
	base, err := fs.Normalize(root)
	if err != nil {
		return nil, err
	}
	result := &Result{}
	i.logger.Info("index start", "root", root, "folders", i.folders)
	for _, folder := range i.folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := i.indexFolder(ctx, base, folder, sink, result); err != nil {
			return nil, err
		}
		result.Folders++
	}
	result.Elapsed = time.Since(start)
	i.logger.Info("index done", "root", root, "documents", result.Documents, "skipped", result.Skipped, "elapsed", result.Elapsed)
	return result, nil
}

func (i *Indexer) indexFolder(ctx context.Context, base, folder string, sink Sink, result *Result) error {
	location := url.Join(base, folder)
	ok, err := i.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("indexer: check %s: %w", location, err)
	}
	if !ok {
		return fmt.Errorf("indexer: source folder %s not found", location)
	}
	objects, err := i.fs.List(ctx, location)
	if err != nil {
		return fmt.Errorf("indexer: list %s: %w", location, err)
	}
	sort.Slice(objects, func(a, b int) bool { return objects[a].Name() < objects[b].Name() })
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		if !i.matcher.Accepts(folder+"/"+object.Name(), int(object.Size())) {
			result.Skipped++
			continue
		}
		id, err := i.indexFile(ctx, folder, object, sink)
		if err != nil {
			return err
		}
		result.Documents++
		result.IDs = append(result.IDs, id)
	}
	return nil
}

func (i *Indexer) indexFile(ctx context.Context, folder string, object storage.Object, sink Sink) (string, error) {
	path := folder + "/" + object.Name()
	data, err := i.fs.Download(ctx, object)
	if err != nil {
		return "", fmt.Errorf("indexer: read %s: %w", path, err)
	}
	content := string(data)
	vectors, err := i.embedder.EmbedDocuments(ctx, []string{content})
	if err != nil {
		return "", fmt.Errorf("indexer: embed %s: %w", path, err)
	}
	if err := embeddings.CheckCount(vectors, 1); err != nil {
		return "", fmt.Errorf("indexer: embed %s: %w", path, err)
	}
	sum, err := hashing.Hash(data)
	if err != nil {
		return "", fmt.Errorf("indexer: hash %s: %w", path, err)
	}
	metadata := map[string]interface{}{
		meta.SourceKey: folder,
		meta.PathKey:   path,
		meta.HashKey:   strconv.FormatUint(sum, 16),
	}
	if i.model != "" {
		metadata[meta.ModelKey] = i.model
	}
	id := DocumentID(folder, object.Name())
	entry := sqlitevec.Entry{ID: id, Content: content, Embedding: vectors[0], Metadata: metadata}
	if err := sink.Add(ctx, entry); err != nil {
		return "", fmt.Errorf("indexer: add %s: %w", path, err)
	}
	i.logger.Debug("indexed", "id", id, "path", path, "bytes", len(data))
	return id, nil
}
