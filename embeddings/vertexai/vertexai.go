package vertexai

import (
	"context"
	"sync"

	"github.com/viant/cpicrag/embeddings"
)

// Embedder lazily builds a Client on first use, so credentials are only
// resolved when an embedding is actually requested.
type Embedder struct {
	projectID string
	model     string
	opts      []ClientOption

	mu      sync.Mutex
	client  *Client
	initErr error
}

func NewEmbedder(projectID, model string, opts ...ClientOption) *Embedder {
	return &Embedder{
		projectID: projectID,
		model:     model,
		opts:      opts,
	}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}
	vecs, err := client.Embed(ctx, docs)
	if err != nil {
		return nil, err
	}
	if err := embeddings.CheckCount(vecs, len(docs)); err != nil {
		return nil, err
	}
	return vecs, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return embeddings.Single(e.EmbedDocuments(ctx, []string{text}))
}

func (e *Embedder) getClient(ctx context.Context) (*Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil || e.initErr != nil {
		return e.client, e.initErr
	}
	e.client, e.initErr = NewClient(ctx, e.projectID, e.model, e.opts...)
	return e.client, e.initErr
}
