package ollama

import (
	"context"
	"fmt"

	"github.com/viant/cpicrag/embeddings"
)

// Embedder adapts Client to embeddings.Embedder.
type Embedder struct {
	C *Client
}

// NewEmbedder creates an Ollama backed embedder.
func NewEmbedder(model, baseURL string, opts ...ClientOption) *Embedder {
	return &Embedder{C: NewClient(model, append([]ClientOption{WithBaseURL(baseURL)}, opts...)...)}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	if e == nil || e.C == nil {
		return nil, fmt.Errorf("ollama embedder not configured")
	}
	vecs, _, err := e.C.Embed(ctx, docs)
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
