package embeddings

import (
	"context"
	"fmt"
)

// Embedder computes vector embeddings for documents and queries.
// The same instance must be used at index and query time so both land in
// one embedding space.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Single returns the only vector of a one-text embedding call.
func Single(vecs [][]float32, err error) ([]float32, error) {
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 query", len(vecs))
	}
	return vecs[0], nil
}

// CheckCount verifies that an embedder returned one vector per input text.
func CheckCount(vecs [][]float32, texts int) error {
	if len(vecs) != texts {
		return fmt.Errorf("embedder returned %d vectors for %d docs", len(vecs), texts)
	}
	return nil
}
