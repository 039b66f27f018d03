package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	emb := New(0)
	a, err := emb.EmbedQuery(ctx, "Codeine is metabolized by CYP2D6.")
	require.NoError(t, err)
	b, err := New(DefaultDimension).EmbedQuery(ctx, "Codeine is metabolized by CYP2D6.")
	require.NoError(t, err)
	assert.Len(t, a, DefaultDimension)
	assert.Equal(t, a, b)

	docs, err := emb.EmbedDocuments(ctx, []string{"Codeine is metabolized by CYP2D6."})
	require.NoError(t, err)
	assert.Equal(t, a, docs[0])
}

func TestEmbedder_Normalised(t *testing.T) {
	vec, err := New(64).EmbedQuery(context.Background(), "poor metabolizer")
	require.NoError(t, err)
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestEmbedder_EmptyText(t *testing.T) {
	vec, err := New(8).EmbedQuery(context.Background(), "  ...  ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

func TestEmbedder_SimilarTextsCloser(t *testing.T) {
	ctx := context.Background()
	emb := New(0)
	query, _ := emb.EmbedQuery(ctx, "codeine CYP2D6")
	near, _ := emb.EmbedQuery(ctx, "Codeine is metabolized by CYP2D6.")
	far, _ := emb.EmbedQuery(ctx, "Warfarin dosing depends on VKORC1.")
	assert.Greater(t, cosine(query, near), cosine(query, far))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"gene", "cyp2d6", "drug", "codeine"}, Tokenize("Gene: CYP2D6, Drug: codeine"))
}
