// Package hashing provides an offline, deterministic embedder based on
// signed feature hashing of word tokens. It needs no model server, which
// makes it suitable for tests and air-gapped indexing runs.
package hashing

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"
)

// DefaultDimension matches all-MiniLM-L6-v2 so stores stay interchangeable.
const DefaultDimension = 384

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Embedder maps text to an L2-normalised bag-of-words vector.
type Embedder struct {
	Dim int
}

// New creates an embedder; non-positive dim selects DefaultDimension.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Embedder{Dim: dim}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	out := make([][]float32, len(docs))
	for i, doc := range docs {
		vec, err := e.embed(doc)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text)
}

func (e *Embedder) embed(text string) ([]float32, error) {
	dim := e.Dim
	if dim <= 0 {
		dim = DefaultDimension
	}
	acc := make([]float64, dim)
	for _, token := range Tokenize(text) {
		h, err := Hash([]byte(token))
		if err != nil {
			return nil, err
		}
		idx := int(h % uint64(dim))
		if h>>63 == 1 {
			acc[idx]--
		} else {
			acc[idx]++
		}
	}
	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	vec := make([]float32, dim)
	if norm == 0 {
		return vec, nil
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Hash returns the 64-bit HighwayHash of data.
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	if _, err = h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
