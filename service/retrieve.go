package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/viant/cpicrag/schema"
)

// DefaultDepth is the depth tag used when a request omits it.
const DefaultDepth = "summary"

// Query identifies a gene, drug and phenotype combination.
type Query struct {
	Gene      string
	Drug      string
	Phenotype string
	Depth     string
}

// FormatQuery renders the retrieval query text.
func FormatQuery(gene, drug, phenotype string) string {
	return fmt.Sprintf("Gene: %s, Drug: %s, Phenotype: %s", gene, drug, phenotype)
}

// Text returns the retrieval query text for q.
func (q Query) Text() string {
	return FormatQuery(q.Gene, q.Drug, q.Phenotype)
}

// Search returns the nearest passages for q, nearest first.
func (s *Service) Search(ctx context.Context, q Query) ([]schema.Document, error) {
	coll, err := s.Collection(ctx)
	if err != nil {
		return nil, err
	}
	embedding, err := s.embedder.EmbedQuery(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	docs, err := coll.Query(ctx, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.collection, err)
	}
	return docs, nil
}

// Retrieve returns the texts of the nearest passages joined by blank lines.
// An empty collection yields an empty string.
func (s *Service) Retrieve(ctx context.Context, q Query) (string, error) {
	docs, err := s.Search(ctx, q)
	if err != nil {
		return "", err
	}
	s.logger.Debug("retrieved", "query", q.Text(), "documents", len(docs))
	return JoinContext(docs), nil
}

// JoinContext concatenates document texts nearest first.
func JoinContext(docs []schema.Document) string {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Content)
	}
	return strings.TrimRightFunc(strings.Join(texts, "\n\n"), unicode.IsSpace)
}
