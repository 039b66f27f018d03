package service

import (
	"fmt"
	"strings"

	"github.com/viant/cpicrag/embeddings"
	"github.com/viant/cpicrag/embeddings/hashing"
	"github.com/viant/cpicrag/embeddings/ollama"
	"github.com/viant/cpicrag/embeddings/openai"
	"github.com/viant/cpicrag/embeddings/vertexai"
)

// Embedder provider names.
const (
	EmbedderOllama   = "ollama"
	EmbedderOpenAI   = "openai"
	EmbedderVertexAI = "vertexai"
	EmbedderHashing  = "hashing"
)

// NewEmbedder builds the embedding provider named by cfg.
func NewEmbedder(cfg EmbedderConfig) (embeddings.Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "", EmbedderOllama:
		model := cfg.Model
		if model == "" {
			model = ollama.DefaultModel
		}
		return ollama.NewEmbedder(model, cfg.BaseURL), nil
	case EmbedderOpenAI:
		return &openai.Embedder{C: openai.NewClient(cfg.APIKey, cfg.Model, cfg.BaseURL)}, nil
	case EmbedderVertexAI:
		if cfg.Project == "" {
			return nil, fmt.Errorf("embedder %q: project is required", cfg.Name)
		}
		var opts []vertexai.ClientOption
		if cfg.Location != "" {
			opts = append(opts, vertexai.WithLocation(cfg.Location))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, vertexai.WithEndpoint(cfg.BaseURL))
		}
		return vertexai.NewEmbedder(cfg.Project, cfg.Model, opts...), nil
	case EmbedderHashing:
		return hashing.New(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedder: %q", cfg.Name)
	}
}

// ModelName returns the label stored with entries for cfg.
func ModelName(cfg EmbedderConfig) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = EmbedderOllama
	}
	switch {
	case name == EmbedderHashing:
		dim := cfg.Dimension
		if dim <= 0 {
			dim = hashing.DefaultDimension
		}
		return fmt.Sprintf("%s-%d", name, dim)
	case cfg.Model == "" && name == EmbedderOllama:
		return name + "/" + ollama.DefaultModel
	case cfg.Model == "":
		return name
	}
	return name + "/" + cfg.Model
}
