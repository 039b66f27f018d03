package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/cpicrag/embeddings/hashing"
	"github.com/viant/cpicrag/embeddings/ollama"
	"github.com/viant/cpicrag/embeddings/openai"
	"github.com/viant/cpicrag/embeddings/vertexai"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EmbedderConfig
		check   func(t *testing.T, v interface{})
		wantErr bool
	}{
		{
			name: "default is ollama",
			cfg:  EmbedderConfig{},
			check: func(t *testing.T, v interface{}) {
				e, ok := v.(*ollama.Embedder)
				require.True(t, ok)
				assert.Equal(t, ollama.DefaultModel, e.C.Model)
			},
		},
		{
			name: "openai",
			cfg:  EmbedderConfig{Name: "OpenAI", Model: "text-embedding-3-small", APIKey: "k"},
			check: func(t *testing.T, v interface{}) {
				e, ok := v.(*openai.Embedder)
				require.True(t, ok)
				assert.Equal(t, "k", e.C.APIKey)
			},
		},
		{
			name: "vertexai",
			cfg:  EmbedderConfig{Name: "vertexai", Project: "p"},
			check: func(t *testing.T, v interface{}) {
				_, ok := v.(*vertexai.Embedder)
				assert.True(t, ok)
			},
		},
		{
			name:    "vertexai requires project",
			cfg:     EmbedderConfig{Name: "vertexai"},
			wantErr: true,
		},
		{
			name: "hashing",
			cfg:  EmbedderConfig{Name: "hashing", Dimension: 16},
			check: func(t *testing.T, v interface{}) {
				e, ok := v.(*hashing.Embedder)
				require.True(t, ok)
				assert.Equal(t, 16, e.Dim)
			},
		},
		{
			name:    "unknown",
			cfg:     EmbedderConfig{Name: "bert"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEmbedder(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "ollama/all-minilm", ModelName(EmbedderConfig{}))
	assert.Equal(t, "openai/text-embedding-3-small", ModelName(EmbedderConfig{Name: "openai", Model: "text-embedding-3-small"}))
	assert.Equal(t, "hashing-384", ModelName(EmbedderConfig{Name: "hashing"}))
	assert.Equal(t, "vertexai", ModelName(EmbedderConfig{Name: "vertexai"}))
}
