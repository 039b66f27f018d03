package vertexai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestEmbedder_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		var req predictRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		resp := `{"predictions":[`
		for i := range req.Instances {
			if i > 0 {
				resp += ","
			}
			resp += `{"embeddings":{"values":[0.5,0.25]}}`
		}
		_, _ = w.Write([]byte(resp + `]}`))
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "token-1", TokenType: "Bearer"})
	emb := NewEmbedder("project-1", "", WithTokenSource(ts), WithEndpoint(srv.URL))
	vec, err := emb.EmbedQuery(context.Background(), "CYP2D6")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}

func TestNewClient_RequiresProject(t *testing.T) {
	_, err := NewEmbedder("", "").EmbedQuery(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project id is required")
}

func TestClient_Endpoint(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})
	c, err := NewClient(context.Background(), "p", "", WithLocation("europe-west4"), WithTokenSource(ts))
	require.NoError(t, err)
	assert.Equal(t, "https://europe-west4-aiplatform.googleapis.com/v1/projects/p/locations/europe-west4/publishers/google/models/text-embedding-004:predict", c.endpoint())
}
