package schema

// Document is one collection entry as returned by a similarity query.
type Document struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	// Score is the cosine similarity to the query; higher is nearer.
	Score float32 `json:"score,omitempty"`
}
