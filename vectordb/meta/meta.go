package meta

// Metadata keys stored with every collection entry.
const (
	SourceKey = "source"
	PathKey   = "path"
	HashKey   = "hash"
	ModelKey  = "embedding_model"
)

// GetString returns the string value stored under key, or "" when the key
// is absent or not a string.
func GetString(metadata map[string]interface{}, key string) string {
	text, _ := metadata[key].(string)
	return text
}

// Source returns the corpus folder an entry was indexed from.
func Source(metadata map[string]interface{}) string {
	return GetString(metadata, SourceKey)
}
