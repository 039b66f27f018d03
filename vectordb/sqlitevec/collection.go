package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/viant/cpicrag/schema"
	"github.com/viant/cpicrag/vectordb/meta"
	"github.com/viant/sqlite-vec/vector"
)

// Entry is the persisted unit of a collection.
type Entry struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]interface{}
}

// Collection is a named set of entries inside a Store.
type Collection struct {
	store *Store
	name  string
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Add upserts entries. Re-adding an existing id overwrites its content,
// embedding and metadata, so repeated runs never duplicate entries.
func (c *Collection) Add(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	dim, err := c.dimension(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("sqlitevec: entry id required")
		}
		if len(e.Embedding) == 0 {
			return fmt.Errorf("sqlitevec: entry %q has no embedding", e.ID)
		}
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: entry %q has %d, collection %q has %d", ErrDimensionMismatch, e.ID, len(e.Embedding), c.name, dim)
		}
		if isZeroVector(e.Embedding) {
			c.store.logger.Warn("zero-magnitude embedding, entry ranks last", "collection", c.name, "id", e.ID)
		}
	}

	s := c.store
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s(dataset_id, id, content, meta, embedding, embedding_model)
VALUES(?,?,?,?,?,?)
ON CONFLICT(dataset_id, id) DO UPDATE SET
	content=excluded.content,
	meta=excluded.meta,
	embedding=excluded.embedding,
	embedding_model=excluded.embedding_model`, s.shadow))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		metaJSON, err := encodeMeta(e.Metadata)
		if err != nil {
			return fmt.Errorf("sqlitevec: encode meta for %q: %w", e.ID, err)
		}
		blob, err := vector.EncodeEmbedding(e.Embedding)
		if err != nil {
			return err
		}
		model := s.embedModel
		if v := meta.GetString(e.Metadata, meta.ModelKey); v != "" {
			model = v
		}
		if _, err := stmt.ExecContext(ctx, c.name, e.ID, e.Content, metaJSON, blob, model); err != nil {
			return fmt.Errorf("sqlitevec: upsert %q: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Query returns up to k entries nearest to embedding, nearest first.
// An empty collection yields no documents and no error.
func (c *Collection) Query(ctx context.Context, embedding []float32, k int) ([]schema.Document, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("sqlitevec: query embedding required")
	}
	if k <= 0 {
		k = 10
	}
	dim, err := c.dimension(ctx)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, nil
	}
	if dim != len(embedding) {
		return nil, fmt.Errorf("%w: query has %d, collection %q has %d", ErrDimensionMismatch, len(embedding), c.name, dim)
	}
	blob, err := vector.EncodeEmbedding(embedding)
	if err != nil {
		return nil, err
	}
	s := c.store
	if !s.matchDisabled {
		docs, err := c.matchQuery(ctx, blob, k)
		if err == nil {
			return docs, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		level := slog.LevelWarn
		if isVecUnavailable(err, s.vtable) {
			level = slog.LevelDebug
		}
		s.logger.Log(ctx, level, "vec match failed, falling back to scan", "collection", c.name, "err", err)
	}
	return c.scanQuery(ctx, embedding, k)
}

func (c *Collection) matchQuery(ctx context.Context, blob []byte, k int) ([]schema.Document, error) {
	s := c.store
	query := fmt.Sprintf(`SELECT d.id, d.content, d.meta, v.match_score
FROM %s v
JOIN %s d ON d.dataset_id = v.dataset_id AND d.id = v.doc_id
WHERE v.dataset_id = ?
  AND v.doc_id MATCH ?
ORDER BY v.match_score DESC, d.id
LIMIT ?`, s.vtable, s.shadow)

	rows, err := s.db.QueryContext(ctx, query, c.name, blob, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var id, content string
		var metaJSON sql.NullString
		var score float64
		if err := rows.Scan(&id, &content, &metaJSON, &score); err != nil {
			return nil, err
		}
		metaMap, err := decodeMeta(metaJSON.String)
		if err != nil {
			return nil, err
		}
		docs = append(docs, schema.Document{ID: id, Content: content, Metadata: metaMap, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// scanQuery ranks every entry by cosine similarity in process. It is used
// when the vec module is not available on the connection.
func (c *Collection) scanQuery(ctx context.Context, embedding []float32, k int) ([]schema.Document, error) {
	s := c.store
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, content, meta, embedding FROM %s WHERE dataset_id = ?`, s.shadow), c.name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []schema.Document
	for rows.Next() {
		var id, content string
		var metaJSON sql.NullString
		var blob []byte
		if err := rows.Scan(&id, &content, &metaJSON, &blob); err != nil {
			return nil, err
		}
		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		score, err := vector.CosineSimilarity(embedding, vec)
		if err != nil {
			// zero-magnitude vectors have no direction; they rank last
			score = 0
		}
		metaMap, err := decodeMeta(metaJSON.String)
		if err != nil {
			return nil, err
		}
		docs = append(docs, schema.Document{ID: id, Content: content, Metadata: metaMap, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Score != docs[j].Score {
			return docs[i].Score > docs[j].Score
		}
		return docs[i].ID < docs[j].ID
	})
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

// Count returns the number of entries.
func (c *Collection) Count(ctx context.Context) (int64, error) {
	var n int64
	err := c.store.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE dataset_id = ?`, c.store.shadow), c.name).Scan(&n)
	return n, err
}

// Get returns a single entry by id.
func (c *Collection) Get(ctx context.Context, id string) (*Entry, error) {
	var content string
	var metaJSON sql.NullString
	var blob []byte
	err := c.store.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT content, meta, embedding FROM %s WHERE dataset_id = ? AND id = ?`, c.store.shadow), c.name, id).
		Scan(&content, &metaJSON, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	vec, err := vector.DecodeEmbedding(blob)
	if err != nil {
		return nil, err
	}
	metaMap, err := decodeMeta(metaJSON.String)
	if err != nil {
		return nil, err
	}
	return &Entry{ID: id, Content: content, Embedding: vec, Metadata: metaMap}, nil
}

// dimension returns the embedding length stored in the collection, 0 when empty.
func (c *Collection) dimension(ctx context.Context) (int, error) {
	var n sql.NullInt64
	err := c.store.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT length(embedding) FROM %s WHERE dataset_id = ? LIMIT 1`, c.store.shadow), c.name).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(n.Int64) / 4, nil
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func encodeMeta(m map[string]interface{}) (string, error) {
	if m == nil {
		m = map[string]interface{}{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMeta(s string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
