package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs/storage"
	"github.com/viant/cpicrag/embeddings/hashing"
	"github.com/viant/cpicrag/indexer/fs"
	"github.com/viant/cpicrag/matching"
	"github.com/viant/cpicrag/matching/option"
	"github.com/viant/cpicrag/vectordb/meta"
	"github.com/viant/cpicrag/vectordb/sqlitevec"
)

type memorySink struct {
	entries map[string]sqlitevec.Entry
	order   []string
}

func (m *memorySink) Add(ctx context.Context, entries ...sqlitevec.Entry) error {
	if m.entries == nil {
		m.entries = map[string]sqlitevec.Entry{}
	}
	for _, e := range entries {
		if _, ok := m.entries[e.ID]; !ok {
			m.order = append(m.order, e.ID)
		}
		m.entries[e.ID] = e
	}
	return nil
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedDocuments(ctx context.Context, docs []string) ([][]float32, error) {
	return nil, errors.New("provider down")
}

func (failingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("provider down")
}

type failingReadFS struct {
	fs.Service
	failName string
}

func (f *failingReadFS) Download(ctx context.Context, object storage.Object) ([]byte, error) {
	if object.Name() == f.failName {
		return nil, errors.New("permission denied")
	}
	return f.Service.Download(ctx, object)
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for _, folder := range DefaultFolders {
		require.NoError(t, os.MkdirAll(filepath.Join(root, folder), 0o755))
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestIndexer_Index(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"cpic/b.txt":             "CYP2C19 poor metabolizers should avoid clopidogrel.",
		"cpic/a.txt":             "Codeine is metabolized by CYP2D6.",
		"cpic/notes.md":          "not indexed",
		"cpic/nested/deep.txt":   "nested folders are not walked",
		"phenotypes/poor.txt":    "Poor metabolizers have two no-function alleles.",
		"mechanisms/prodrug.txt": "Prodrugs require activation.",
		"unlisted/ignored.txt":   "outside configured folders",
	})
	sink := &memorySink{}
	idx := New(hashing.New(64), WithModel("hashing-64"))

	result, err := idx.Index(context.Background(), root, sink)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Folders)
	assert.Equal(t, 4, result.Documents)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"cpic_a.txt", "cpic_b.txt", "phenotypes_poor.txt", "mechanisms_prodrug.txt"}, result.IDs)
	assert.Equal(t, result.IDs, sink.order)

	entry := sink.entries["cpic_a.txt"]
	assert.Equal(t, "Codeine is metabolized by CYP2D6.", entry.Content)
	assert.Len(t, entry.Embedding, 64)
	assert.Equal(t, "cpic", entry.Metadata[meta.SourceKey])
	assert.Equal(t, "cpic/a.txt", entry.Metadata[meta.PathKey])
	assert.Equal(t, "hashing-64", entry.Metadata[meta.ModelKey])
	assert.NotEmpty(t, entry.Metadata[meta.HashKey])
}

func TestIndexer_IndexIsDeterministic(t *testing.T) {
	root := writeCorpus(t, map[string]string{"cpic/a.txt": "Codeine is metabolized by CYP2D6."})
	idx := New(hashing.New(32))

	first, second := &memorySink{}, &memorySink{}
	_, err := idx.Index(context.Background(), root, first)
	require.NoError(t, err)
	_, err = idx.Index(context.Background(), root, second)
	require.NoError(t, err)
	assert.Equal(t, first.entries, second.entries)
}

func TestIndexer_IndexErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		indexer *Indexer
		errText string
		added   []string
	}{
		{
			name: "missing folder",
			setup: func(t *testing.T) string {
				root := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(root, "cpic"), 0o755))
				return root
			},
			indexer: New(hashing.New(8)),
			errText: "phenotypes not found",
		},
		{
			name: "embed failure names the file",
			setup: func(t *testing.T) string {
				return writeCorpus(t, map[string]string{"cpic/a.txt": "text"})
			},
			indexer: New(failingEmbedder{}),
			errText: "embed cpic/a.txt: provider down",
		},
		{
			name: "embedder required",
			setup: func(t *testing.T) string {
				return writeCorpus(t, nil)
			},
			indexer: New(nil),
			errText: "embedder required",
		},
		{
			name: "read failure aborts the run",
			setup: func(t *testing.T) string {
				return writeCorpus(t, map[string]string{
					"cpic/a.txt":          "Codeine is metabolized by CYP2D6.",
					"cpic/b.txt":          "Clopidogrel needs CYP2C19.",
					"phenotypes/poor.txt": "Poor metabolizers have two no-function alleles.",
				})
			},
			indexer: New(hashing.New(8), WithFS(&failingReadFS{Service: fs.NewAFS(), failName: "a.txt"})),
			errText: "read cpic/a.txt: permission denied",
		},
		{
			name: "read failure keeps earlier entries only",
			setup: func(t *testing.T) string {
				return writeCorpus(t, map[string]string{
					"cpic/a.txt":          "Codeine is metabolized by CYP2D6.",
					"cpic/b.txt":          "Clopidogrel needs CYP2C19.",
					"phenotypes/poor.txt": "Poor metabolizers have two no-function alleles.",
				})
			},
			indexer: New(hashing.New(8), WithFS(&failingReadFS{Service: fs.NewAFS(), failName: "b.txt"})),
			errText: "read cpic/b.txt: permission denied",
			added:   []string{"cpic_a.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tt.setup(t)
			sink := &memorySink{}
			_, err := tt.indexer.Index(context.Background(), root, sink)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
			assert.Equal(t, tt.added, sink.order)
		})
	}
}

func TestIndexer_PatternsIgnoreDirectoriesAboveRoot(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "archive")
	require.NoError(t, os.MkdirAll(parent, 0o755))
	root := filepath.Join(parent, "rag_data")
	for _, name := range []string{"cpic/a.txt", "archive/old.txt"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("Codeine is metabolized by CYP2D6."), 0o644))
	}
	matcher := matching.New(option.WithExtensions(".txt"), option.WithExclusionPatterns("archive/", "rag_data/"))
	idx := New(hashing.New(8), WithFolders("cpic", "archive"), WithMatcher(matcher))

	sink := &memorySink{}
	result, err := idx.Index(context.Background(), root, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"cpic_a.txt"}, result.IDs)
	assert.Equal(t, 1, result.Skipped)
}

func TestIndexer_IntoCollection(t *testing.T) {
	ctx := context.Background()
	root := writeCorpus(t, map[string]string{
		"cpic/a.txt":       "Codeine is metabolized by CYP2D6.",
		"phenotypes/b.txt": "Poor metabolizers have reduced enzyme activity.",
	})
	store, err := sqlitevec.Open(ctx, sqlitevec.WithDSN(filepath.Join(t.TempDir(), "rag.sqlite")))
	require.NoError(t, err)
	defer store.Close()
	coll, err := store.GetOrCreateCollection(ctx, "cpic_rag")
	require.NoError(t, err)

	idx := New(hashing.New(hashing.DefaultDimension), WithFolders("cpic", "phenotypes"))
	for run := 0; run < 2; run++ {
		_, err = idx.Index(ctx, root, coll)
		require.NoError(t, err)
	}
	count, err := coll.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}
