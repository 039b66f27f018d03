package sqlitevec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/cpicrag/db/sqliteutil"
	"github.com/viant/sqlite-vec/engine"
	"github.com/viant/sqlite-vec/vec"
)

const (
	defaultVTable        = "emb_docs"
	defaultBusyTimeoutMS = 5000
)

// Store is a sqlite-vec backed set of named collections.
type Store struct {
	db            *sql.DB
	dsn           string
	vtable        string
	shadow        string
	embedModel    string
	logger        *slog.Logger
	matchDisabled bool
}

// Option configures the sqlite-vec store.
type Option func(*Store)

// WithDSN sets the SQLite DSN to open (e.g. /path/to/db.sqlite).
func WithDSN(dsn string) Option {
	return func(s *Store) { s.dsn = dsn }
}

// WithEmbeddingModel sets the embedding_model stored with rows.
func WithEmbeddingModel(model string) Option {
	return func(s *Store) { s.embedModel = model }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open opens or initializes a sqlite-vec Store.
func Open(ctx context.Context, opts ...Option) (*Store, error) {
	s := &Store{vtable: defaultVTable}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.shadow = "_vec_" + s.vtable

	if s.dsn == "" {
		return nil, fmt.Errorf("sqlitevec: dsn required")
	}
	if err := ensureParentDir(s.dsn); err != nil {
		return nil, err
	}
	db, err := engine.Open(sqliteutil.EnsurePragmas(s.dsn, true, defaultBusyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: open %s: %w", s.dsn, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	s.db = db
	if err := vec.Register(s.db); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sqlitevec: register vec module: %w", err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetOrCreateCollection returns the named collection, creating it when absent.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (*Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO vec_dataset(dataset_id, description) VALUES(?, '') ON CONFLICT(dataset_id) DO NOTHING`, name); err != nil {
		return nil, fmt.Errorf("sqlitevec: create collection %q: %w", name, err)
	}
	return s.collection(name), nil
}

// GetCollection returns the named collection or ErrCollectionNotFound.
func (s *Store) GetCollection(ctx context.Context, name string) (*Collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM vec_dataset WHERE dataset_id = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitevec: lookup collection %q: %w", name, err)
	}
	return s.collection(name), nil
}

// CollectionInfo summarizes a collection.
type CollectionInfo struct {
	Name    string
	Entries int64
}

// Collections lists all collections with their entry counts.
func (s *Store) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT c.dataset_id, COUNT(d.id)
FROM vec_dataset c
LEFT JOIN %s d ON d.dataset_id = c.dataset_id
GROUP BY c.dataset_id
ORDER BY c.dataset_id`, s.shadow))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.Entries); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *Store) collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vec_dataset (
			dataset_id  TEXT PRIMARY KEY,
			description TEXT,
			source_uri  TEXT,
			created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS vector_storage (
			shadow_table_name TEXT NOT NULL,
			dataset_id        TEXT NOT NULL DEFAULT '',
			"index"           BLOB,
			PRIMARY KEY (shadow_table_name, dataset_id)
		);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			dataset_id      TEXT NOT NULL,
			id              TEXT NOT NULL,
			content         TEXT,
			meta            TEXT,
			embedding       BLOB,
			embedding_model TEXT,
			PRIMARY KEY (dataset_id, id)
		);`, s.shadow),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlitevec: ensure schema: %w", err)
		}
	}
	vstmt := fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec(doc_id);`, s.vtable)
	if _, err := s.db.ExecContext(ctx, vstmt); err != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.matchDisabled = true
		s.logger.Warn("vec module unavailable, using scan search", "table", s.vtable, "err", err)
	}
	return nil
}

func isVecUnavailable(err error, vtable string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such module: vec") ||
		strings.Contains(msg, "no such table: "+vtable) ||
		strings.Contains(msg, "unable to use function MATCH") ||
		strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "vec: ")
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("sqlitevec: collection name required")
	}
	return nil
}

func ensureParentDir(dsn string) error {
	dir := filepath.Dir(sqliteutil.FilePath(dsn))
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sqlitevec: create store dir %s: %w", dir, err)
	}
	return nil
}
