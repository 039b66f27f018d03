package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultCollection is the collection shared by the indexer and the server.
	DefaultCollection = "cpic_rag"
	// DefaultDSN is the store location used when none is configured.
	DefaultDSN = "./chroma_db/rag.sqlite"
	// DefaultCorpusRoot is the corpus root used when none is configured.
	DefaultCorpusRoot = "rag_data"
	// DefaultAddr is the HTTP listen address.
	DefaultAddr = "127.0.0.1:8000"
)

// Config is the process configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig defines vector store settings.
type StoreConfig struct {
	DSN        string `yaml:"dsn"`
	Collection string `yaml:"collection"`
	Secret     string `yaml:"secret,omitempty"`
}

// CorpusConfig defines where the corpus lives and which files are indexed.
// IgnoreFile lists extra exclusion patterns, one per line; a relative path
// is resolved against Root.
type CorpusConfig struct {
	Root         string   `yaml:"root"`
	Folders      []string `yaml:"folders"`
	Extensions   []string `yaml:"extensions"`
	Exclude      []string `yaml:"exclude"`
	MaxSizeBytes int      `yaml:"max_size_bytes"`
	IgnoreFile   string   `yaml:"ignore_file,omitempty"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Name      string `yaml:"name"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"baseURL"`
	APIKey    string `yaml:"apiKey,omitempty"`
	Project   string `yaml:"project"`
	Location  string `yaml:"location"`
	Dimension int    `yaml:"dimension"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Store:    StoreConfig{DSN: DefaultDSN, Collection: DefaultCollection},
		Corpus:   CorpusConfig{Root: DefaultCorpusRoot, Folders: []string{"cpic", "phenotypes", "mechanisms"}, Extensions: []string{".txt"}},
		Embedder: EmbedderConfig{Name: EmbedderOllama, Model: "all-minilm"},
		Server:   ServerConfig{Addr: DefaultAddr},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig and expands user
// paths and store secrets.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.expand(context.Background()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expand(ctx context.Context) error {
	var err error
	if c.Store.DSN, err = expandUserPath(c.Store.DSN); err != nil {
		return err
	}
	if c.Store.Secret != "" {
		if c.Store.DSN, err = ExpandDSNWithSecret(ctx, c.Store.DSN, c.Store.Secret); err != nil {
			return err
		}
	}
	if c.Corpus.Root, err = expandUserPath(c.Corpus.Root); err != nil {
		return err
	}
	if c.Corpus.IgnoreFile, err = expandUserPath(c.Corpus.IgnoreFile); err != nil {
		return err
	}
	if c.Store.Collection == "" {
		c.Store.Collection = DefaultCollection
	}
	return nil
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return path, nil
	}
	if strings.HasPrefix(trimmed, "file:") {
		rest := strings.TrimLeft(strings.TrimPrefix(trimmed, "file:"), "/")
		if !strings.HasPrefix(rest, "~") {
			return path, nil
		}
		expanded, err := expandUserPath(rest)
		if err != nil {
			return "", err
		}
		return "file://" + filepath.ToSlash(expanded), nil
	}
	if trimmed[0] != '~' {
		return path, nil
	}
	if trimmed != "~" && !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("config: unsupported ~user path: %s", path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if trimmed == "~" {
		return home, nil
	}
	return filepath.Join(home, trimmed[2:]), nil
}

// ExpandDSNWithSecret loads a secret and expands placeholders in the DSN.
func ExpandDSNWithSecret(ctx context.Context, dsn, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return dsn, nil
	}
	if strings.TrimSpace(dsn) == "" {
		return "", fmt.Errorf("secret %q provided but dsn is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(dsn), nil
}
