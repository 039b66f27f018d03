package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/cpicrag/service"
)

type rootOptions struct {
	configFile string
	dsn        string
	collection string
	embedder   string
	model      string
	baseURL    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "cpicrag",
		Short: "Pharmacogenomics context retrieval over a local vector store",
		Long: `cpicrag indexes CPIC guideline, phenotype and mechanism notes into a
sqlite-vec collection and serves POST /explain, which returns the passages
nearest to a gene, drug and phenotype query.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file")
	flags.StringVar(&opts.dsn, "dsn", "", "vector store path (default "+service.DefaultDSN+")")
	flags.StringVar(&opts.collection, "collection", "", "collection name (default "+service.DefaultCollection+")")
	flags.StringVar(&opts.embedder, "embedder", "", "embedding provider: ollama|openai|vertexai|hashing")
	flags.StringVar(&opts.model, "model", "", "embedding model")
	flags.StringVar(&opts.baseURL, "embedder-url", "", "embedding provider base URL")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text|json")

	cmd.AddCommand(
		newIndexCmd(opts),
		newServeCmd(opts),
		newQueryCmd(opts),
		newCollectionsCmd(opts),
	)
	return cmd
}

// load resolves the config file and applies flag overrides.
func (o *rootOptions) load() (*service.Config, error) {
	cfg := service.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = service.LoadConfig(o.configFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	override(&cfg.Store.DSN, o.dsn)
	override(&cfg.Store.Collection, o.collection)
	override(&cfg.Embedder.Name, o.embedder)
	override(&cfg.Embedder.Model, o.model)
	override(&cfg.Embedder.BaseURL, o.baseURL)
	override(&cfg.Log.Level, o.logLevel)
	override(&cfg.Log.Format, o.logFormat)
	return cfg, nil
}

func override(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func newLogger(cfg service.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", cfg.Level)
		}
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}

// setup loads config, builds the logger and opens the service.
func (o *rootOptions) setup(cmd *cobra.Command) (*service.Config, *service.Service, *slog.Logger, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)
	svc, err := service.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, svc, logger, nil
}
