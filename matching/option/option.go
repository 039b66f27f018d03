package option

import (
	"bufio"
	"io"
	"strings"
)

// Options configures which corpus files are eligible for indexing.
type Options struct {

	// Extensions lists accepted file suffixes (e.g. ".txt"); empty accepts all.
	Extensions []string

	// Exclusions contains patterns of files/directories to skip
	Exclusions []string

	// MaxFileSize is the maximum size of files to index in bytes
	MaxFileSize int
}

// NewOptions creates a new Options instance with default values
func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Exclusions == nil {
		options.Exclusions = getDefaultPatterns()
	}
	return options
}

// Option is a function that modifies Options
type Option func(*Options)

// WithExtensions sets accepted file extensions, matched case sensitively.
// A missing leading dot is added.
func WithExtensions(extensions ...string) Option {
	return func(o *Options) {
		for _, ext := range extensions {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			o.Extensions = append(o.Extensions, ext)
		}
	}
}

// WithExclusionPatterns sets exclusion patterns
func WithExclusionPatterns(patterns ...string) Option {
	return func(o *Options) {
		o.Exclusions = append(o.Exclusions, patterns...)
	}
}

// WithMaxIndexableSize sets the maximum indexable file size
func WithMaxIndexableSize(size int) Option {
	return func(o *Options) {
		o.MaxFileSize = size
	}
}

// WithIgnoreFile adds patterns from a .gitignore style reader.
func WithIgnoreFile(reader io.Reader) Option {
	return func(m *Options) {
		if patterns := parseIgnoreFile(reader); len(patterns) > 0 {
			m.Exclusions = append(m.Exclusions, patterns...)
		}
	}
}

// WithDefaultExclusionPatterns adds default exclusion patterns
func WithDefaultExclusionPatterns() Option {
	return func(m *Options) {
		m.Exclusions = append(m.Exclusions, getDefaultPatterns()...)
	}
}

// getDefaultPatterns returns editor and OS artifacts that never hold corpus text.
func getDefaultPatterns() []string {
	return []string{
		".git/",
		".DS_Store",
		"*.swp",
		"*.bak",
		"*.tmp",
		"~*",
	}
}

func parseIgnoreFile(reader io.Reader) []string {
	var patterns []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
