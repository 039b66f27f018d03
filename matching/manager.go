package matching

import (
	"path/filepath"
	"strings"

	"github.com/viant/afs/url"
	"github.com/viant/cpicrag/matching/option"
)

// Manager decides which corpus files are indexed.
type Manager struct {
	options *option.Options
}

// New creates a new matching manager with the given options
func New(opts ...option.Option) *Manager {
	return &Manager{options: option.NewOptions(opts...)}
}

// Accepts reports whether a file should be indexed. Callers pass the path
// relative to the corpus root (e.g. "cpic/codeine.txt") so that patterns
// never match directories above the corpus.
func (m *Manager) Accepts(location string, size int) bool {
	return m.HasExtension(location) && !m.IsExcluded(location, size)
}

// HasExtension reports whether location ends with one of the configured
// extensions. The comparison is case sensitive.
func (m *Manager) HasExtension(location string) bool {
	if len(m.options.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(normalize(location))
	for _, candidate := range m.options.Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// IsExcluded checks if a path should be skipped based on size and patterns
func (m *Manager) IsExcluded(location string, size int) bool {
	if m.options.MaxFileSize > 0 && size > m.options.MaxFileSize {
		return true
	}
	path := normalize(location)
	for _, pattern := range m.options.Exclusions {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		if isExcluded(path, pattern) {
			return true
		}
	}
	return false
}

func normalize(location string) string {
	path := url.Path(location)
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}

func isExcluded(path string, pattern string) bool {
	// directory pattern: match a whole path segment
	if strings.HasSuffix(pattern, "/") {
		dir := strings.Trim(pattern, "/")
		for _, segment := range strings.Split(path, "/") {
			if segment == dir {
				return true
			}
		}
		return false
	}
	cleanPattern := strings.TrimPrefix(pattern, "/")
	if matched, _ := filepath.Match(cleanPattern, path); matched {
		return true
	}
	baseName := pathBase(path)
	if matched, _ := filepath.Match(cleanPattern, baseName); matched {
		return true
	}
	return false
}

func pathBase(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
