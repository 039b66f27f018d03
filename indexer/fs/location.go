package fs

import (
	"fmt"
	"path/filepath"

	"github.com/viant/afs/url"
)

// Normalize turns a relative or OS path into an absolute afs URL; locations
// that already carry a scheme are returned as is.
func Normalize(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		var err error
		norm, err = filepath.Abs(norm)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", location, err)
		}
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}
	return norm, nil
}
