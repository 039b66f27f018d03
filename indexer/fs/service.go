package fs

import (
	"context"

	"github.com/viant/afs/storage"
)

// Service abstracts listing and reading corpus objects so the indexer can
// run against local folders or any other afs backed location.
type Service interface {
	// List returns objects available at the given location/URI.
	List(ctx context.Context, location string) ([]storage.Object, error)
	// Download returns the content of the given object.
	Download(ctx context.Context, object storage.Object) ([]byte, error)
	// DownloadURL returns the content at location.
	DownloadURL(ctx context.Context, location string) ([]byte, error)
	// Exists reports whether location is present.
	Exists(ctx context.Context, location string) (bool, error)
}
