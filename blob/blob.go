// Package blob provides the storage for objects referenced by file and image
// settings.
package blob

import (
	"context"
	"strings"
)

// Store resolves stored object paths to public URLs and removes objects
type Store interface {
	URL(path string) string
	Delete(ctx context.Context, path string) error
}

// isAbsolute reports whether path already is a URL or a site-absolute path
// that must be served as is.
func isAbsolute(path string) bool {
	return strings.Contains(path, "://") || strings.HasPrefix(path, "/")
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
