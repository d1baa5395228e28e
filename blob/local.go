package blob

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultLocalBaseURL is the URL prefix local objects are served under
const DefaultLocalBaseURL = "/storage"

// LocalStore keeps objects in a directory that is served below BaseURL
type LocalStore struct {
	Dir     string
	BaseURL string
}

// NewLocalStore creates a LocalStore for dir
func NewLocalStore(dir, baseURL string) *LocalStore {
	if baseURL == "" {
		baseURL = DefaultLocalBaseURL
	}
	return &LocalStore{
		Dir:     dir,
		BaseURL: baseURL,
	}
}

// URL implements the Store interface
func (l *LocalStore) URL(path string) string {
	if isAbsolute(path) {
		return path
	}
	return joinURL(l.BaseURL, path)
}

// Delete implements the Store interface. Paths may also be given as URLs
// below BaseURL; deleting a missing object is not an error.
func (l *LocalStore) Delete(_ context.Context, path string) error {
	if l.Dir == "" {
		return nil
	}
	rel, ok := l.relative(path)
	if !ok {
		log.WithField("path", path).Debug("not deleting object outside of local storage")
		return nil
	}
	full := filepath.Join(l.Dir, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "could not delete '%s'", rel)
	}
	return nil
}

// relative maps path to a slash separated path below Dir
func (l *LocalStore) relative(path string) (string, bool) {
	if isAbsolute(path) {
		if u, err := url.Parse(path); err == nil {
			path = u.Path
		}
		base := l.BaseURL
		if u, err := url.Parse(base); err == nil {
			base = u.Path
		}
		base = strings.TrimRight(base, "/") + "/"
		if !strings.HasPrefix(path, base) {
			return "", false
		}
		path = strings.TrimPrefix(path, base)
	}
	clean := filepath.ToSlash(filepath.Clean("/" + path))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" {
		return "", false
	}
	return clean, true
}
