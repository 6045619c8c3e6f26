package engine

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/flosch/pongo2/v6"
	"github.com/pkg/errors"
)

// searchLoader is a pongo2 loader resolving every name, including the targets of extends, include and import tags,
// against all search paths in order. Files outside the search paths are never read.
type searchLoader struct {
	roots []string
}

// Abs returns the first match under the search paths. Unresolved names map below the first search path so that
// Get reports them as missing.
func (l *searchLoader) Abs(_, name string) string {
	if path, ok := Resolve(l.roots, name); ok {
		return path
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}

	return filepath.Join(l.roots[0], name)
}

func (l *searchLoader) Get(path string) (io.Reader, error) {
	inside := false
	for _, root := range l.roots {
		if within(root, path) {
			inside = true

			break
		}
	}
	if !inside {
		return nil, errors.Wrapf(ErrTemplateNotFound, "%s is outside the template directories", path)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read template %s", path)
	}

	return bytes.NewReader(buf), nil
}

var _ pongo2.TemplateLoader = (*searchLoader)(nil)
