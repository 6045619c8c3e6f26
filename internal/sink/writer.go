// Package sink writes the files leaving a pipeline.
package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/pkg/file"
)

var ErrNoDestination = errors.New("no destination directory")

// Writer writes files under a destination directory, keeping their path relative to their base.
type Writer struct {
	dest   string
	ext    string
	logger log.Interface

	files atomic.Int64
	bytes atomic.Int64
}

// NewWriter creates a writer. A non-empty ext replaces the extension of every written file.
func NewWriter(dest, ext string, logger log.Interface) (*Writer, error) {
	if dest == "" {
		return nil, ErrNoDestination
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to resolve %s", dest)
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if logger == nil {
		logger = log.Log
	}

	return &Writer{dest: abs, ext: ext, logger: logger}, nil
}

// Target returns the path f is written to.
func (w *Writer) Target(f *file.File) string {
	rel := f.Relative()
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(f.Path)
	}

	if w.ext != "" {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + w.ext
	}

	return filepath.Join(w.dest, rel)
}

// Write writes the contents of f. It is safe for concurrent use.
func (w *Writer) Write(ctx context.Context, f *file.File) error {
	data, err := f.ReadAll(ctx)
	if err != nil {
		return errors.Wrapf(err, "unable to read %s", f.Path)
	}

	target := w.Target(f)

	err = os.MkdirAll(filepath.Dir(target), 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", target)
	}

	err = os.WriteFile(target, data, 0o644) //nolint:gosec // generated markup is meant to be served
	if err != nil {
		return errors.Wrapf(err, "unable to write %s", target)
	}

	w.files.Add(1)
	w.bytes.Add(int64(len(data)))
	w.logger.WithField("path", target).Debugf("wrote %s", humanize.Bytes(uint64(len(data))))

	return nil
}

// Written returns the number of files and bytes written so far.
func (w *Writer) Written() (int64, int64) {
	return w.files.Load(), w.bytes.Load()
}
