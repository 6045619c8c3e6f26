// Package source discovers the files fed to a pipeline.
package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ryanuber/go-glob"

	"github.com/askiada/go-mockup/pkg/file"
)

var ErrUnknownMode = errors.New("unknown contents mode")

// Mode selects how the contents of discovered files are attached.
type Mode int

const (
	// Buffered files are read before being sent.
	Buffered Mode = iota
	// Streamed files carry an open reader.
	Streamed
	// Deferred files are read by the consumer.
	Deferred
)

// Walker walks a directory and sends every accepted regular file.
type Walker struct {
	Root string
	Mode Mode
	// Include lists glob patterns matched against the path relative to Root. An empty list accepts everything.
	Include []string
	// Accept filters files by absolute path after Include. Nil accepts everything.
	Accept func(path string) bool
}

// Matches reports whether rel matches one of the include patterns.
func (w *Walker) Matches(rel string) bool {
	if len(w.Include) == 0 {
		return true
	}

	rel = filepath.ToSlash(rel)
	for _, pattern := range w.Include {
		if glob.Glob(pattern, rel) || glob.Glob(pattern, filepath.Base(rel)) {
			return true
		}
	}

	return false
}

// Walk sends the files found under Root in lexical order. Hidden directories are skipped.
func (w *Walker) Walk(ctx context.Context, out chan<- *file.File) error {
	base, err := filepath.Abs(w.Root)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve %s", w.Root)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "unable to get working directory")
	}

	return filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "unable to walk %s", path)
		}

		if entry.IsDir() {
			if path != base && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return errors.Wrapf(err, "unable to make %s relative", path)
		}

		if !w.Matches(rel) || (w.Accept != nil && !w.Accept(path)) {
			return nil
		}

		f, err := w.load(path)
		if err != nil {
			return err
		}
		f.Cwd = cwd
		f.Base = base

		select {
		case <-ctx.Done():
			release(f)

			return ctx.Err()
		case out <- f:
		}

		return nil
	})
}

func (w *Walker) load(path string) (*file.File, error) {
	f := &file.File{Path: path}

	switch w.Mode {
	case Buffered:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %s", path)
		}
		f.Contents = file.Buffer{Bytes: data}
	case Streamed:
		reader, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open %s", path)
		}
		f.Contents = file.Stream{Reader: reader}
	case Deferred:
		f.Contents = file.Deferred{}
	default:
		return nil, errors.Wrapf(ErrUnknownMode, "%d", w.Mode)
	}

	return f, nil
}

func release(f *file.File) {
	if stream, ok := f.Contents.(file.Stream); ok && stream.Reader != nil {
		_ = stream.Reader.Close()
	}
}
