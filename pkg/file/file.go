// Package file models the items flowing through a build pipeline: a path and a content payload that is either not
// loaded yet, streamed, or held in memory.
package file

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var (
	ErrNoPath      = errors.New("file has no path")
	ErrNilContents = errors.New("file has no contents")
)

// Contents is the payload of a File. It is one of Deferred, Stream or Buffer.
type Contents interface {
	isContents()
}

// Deferred contents have not been read yet. They are loaded from the file path on demand.
type Deferred struct{}

// Stream contents arrive as chunks until the reader returns io.EOF.
type Stream struct {
	Reader io.ReadCloser
}

// Buffer contents are fully held in memory.
type Buffer struct {
	Bytes []byte
}

func (Deferred) isContents() {}
func (Stream) isContents()   {}
func (Buffer) isContents()   {}

// File is a single item of a build pipeline.
type File struct {
	// Cwd is the working directory the file was discovered from.
	Cwd string
	// Base is the directory Path is relative to.
	Base string
	// Path is the absolute location of the file.
	Path string

	Contents Contents

	// Data is auxiliary data attached by upstream steps. It takes precedence over the data evaluated from the
	// contents.
	Data map[string]any
}

// New returns a file with deferred contents.
func New(base, path string) *File {
	return &File{
		Base:     base,
		Path:     path,
		Contents: Deferred{},
	}
}

// Relative returns the path of the file relative to its base, or the path itself when it cannot be made relative.
func (f *File) Relative() string {
	if f.Base == "" {
		return f.Path
	}

	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil {
		return f.Path
	}

	return rel
}

// ReadAll returns the whole contents of the file. Stream contents are consumed and closed.
func (f *File) ReadAll(_ context.Context) ([]byte, error) {
	switch contents := f.Contents.(type) {
	case Deferred:
		if f.Path == "" {
			return nil, ErrNoPath
		}

		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read %s", f.Path)
		}

		return data, nil
	case Stream:
		if contents.Reader == nil {
			return nil, ErrNilContents
		}
		defer contents.Reader.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, contents.Reader); err != nil {
			return nil, errors.Wrapf(err, "unable to read stream of %s", f.Path)
		}

		return buf.Bytes(), nil
	case Buffer:
		return contents.Bytes, nil
	default:
		return nil, ErrNilContents
	}
}

// SetBytes replaces the contents with an in-memory buffer.
func (f *File) SetBytes(data []byte) {
	f.Contents = Buffer{Bytes: data}
}
