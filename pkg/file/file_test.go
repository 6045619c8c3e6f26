package file_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-mockup/pkg/file"
)

func TestReadAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "page.lua")
	require.NoError(t, os.WriteFile(path, []byte("on disk"), 0o600))

	tcs := map[string]struct {
		file        *file.File
		expected    string
		expectedErr error
	}{
		"deferred": {
			file:     file.New(dir, path),
			expected: "on disk",
		},
		"deferred without path": {
			file:        &file.File{Contents: file.Deferred{}},
			expectedErr: file.ErrNoPath,
		},
		"deferred missing file": {
			file:        file.New(dir, filepath.Join(dir, "missing.lua")),
			expectedErr: os.ErrNotExist,
		},
		"stream": {
			file:     &file.File{Path: path, Contents: file.Stream{Reader: io.NopCloser(iotest.OneByteReader(strings.NewReader("chunked")))}},
			expected: "chunked",
		},
		"stream error": {
			file:        &file.File{Path: path, Contents: file.Stream{Reader: io.NopCloser(iotest.ErrReader(io.ErrUnexpectedEOF))}},
			expectedErr: io.ErrUnexpectedEOF,
		},
		"nil stream": {
			file:        &file.File{Path: path, Contents: file.Stream{}},
			expectedErr: file.ErrNilContents,
		},
		"buffer": {
			file:     &file.File{Path: path, Contents: file.Buffer{Bytes: []byte("in memory")}},
			expected: "in memory",
		},
		"no contents": {
			file:        &file.File{Path: path},
			expectedErr: file.ErrNilContents,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.file.ReadAll(t.Context())
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(got))
		})
	}
}

func TestRelative(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("blog", "post.lua"), file.New("/src", "/src/blog/post.lua").Relative())
	assert.Equal(t, "/src/post.lua", file.New("", "/src/post.lua").Relative())
}

func TestSetBytes(t *testing.T) {
	t.Parallel()

	f := file.New("/src", "/src/post.lua")
	f.SetBytes([]byte("<p>Hi</p>"))
	assert.Equal(t, file.Buffer{Bytes: []byte("<p>Hi</p>")}, f.Contents)
}
