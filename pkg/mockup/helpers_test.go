package mockup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-mockup/pkg/file"
	"github.com/askiada/go-mockup/pkg/mockup"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func memoryLogger() (*log.Logger, *memory.Handler) {
	handler := memory.New()

	return &log.Logger{Handler: handler, Level: log.DebugLevel}, handler
}

func newStage(t *testing.T, opts ...mockup.Option) (*mockup.Transform, *memory.Handler) {
	t.Helper()

	logger, handler := memoryLogger()
	stage, err := mockup.New(append([]mockup.Option{mockup.WithLogger(logger)}, opts...)...)
	require.NoError(t, err)

	return stage, handler
}

func bufferFile(base, name, content string) *file.File {
	return &file.File{
		Base:     base,
		Path:     filepath.Join(base, name),
		Contents: file.Buffer{Bytes: []byte(content)},
	}
}

func contents(t *testing.T, f *file.File) string {
	t.Helper()

	buf, ok := f.Contents.(file.Buffer)
	require.True(t, ok, "contents are %T", f.Contents)

	return string(buf.Bytes)
}

type stubEngine struct {
	paths    []string
	rendered []string
}

func (s *stubEngine) SearchPaths() []string {
	return s.paths
}

func (s *stubEngine) Render(name string, _ map[string]any) (string, error) {
	s.rendered = append(s.rendered, name)

	return "stub:" + name, nil
}
