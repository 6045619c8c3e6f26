package mockup_test

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-mockup/pkg/evaluator"
	"github.com/askiada/go-mockup/pkg/file"
	"github.com/askiada/go-mockup/pkg/mockup"
)

func TestProcessDefaults(t *testing.T) {
	t.Parallel()

	stage, handler := newStage(t)

	f := file.New("testdata", filepath.Join("testdata", "post.lua"))
	out, err := stage.Process(t.Context(), f)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "<h1>Hi</h1>\n", contents(t, out))

	require.Len(t, handler.Entries, 1)
	entry := handler.Entries[0]
	assert.Equal(t, log.InfoLevel, entry.Level)
	assert.Equal(t, "DONE", entry.Fields.Get("status"))
	assert.Equal(t, "post.lua", entry.Fields.Get("path"))
	assert.Equal(t, "testdata/page.njk", entry.Fields.Get("template"))
	assert.Contains(t, entry.Message, "post.lua")
}

func TestProcess(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		property string
		name     string
		source   string
		aux      map[string]any
		want     string
		dropped  bool
		status   mockup.Status
	}{
		"done": {
			name:   "page.lua",
			source: `return { template = "page.njk", title = "Hi" }`,
			want:   "<h1>Hi</h1>",
			status: mockup.StatusDone,
		},
		"no template": {
			name:    "page.lua",
			source:  `return { title = "Hi" }`,
			dropped: true,
			status:  mockup.StatusUndefined,
		},
		"empty template": {
			name:    "page.lua",
			source:  `return { template = "" }`,
			dropped: true,
			status:  mockup.StatusUndefined,
		},
		"non string template": {
			name:    "page.lua",
			source:  `return { template = 3 }`,
			dropped: true,
			status:  mockup.StatusUndefined,
		},
		"non table result": {
			name:    "page.lua",
			source:  `return "page.njk"`,
			dropped: true,
			status:  mockup.StatusUndefined,
		},
		"missing template": {
			name:    "page.lua",
			source:  `return { template = "missing.njk" }`,
			dropped: true,
			status:  mockup.StatusMissing,
		},
		"template outside root": {
			name:    "page.lua",
			source:  `return { template = "../outside.njk" }`,
			dropped: true,
			status:  mockup.StatusMissing,
		},
		"template is a directory": {
			name:    "page.lua",
			source:  `return { template = "partials" }`,
			dropped: true,
			status:  mockup.StatusMissing,
		},
		"aux data wins": {
			name:   "page.lua",
			source: `return { template = "page.njk", title = "Original" }`,
			aux:    map[string]any{"title": "Override"},
			want:   "<h1>Override</h1>",
			status: mockup.StatusDone,
		},
		"aux data provides template": {
			name:   "page.lua",
			source: `return { title = "Hi" }`,
			aux:    map[string]any{"template": "page.njk"},
			want:   "<h1>Hi</h1>",
			status: mockup.StatusDone,
		},
		"aux data merges nested maps": {
			name:     "page.lua",
			property: "meta.layout",
			source:   `return { meta = { layout = "meta.njk", author = "a", year = 2020 } }`,
			aux:      map[string]any{"meta": map[string]any{"author": "b"}},
			want:     "b 2020",
			status:   mockup.StatusDone,
		},
		"dotted property": {
			name:     "page.lua",
			property: "meta.layout",
			source:   `return { meta = { layout = "meta.njk", author = "a", year = 1 } }`,
			want:     "a 1",
			status:   mockup.StatusDone,
		},
		"indexed property": {
			name:     "page.lua",
			property: "layouts[1]",
			source:   `return { layouts = { "missing.njk", "page.njk" }, title = "Second" }`,
			want:     "<h1>Second</h1>",
			status:   mockup.StatusDone,
		},
		"pointer property": {
			name:     "page.lua",
			property: "/meta/layout",
			source:   `return { meta = { layout = "page.njk" }, title = "Pointer" }`,
			want:     "<h1>Pointer</h1>",
			status:   mockup.StatusDone,
		},
		"custom property missing": {
			name:     "page.lua",
			property: "layout",
			source:   `return { template = "page.njk" }`,
			dropped:  true,
			status:   mockup.StatusUndefined,
		},
		"yaml data": {
			name:   "page.yaml",
			source: "template: page.njk\ntitle: Yaml\n",
			want:   "<h1>Yaml</h1>",
			status: mockup.StatusDone,
		},
		"yaml key that is not an identifier": {
			name:   "page.yaml",
			source: "template: social.njk\ntitle: Hi\nog-image: x.png\n",
			want:   "Hi x.png",
			status: mockup.StatusDone,
		},
		"json data": {
			name:   "page.json",
			source: `{"template": "page.njk", "title": "Json"}`,
			want:   "<h1>Json</h1>",
			status: mockup.StatusDone,
		},
		"hcl data": {
			name:   "page.hcl",
			source: "template = \"page.njk\"\ntitle = upper(\"hcl\")\n",
			want:   "<h1>HCL</h1>",
			status: mockup.StatusDone,
		},
		"nested source path": {
			name:   filepath.Join("blog", "post.lua"),
			source: `return { template = "page.njk", title = path:match("post") }`,
			want:   "<h1>post</h1>",
			status: mockup.StatusDone,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			tplDir := filepath.Join(root, "templates")
			writeFile(t, tplDir, "page.njk", "<h1>{{ title }}</h1>")
			writeFile(t, tplDir, "meta.njk", "{{ meta.author }} {{ meta.year }}")
			writeFile(t, tplDir, "partials/nav.njk", "nav")
			writeFile(t, tplDir, "social.njk", `{{ title }} {{ data["og-image"] }}`)
			writeFile(t, root, "outside.njk", "outside")

			opts := []mockup.Option{mockup.WithTemplateDirectories(tplDir)}
			if tc.property != "" {
				opts = append(opts, mockup.WithTemplateProperty(tc.property))
			}
			stage, handler := newStage(t, opts...)

			src := filepath.Join(root, "src")
			f := bufferFile(src, tc.name, tc.source)
			f.Data = tc.aux

			out, err := stage.Process(t.Context(), f)
			require.NoError(t, err)

			require.Len(t, handler.Entries, 1)
			entry := handler.Entries[0]
			assert.Equal(t, string(tc.status), entry.Fields.Get("status"))
			assert.Equal(t, tc.name, entry.Fields.Get("path"))

			if tc.dropped {
				assert.Nil(t, out)
				assert.Equal(t, tc.source, contents(t, f))

				return
			}

			require.NotNil(t, out)
			assert.Equal(t, tc.want, contents(t, out))
			assert.Equal(t, f.Path, out.Path)
		})
	}
}

func TestProcessMultipleRoots(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "one.njk", "one {{ n }}")
	writeFile(t, second, "two.njk", "two {{ n }}")

	stage, handler := newStage(t, mockup.WithTemplateDirectories(first, second))

	src := t.TempDir()
	for tpl, want := range map[string]string{"one.njk": "one 1", "two.njk": "two 1"} {
		out, err := stage.Process(t.Context(), bufferFile(src, "page.lua", fmt.Sprintf(`return { template = %q, n = 1 }`, tpl)))
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, want, contents(t, out))
	}

	out, err := stage.Process(t.Context(), bufferFile(src, "page.lua", `return { template = "three.njk" }`))
	require.NoError(t, err)
	assert.Nil(t, out)

	require.Len(t, handler.Entries, 3)
	assert.Equal(t, "MISSING", handler.Entries[2].Fields.Get("status"))
	assert.Equal(t, mockup.Stats{Done: 2, Missing: 1}, stage.Stats())
}

func TestProcessStreamContents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "page.njk", "{{ title }}")
	stage, _ := newStage(t, mockup.WithTemplateDirectories(dir))

	f := &file.File{
		Base:     dir,
		Path:     filepath.Join(dir, "page.lua"),
		Contents: file.Stream{Reader: io.NopCloser(strings.NewReader(`return { template = "page.njk", title = "streamed" }`))},
	}

	out, err := stage.Process(t.Context(), f)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "streamed", contents(t, out))
}

func TestProcessErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "page.njk", "{{ title }}")
	writeFile(t, dir, "broken.njk", "{{ title|nosuchfilter }}")

	tcs := map[string]struct {
		file   *file.File
		target error
	}{
		"invalid source": {
			file: bufferFile(dir, "page.lua", `return { template = `),
		},
		"runtime error": {
			file: bufferFile(dir, "page.lua", `error("boom")`),
		},
		"unsupported extension": {
			file:   bufferFile(dir, "page.txt", `template = page.njk`),
			target: evaluator.ErrUnsupported,
		},
		"unreadable file": {
			file:   file.New(dir, filepath.Join(dir, "absent.lua")),
			target: fs.ErrNotExist,
		},
		"no contents": {
			file:   &file.File{Base: dir, Path: filepath.Join(dir, "page.lua")},
			target: file.ErrNilContents,
		},
		"render error": {
			file: bufferFile(dir, "page.lua", `return { template = "broken.njk", title = "x" }`),
		},
		"nil file": {
			target: mockup.ErrNilFile,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stage, handler := newStage(t, mockup.WithTemplateDirectories(dir))

			var before file.Contents
			if tc.file != nil {
				before = tc.file.Contents
			}

			out, err := stage.Process(t.Context(), tc.file)
			require.Error(t, err)
			assert.Nil(t, out)

			var pluginErr *mockup.PluginError
			require.ErrorAs(t, err, &pluginErr)
			assert.Equal(t, mockup.PluginName, pluginErr.Plugin)
			assert.True(t, pluginErr.ShowStack)
			assert.True(t, pluginErr.ShowProperties)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}

			if tc.file != nil {
				assert.Equal(t, before, tc.file.Contents)
			}
			assert.Empty(t, handler.Entries)
			assert.Equal(t, mockup.Stats{Failed: 1}, stage.Stats())
		})
	}
}

func TestPluginErrorFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stage, _ := newStage(t, mockup.WithTemplateDirectories(dir), mockup.WithName("custom"))

	_, err := stage.Process(t.Context(), nil)
	require.Error(t, err)

	assert.Equal(t, "custom: nil file", err.Error())
	assert.Equal(t, "custom: nil file", fmt.Sprintf("%v", err))
	assert.Equal(t, `"custom: nil file"`, fmt.Sprintf("%q", err))

	detailed := fmt.Sprintf("%+v", err)
	assert.True(t, strings.HasPrefix(detailed, "custom: nil file"))
	assert.Contains(t, detailed, "(*Transform).Process")

	var pluginErr *mockup.PluginError
	require.True(t, errors.As(err, &pluginErr))
	assert.NotEmpty(t, pluginErr.StackTrace())

	pluginErr.ShowStack = false
	assert.NotContains(t, fmt.Sprintf("%+v", err), "(*Transform).Process")
}

func TestProcessWithEngine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "page.njk", "ignored")
	eng := &stubEngine{paths: []string{dir}}

	stage, _ := newStage(t, mockup.WithEngine(eng), mockup.WithTemplateDirectories(filepath.Join(dir, "unused")))

	out, err := stage.Process(t.Context(), bufferFile(dir, "page.lua", `return { template = "page.njk" }`))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "stub:page.njk", contents(t, out))

	out, err = stage.Process(t.Context(), bufferFile(dir, "page.lua", `return { template = "other.njk" }`))
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, []string{"page.njk"}, eng.rendered)
}

func TestProcessWithEvaluator(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "page.njk", "{{ label }}")

	ev := evaluator.Func(func(_ context.Context, _, label string) (any, error) {
		return map[string]any{"template": "page.njk", "label": filepath.Base(label)}, nil
	})
	stage, _ := newStage(t, mockup.WithTemplateDirectories(dir), mockup.WithEvaluator(ev))

	out, err := stage.Process(t.Context(), bufferFile(dir, "any.ext", "ignored"))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "any.ext", contents(t, out))
}

func TestProcessConcurrent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "page.njk", "<p>{{ n }}</p>")
	stage, handler := newStage(t, mockup.WithTemplateDirectories(dir))

	const n = 50

	var wg sync.WaitGroup
	outputs := make([]string, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			f := bufferFile(dir, fmt.Sprintf("page-%d.lua", i), fmt.Sprintf(`return { template = "page.njk", n = %d }`, i))
			out, err := stage.Process(t.Context(), f)
			errs[i] = err
			if out != nil {
				outputs[i] = string(out.Contents.(file.Buffer).Bytes)
			}
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, fmt.Sprintf("<p>%d</p>", i), outputs[i])
	}
	assert.Len(t, handler.Entries, n)
	assert.Equal(t, int64(n), stage.Stats().Done)
	assert.Equal(t, int64(n), stage.Stats().Total())
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	logger, _ := memoryLogger()
	_, err := mockup.New(mockup.WithLogger(logger), mockup.WithTemplateDirectories(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, err)
}
