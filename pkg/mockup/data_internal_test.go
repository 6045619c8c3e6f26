package mockup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyPointer(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		property string
		want     string
	}{
		"plain":    {property: "template", want: "/template"},
		"dotted":   {property: "meta.layout", want: "/meta/layout"},
		"indexed":  {property: "pages[2].layout", want: "/pages/2/layout"},
		"pointer":  {property: "/meta/layout", want: "/meta/layout"},
		"escaped":  {property: "a/b.c~d", want: "/a~1b/c~0d"},
		"trailing": {property: "meta.", want: "/meta"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, propertyPointer(tc.property))
		})
	}
}

func TestLookupTemplate(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"template": "page.njk",
		"blank":    "  ",
		"number":   int64(3),
		"meta":     map[string]any{"layout": "meta.njk"},
		"pages":    []any{map[string]any{"layout": "first.njk"}},
	}

	tcs := map[string]struct {
		property string
		want     string
		found    bool
	}{
		"top level":    {property: "template", want: "page.njk", found: true},
		"nested":       {property: "meta.layout", want: "meta.njk", found: true},
		"list":         {property: "pages[0].layout", want: "first.njk", found: true},
		"pointer":      {property: "/meta/layout", want: "meta.njk", found: true},
		"missing":      {property: "layout"},
		"blank":        {property: "blank"},
		"number":       {property: "number"},
		"map":          {property: "meta"},
		"out of range": {property: "pages[3].layout"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, found := lookupTemplate(data, tc.property)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMergeData(t *testing.T) {
	t.Parallel()

	aux := map[string]any{
		"title": "aux",
		"meta":  map[string]any{"author": "b"},
	}
	evaluated := map[string]any{
		"title": "evaluated",
		"body":  "text",
		"meta":  map[string]any{"author": "a", "layout": "x.njk"},
	}

	data, err := mergeData(evaluated, aux)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title": "aux",
		"body":  "text",
		"meta":  map[string]any{"author": "b", "layout": "x.njk"},
	}, data)

	data["meta"].(map[string]any)["author"] = "changed"
	assert.Equal(t, "b", aux["meta"].(map[string]any)["author"])

	data, err = mergeData(map[string]any{"list": []any{1, 2, 3}}, map[string]any{"list": []any{9}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"list": []any{9}}, data, "lists are replaced, not merged by index")

	data, err = mergeData([]any{"not", "a", "map"}, nil)
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = mergeData(nil, map[string]any{"template": "page.njk"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"template": "page.njk"}, data)
}
