package mockup

import (
	"strings"

	"dario.cat/mergo"
	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/pointerstructure"
	"github.com/pkg/errors"
)

// mergeData merges aux into the evaluated value. Values of aux win, nested maps are merged key by key. aux is
// copied first so that the merged data never shares maps with the file. Anything but a map evaluates to no data.
func mergeData(value any, aux map[string]any) (map[string]any, error) {
	data, ok := value.(map[string]any)
	if !ok || data == nil {
		data = make(map[string]any)
	}

	if len(aux) == 0 {
		return data, nil
	}

	cp, err := copystructure.Copy(aux)
	if err != nil {
		return nil, errors.Wrap(err, "unable to copy file data")
	}

	auxCopy, _ := cp.(map[string]any)

	err = mergo.Merge(&data, auxCopy, mergo.WithOverride)
	if err != nil {
		return nil, errors.Wrap(err, "unable to merge file data")
	}

	return data, nil
}

// propertyPointer converts a property path to a JSON pointer. "a.b[0].c" becomes "/a/b/0/c". Paths starting with a
// slash already are pointers.
func propertyPointer(property string) string {
	if strings.HasPrefix(property, "/") {
		return property
	}

	property = strings.NewReplacer("[", ".", "]", "").Replace(property)

	escape := strings.NewReplacer("~", "~0", "/", "~1")

	var parts []string
	for _, part := range strings.Split(property, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts = append(parts, escape.Replace(part))
	}

	return "/" + strings.Join(parts, "/")
}

// lookupTemplate returns the template name found at property in data. Missing, empty and non string values are
// reported as undefined.
func lookupTemplate(data map[string]any, property string) (string, bool) {
	value, err := pointerstructure.Get(data, propertyPointer(property))
	if err != nil {
		return "", false
	}

	name, ok := value.(string)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}

	return name, true
}
