package engine

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns the absolute path of the first regular file named name inside roots, searched in order. Names
// escaping a root, with ".." segments or an absolute path elsewhere, do not resolve against that root.
func Resolve(roots []string, name string) (string, bool) {
	if name == "" {
		return "", false
	}

	for _, root := range roots {
		base, err := filepath.Abs(root)
		if err != nil {
			continue
		}

		var candidate string
		if filepath.IsAbs(name) {
			candidate = filepath.Clean(name)
		} else {
			candidate = filepath.Join(base, name)
		}

		if !within(base, candidate) {
			continue
		}

		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}

	return "", false
}

// within reports whether path is base or lies below it. Both must be clean and absolute.
func within(base, path string) bool {
	if path == base {
		return true
	}

	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	return strings.HasPrefix(path, prefix)
}
