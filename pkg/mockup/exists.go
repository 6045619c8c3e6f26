package mockup

import "github.com/askiada/go-mockup/pkg/engine"

// TemplateExists reports whether name resolves to a regular file inside one of roots. Names escaping a root, with
// ".." segments or an absolute path elsewhere, do not resolve against that root.
func TemplateExists(roots []string, name string) bool {
	_, ok := engine.Resolve(roots, name)

	return ok
}
