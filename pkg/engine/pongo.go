package engine

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/apex/log"
	"github.com/flosch/pongo2/v6"
	"github.com/pkg/errors"
)

// DataKey exposes the whole render data to templates, including keys that are not identifiers.
const DataKey = "data"

var identifier = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ErrTemplateNotFound is returned when no search path holds the template.
var ErrTemplateNotFound = errors.New("template not found")

// Pongo renders Django/Jinja style templates with pongo2. Template names, including those of extends, include and
// import tags, are resolved against the search paths in order and the first match is loaded by its absolute path.
//
// Parsed templates are immutable and the template cache is guarded by pongo2, so Render is safe for concurrent use.
type Pongo struct {
	set         *pongo2.TemplateSet
	searchPaths []string
	noCache     bool
}

// NewPongo creates an engine looking up templates under dirs. Directories that do not exist are skipped with a
// warning; at least one must exist.
func NewPongo(dirs []string, opts Options, logger log.Interface) (*Pongo, error) {
	if logger == nil {
		logger = log.Log
	}

	var searchPaths []string

	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to resolve template directory %s", dir)
		}

		info, err := os.Stat(abs)
		if err == nil && !info.IsDir() {
			err = errors.Errorf("%s is not a directory", abs)
		}
		if err != nil {
			logger.WithError(err).WithField("dir", abs).Warn("skipping template directory")

			continue
		}

		searchPaths = append(searchPaths, abs)
	}

	if len(searchPaths) == 0 {
		return nil, errors.Wrapf(ErrNoSearchPaths, "searched %v", dirs)
	}

	set := pongo2.NewSet("mockup", &searchLoader{roots: searchPaths})
	set.Options.TrimBlocks = opts.TrimBlocks
	set.Options.LStripBlocks = opts.LStripBlocks
	if len(opts.Globals) > 0 {
		set.Globals.Update(pongo2.Context(opts.Globals))
	}

	return &Pongo{
		set:         set,
		searchPaths: searchPaths,
		noCache:     opts.NoCache,
	}, nil
}

// SearchPaths returns the absolute template directories in lookup order.
func (p *Pongo) SearchPaths() []string {
	return append([]string(nil), p.searchPaths...)
}

// Render renders the named template. Top level keys of data that are not identifiers are only reachable through
// DataKey, as in {{ data["og-image"] }}.
func (p *Pongo) Render(name string, data map[string]any) (string, error) {
	path, ok := Resolve(p.searchPaths, name)
	if !ok {
		return "", errors.Wrapf(ErrTemplateNotFound, "unable to load template %s", name)
	}

	var (
		tpl *pongo2.Template
		err error
	)

	if p.noCache {
		tpl, err = p.set.FromFile(path)
	} else {
		tpl, err = p.set.FromCache(path)
	}
	if err != nil {
		return "", errors.Wrapf(err, "unable to load template %s", name)
	}

	out, err := tpl.Execute(renderContext(data))
	if err != nil {
		return "", errors.Wrapf(err, "unable to render template %s", name)
	}

	return out, nil
}

// renderContext keeps the identifier keys of data and adds data itself under DataKey unless data already defines it.
func renderContext(data map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data)+1)
	for k, v := range data {
		if identifier.MatchString(k) {
			ctx[k] = v
		}
	}

	if _, ok := ctx[DataKey]; !ok {
		if data == nil {
			data = map[string]any{}
		}
		ctx[DataKey] = data
	}

	return ctx
}

var _ Engine = (*Pongo)(nil)
