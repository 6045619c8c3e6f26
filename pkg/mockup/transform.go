package mockup

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/pkg/engine"
	"github.com/askiada/go-mockup/pkg/evaluator"
	"github.com/askiada/go-mockup/pkg/file"
)

// Transform renders data files through templates. Use New or NewFromMap to create one.
type Transform struct {
	name      string
	property  string
	engine    engine.Engine
	evaluator evaluator.Evaluator
	logger    log.Interface

	done      atomic.Int64
	missing   atomic.Int64
	undefined atomic.Int64
	failed    atomic.Int64
}

// New creates a Transform. Without WithEngine, a pongo2 engine is built over the template directories.
func New(opts ...Option) (*Transform, error) {
	s := &settings{Config: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}

	return newTransform(s)
}

// NewFromMap creates a Transform from a loose options mapping, see DecodeConfig. opts are applied on top.
func NewFromMap(raw map[string]any, opts ...Option) (*Transform, error) {
	cfg, err := DecodeConfig(raw)
	if err != nil {
		return nil, err
	}

	return New(append([]Option{WithConfig(cfg)}, opts...)...)
}

func newTransform(s *settings) (*Transform, error) {
	if s.name == "" {
		s.name = PluginName
	}
	if s.logger == nil {
		s.logger = log.Log
	}
	if s.evaluator == nil {
		s.evaluator = evaluator.NewRegistry()
	}
	if s.TemplateProperty == "" {
		s.TemplateProperty = DefaultTemplateProperty
	}
	if len(s.TemplateDirectories) == 0 {
		s.TemplateDirectories = []string{DefaultTemplateDirectory}
	}

	eng := s.Engine
	if eng == nil {
		pongo, err := engine.NewPongo(s.TemplateDirectories, s.EngineOptions, s.logger)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create template engine")
		}
		eng = pongo
	}

	return &Transform{
		name:      s.name,
		property:  s.TemplateProperty,
		engine:    eng,
		evaluator: s.evaluator,
		logger:    s.logger,
	}, nil
}

// Name returns the plugin name carried by errors.
func (t *Transform) Name() string {
	return t.name
}

// Stats returns the outcome counters.
func (t *Transform) Stats() Stats {
	return Stats{
		Done:      t.done.Load(),
		Missing:   t.missing.Load(),
		Undefined: t.undefined.Load(),
		Failed:    t.failed.Load(),
	}
}

// Process renders f. It returns f with rendered contents, nil without error when f is dropped, or a *PluginError.
// f is left untouched unless rendering succeeds.
func (t *Transform) Process(ctx context.Context, f *file.File) (*file.File, error) {
	out, err := t.process(ctx, f)
	if err != nil {
		t.failed.Add(1)

		return nil, newPluginError(t.name, err)
	}

	return out, nil
}

func (t *Transform) process(ctx context.Context, f *file.File) (*file.File, error) {
	if f == nil {
		return nil, ErrNilFile
	}

	raw, err := f.ReadAll(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load %s", f.Path)
	}

	value, err := t.evaluator.Evaluate(ctx, strings.ToValidUTF8(string(raw), "\uFFFD"), f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to evaluate %s", f.Path)
	}

	data, err := mergeData(value, f.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to prepare data of %s", f.Path)
	}

	rel := f.Relative()

	name, ok := lookupTemplate(data, t.property)
	if !ok {
		t.report(StatusUndefined, rel, "")

		return nil, nil
	}

	if !TemplateExists(t.engine.SearchPaths(), name) {
		t.report(StatusMissing, rel, name)

		return nil, nil
	}

	out, err := t.engine.Render(name, data)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to render %s with %s", f.Path, name)
	}

	f.SetBytes([]byte(out))
	t.report(StatusDone, rel, name)

	return f, nil
}
