// Package evaluator turns the source text of a data file into a Go value.
//
// Evaluators never run general purpose code with access to the host: Lua chunks run in a state without the io, os
// and package libraries, HCL files are evaluated as attributes with a fixed function set, and YAML or JSON documents
// are only decoded. The Registry picks an evaluator from the extension of the label passed along with the source.
package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var ErrUnsupported = errors.New("no evaluator registered for extension")

// Evaluator evaluates source and returns the value it produces. label identifies the source in diagnostics.
// Implementations must be safe for concurrent use.
type Evaluator interface {
	Evaluate(ctx context.Context, source, label string) (any, error)
}

// Func adapts a function to the Evaluator interface.
type Func func(ctx context.Context, source, label string) (any, error)

func (fn Func) Evaluate(ctx context.Context, source, label string) (any, error) {
	return fn(ctx, source, label)
}

// Registry dispatches evaluation on the extension of the label.
type Registry struct {
	byExt map[string]Evaluator
}

// NewRegistry returns a registry handling .lua, .hcl, .yaml, .yml and .json sources.
func NewRegistry() *Registry {
	reg := &Registry{byExt: make(map[string]Evaluator)}
	reg.Register(".lua", Lua{})
	reg.Register(".hcl", HCL{})
	reg.Register(".yaml", YAML{})
	reg.Register(".yml", YAML{})
	reg.Register(".json", JSON{})

	return reg
}

// Register associates an evaluator with an extension, replacing the previous one. Registration is not safe once
// the registry is in use.
func (r *Registry) Register(ext string, ev Evaluator) {
	r.byExt[normalizeExt(ext)] = ev
}

// Extensions lists the registered extensions.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}

	return exts
}

// Supports reports whether an evaluator is registered for the extension of label.
func (r *Registry) Supports(label string) bool {
	_, ok := r.byExt[normalizeExt(filepath.Ext(label))]

	return ok
}

func (r *Registry) Evaluate(ctx context.Context, source, label string) (any, error) {
	ext := normalizeExt(filepath.Ext(label))

	ev, ok := r.byExt[ext]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "%q (%s)", ext, label)
	}

	return ev.Evaluate(ctx, source, label)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

// normalize converts decoded documents into the shapes templates expect: string keyed maps, []any lists and int64
// for integral numbers.
func normalize(value any) any {
	switch val := value.(type) {
	case map[string]any:
		for k, v := range val {
			val[k] = normalize(v)
		}

		return val
	case map[any]any:
		res := make(map[string]any, len(val))
		for k, v := range val {
			res[fmt.Sprint(k)] = normalize(v)
		}

		return res
	case []any:
		for i, v := range val {
			val[i] = normalize(v)
		}

		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return normalizeFloat(f)
		}

		return val.String()
	case float64:
		return normalizeFloat(val)
	case int:
		return int64(val)
	default:
		return val
	}
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
		return int64(f)
	}

	return f
}
