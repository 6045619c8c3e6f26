package evaluator

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// HCL evaluates the top level attributes of an HCL file.
//
//	template = "page.njk"
//	title    = upper("hi")
//
// Blocks are rejected. Expressions may call a fixed set of string and collection functions and read the label
// through the variable path.
type HCL struct{}

var hclFunctions = map[string]function.Function{
	"upper":      stdlib.UpperFunc,
	"lower":      stdlib.LowerFunc,
	"title":      stdlib.TitleFunc,
	"trimspace":  stdlib.TrimSpaceFunc,
	"format":     stdlib.FormatFunc,
	"join":       stdlib.JoinFunc,
	"split":      stdlib.SplitFunc,
	"replace":    stdlib.ReplaceFunc,
	"concat":     stdlib.ConcatFunc,
	"length":     stdlib.LengthFunc,
	"coalesce":   stdlib.CoalesceFunc,
	"min":        stdlib.MinFunc,
	"max":        stdlib.MaxFunc,
	"jsonencode": stdlib.JSONEncodeFunc,
	"jsondecode": stdlib.JSONDecodeFunc,
}

func (HCL) Evaluate(_ context.Context, source, label string) (any, error) {
	file, diags := hclsyntax.ParseConfig([]byte(source), label, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "unable to parse hcl %s", label)
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "unable to read attributes of %s", label)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"path": cty.StringVal(label)},
		Functions: hclFunctions,
	}

	res := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, errors.Wrapf(diags, "unable to evaluate %s in %s", name, label)
		}

		decoded, err := fromCty(val)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to convert %s in %s", name, label)
		}
		res[name] = decoded
	}

	return res, nil
}

func fromCty(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}

	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal value")
	}

	var out any

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	err = dec.Decode(&out)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode value")
	}

	return normalize(out), nil
}
