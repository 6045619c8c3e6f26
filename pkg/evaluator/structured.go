package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAML decodes a single YAML document.
type YAML struct{}

func (YAML) Evaluate(_ context.Context, source, label string) (any, error) {
	var out any

	err := yaml.NewDecoder(strings.NewReader(source)).Decode(&out)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "unable to decode yaml %s", label)
	}

	return normalize(out), nil
}

// JSON decodes a single JSON document. Anything but whitespace after it is an error.
type JSON struct{}

func (JSON) Evaluate(_ context.Context, source, label string) (any, error) {
	var out any

	dec := json.NewDecoder(bytes.NewBufferString(source))
	dec.UseNumber()

	err := dec.Decode(&out)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode json %s", label)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("unable to decode json %s: unexpected content after the document", label)
	}

	return normalize(out), nil
}
