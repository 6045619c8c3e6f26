package cli

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// loadConfig reads a YAML options mapping. An empty path returns an empty mapping.
func loadConfig(path string) (map[string]any, error) {
	raw := make(map[string]any)
	if path == "" {
		return raw, nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to expand %s", path)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %s", expanded)
	}

	err = yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse config %s", expanded)
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	return raw, nil
}
