// Package engine renders named templates found under a list of search directories.
package engine

import (
	"github.com/pkg/errors"
)

var ErrNoSearchPaths = errors.New("no template directory available")

// Engine renders templates by name. Implementations must be safe for concurrent renders.
type Engine interface {
	// SearchPaths returns the directories templates are resolved against, in lookup order.
	SearchPaths() []string
	// Render renders the named template with data as context.
	Render(name string, data map[string]any) (string, error)
}

// Options tunes the default engine.
type Options struct {
	// TrimBlocks removes the first newline after a block tag.
	TrimBlocks bool `mapstructure:"trimBlocks" yaml:"trimBlocks"`
	// LStripBlocks strips leading whitespace from the start of a line to a block tag.
	LStripBlocks bool `mapstructure:"lstripBlocks" yaml:"lstripBlocks"`
	// NoCache parses templates on every render so that edits are picked up.
	NoCache bool `mapstructure:"noCache" yaml:"noCache"`
	// Globals are visible to every template. Per render data takes precedence.
	Globals map[string]any `mapstructure:"globals" yaml:"globals"`
}
