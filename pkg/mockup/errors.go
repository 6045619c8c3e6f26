package mockup

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var ErrNilFile = errors.New("nil file")

// PluginError reports a failure of the stage on one item. It unwraps to the underlying error.
type PluginError struct {
	Plugin string
	Err    error
	// ShowStack prints the stack trace captured when the error was created with %+v.
	ShowStack bool
	// ShowProperties prints the detailed chain of Err with %+v.
	ShowProperties bool

	stack errors.StackTrace
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newPluginError(plugin string, err error) *PluginError {
	pe := &PluginError{
		Plugin:         plugin,
		Err:            err,
		ShowStack:      true,
		ShowProperties: true,
	}

	if st, ok := errors.WithStack(err).(stackTracer); ok {
		pe.stack = st.StackTrace()[1:]
	}

	return pe
}

func (e *PluginError) Error() string {
	return e.Plugin + ": " + e.Err.Error()
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// StackTrace returns the frames captured when the error was created.
func (e *PluginError) StackTrace() errors.StackTrace {
	return e.stack
}

// Format implements fmt.Formatter. %+v prints the error chain and the stack trace depending on ShowProperties and
// ShowStack.
func (e *PluginError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if e.ShowProperties {
				fmt.Fprintf(s, "%s: %+v", e.Plugin, e.Err)
			} else {
				_, _ = io.WriteString(s, e.Error())
			}
			if e.ShowStack {
				fmt.Fprintf(s, "%+v", e.stack)
			}

			return
		}

		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
