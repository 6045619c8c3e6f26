package pipeline

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrInputMustBeSet    = errors.New("input channel must be set")
	ErrMergerInputs      = errors.New("merger needs at least one input")
)

// stepErrors collects the error channel of every registered step.
type stepErrors struct {
	mu    sync.Mutex
	chans []*stepErrChan
}

func (s *stepErrors) register(c *stepErrChan) {
	s.mu.Lock()
	s.chans = append(s.chans, c)
	s.mu.Unlock()
}

type stepErrChan struct {
	step string
	errs <-chan error
}

func newStepErrChan(step string, errs <-chan error) *stepErrChan {
	return &stepErrChan{step: step, errs: errs}
}

// fanInErrors forwards every step error, prefixed with the step name, to a
// single channel closed once all inputs are drained. The buffer holds one
// error per step so a step's first failure never blocks.
func fanInErrors(chans ...*stepErrChan) <-chan error {
	out := make(chan error, len(chans))

	var wg sync.WaitGroup
	for _, c := range chans {
		if c.errs == nil {
			continue
		}
		wg.Add(1)
		go func(c *stepErrChan) {
			defer wg.Done()
			for err := range c.errs {
				out <- errors.Wrap(err, c.step)
			}
		}(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
