package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/pkg/pipeline/model"
)

// AddRootStep adds a step feeding the pipeline. The output is closed when stepFn returns unless StepKeepOpen is set.
func AddRootStep[O any](pipe *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error, opts ...StepOption[O]) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.RootStepType,
			Name:       name,
			Concurrent: 1,
		},
	}
	for _, opt := range opts {
		opt(step)
	}
	step.Output = make(chan O, step.Details.BufferSize)

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(model.StartStep.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run prepare step function")
		}
	}

	errC := make(chan error, 1)
	pipe.stepErrs.register(newStepErrChan(name, errC))
	pipe.goFn = append(pipe.goFn, func(ctx context.Context) {
		defer func() {
			if !step.KeepOpen {
				close(step.Output)
			}
			close(errC)
		}()

		err := stepFn(ctx, step.Output)
		if err != nil {
			errC <- err
		}
	})

	return step, nil
}
