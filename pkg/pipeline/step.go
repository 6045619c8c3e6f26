package pipeline

import (
	"context"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-mockup/pkg/pipeline/model"
)

func isZero[O any](out O) bool {
	return reflect.ValueOf(&out).Elem().IsZero()
}

func notifyStepOutput(opts []model.PipelineOption, parent, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	for _, opt := range opts {
		err := opt.OnStepOutput(parent, step, iterationDuration, computationDuration)
		if err != nil {
			return errors.Wrap(err, "unable to run on step output function")
		}
	}

	return nil
}

func sequentialOneToOne[I any, O any](ctx context.Context, goIdx int, input *model.Step[I], output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error), oneOrZero bool, opts ...model.PipelineOption,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "go routine %d", goIdx)
		}

		start := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}
			startFn := time.Now()
			out, err := oneToOneFn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}
			endFn := time.Since(startFn)

			if oneOrZero && isZero(out) {
				continue
			}

			// check the context again so that running workers stop feeding the pipeline
			select {
			case <-ctx.Done():
				return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
			case output.Output <- out:
				err := notifyStepOutput(opts, input.Details, output.Details, time.Since(start)-endFn, endFn)
				if err != nil {
					return err
				}
			}
		}
	}
}

func runOneToOne[I any, O any](ctx context.Context, input *model.Step[I], output *model.Step[O],
	oneToOneFn func(context.Context, I) (O, error), oneOrZero bool, opts ...model.PipelineOption,
) error {
	concurrent := output.Details.Concurrent
	if concurrent <= 1 {
		return sequentialOneToOne(ctx, 0, input, output, oneToOneFn, oneOrZero, opts...)
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	// each worker stops as soon as one of them fails
	for goIdx := range concurrent {
		errGrp.Go(func() error {
			return sequentialOneToOne(dCtx, goIdx, input, output, oneToOneFn, oneOrZero, opts...)
		})
	}

	return errGrp.Wait() //nolint:wrapcheck // already wrapped by the workers
}

func prepareStep[I, O any](pipe *Pipeline, name string, input *model.Step[I], opts ...StepOption[O]) (*model.Step[O], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.NormalStepType,
			Name:       name,
			Concurrent: 1,
		},
	}
	for _, opt := range opts {
		opt(step)
	}
	step.Output = make(chan O, step.Details.BufferSize)

	var parent *model.StepInfo
	if input.Details != nil {
		parent = input.Details
	} else {
		parent = model.StartStep.Details
		input.Details = parent
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareStep(parent, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run prepare step function")
		}
	}

	return step, nil
}

func addOneToOne[I any, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error),
	oneOrZero bool, opts ...StepOption[O],
) (*model.Step[O], error) {
	step, err := prepareStep(pipe, name, input, opts...)
	if err != nil {
		return nil, err
	}

	errC := make(chan error, 1)
	pipe.stepErrs.register(newStepErrChan(name, errC))
	pipe.goFn = append(pipe.goFn, func(ctx context.Context) {
		defer func() {
			close(step.Output)
			close(errC)
		}()

		err := runOneToOne(ctx, input, step, oneToOneFn, oneOrZero, pipe.opts...)
		if err != nil {
			errC <- err
		}
	})

	return step, nil
}

// AddStepOneToOne adds a step emitting exactly one output per input.
func AddStepOneToOne[I any, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addOneToOne(pipe, name, input, oneToOneFn, false, opts...)
}

// AddStepOneToOneOrZero adds a step emitting at most one output per input. Zero value outputs are dropped from the
// stream without error.
func AddStepOneToOneOrZero[I any, O any](pipe *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addOneToOne(pipe, name, input, oneToOneFn, true, opts...)
}
