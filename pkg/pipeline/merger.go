package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/pkg/pipeline/model"
)

// AddMerger adds a merger step to the pipeline. It merges the output of the steps into a single channel which is
// closed once every input is drained.
func AddMerger[I any](pipe *Pipeline, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if len(steps) == 0 {
		return nil, ErrMergerInputs
	}

	merged, err := newMergerStep(pipe, name, steps)
	if err != nil {
		return nil, errors.Wrap(err, "unable to prepare merger")
	}

	errC := make(chan error, len(steps))
	var pending sync.WaitGroup
	pending.Add(len(steps))
	go func() {
		pending.Wait()
		close(errC)
		close(merged.Output)
	}()

	for _, in := range steps {
		pipe.goFn = append(pipe.goFn, func(ctx context.Context) {
			defer pending.Done()
			if err := forwardToMerger(ctx, pipe, in, merged); err != nil {
				errC <- err
			}
		})
	}

	pipe.stepErrs.register(newStepErrChan(name, errC))

	return merged, nil
}

func newMergerStep[I any](pipe *Pipeline, name string, inputs []*model.Step[I]) (*model.Step[I], error) {
	parents := make([]*model.StepInfo, 0, len(inputs))
	for _, in := range inputs {
		if in == nil {
			return nil, ErrInputMustBeSet
		}
		if in.Details == nil {
			in.Details = model.StartStep.Details
		}
		parents = append(parents, in.Details)
	}

	merged := &model.Step[I]{
		Details: &model.StepInfo{Type: model.MergerStepType, Name: name, Concurrent: 1},
		Output:  make(chan I),
	}
	for _, opt := range pipe.opts {
		if err := opt.PrepareMerger(parents, merged.Details); err != nil {
			return nil, errors.Wrap(err, "unable to run prepare merger function")
		}
	}

	return merged, nil
}

// forwardToMerger copies every item of in to the merged output until in is
// closed or ctx is cancelled.
func forwardToMerger[I any](ctx context.Context, pipe *Pipeline, in, merged *model.Step[I]) error {
	for {
		start := time.Now()

		var item I
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok = <-in.Output:
			if !ok {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case merged.Output <- item:
		}

		elapsed := time.Since(start)
		for _, opt := range pipe.opts {
			if err := opt.OnMergerOutput(in.Details, merged.Details, elapsed); err != nil {
				return errors.Wrap(err, "unable to run on merger output function")
			}
		}
	}
}
