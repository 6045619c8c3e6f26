// Package build runs the render pipeline over source directories: walk, render, write.
package build

import (
	"context"
	"fmt"
	"sync"

	"github.com/apex/log"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/internal/autoscaler"
	"github.com/askiada/go-mockup/internal/sink"
	"github.com/askiada/go-mockup/internal/source"
	"github.com/askiada/go-mockup/pkg/file"
	"github.com/askiada/go-mockup/pkg/mockup"
	"github.com/askiada/go-mockup/pkg/pipeline"
	"github.com/askiada/go-mockup/pkg/pipeline/drawer"
	"github.com/askiada/go-mockup/pkg/pipeline/measure"
	"github.com/askiada/go-mockup/pkg/pipeline/model"
)

var ErrNoSources = errors.New("no source directory")

// Options configures a run.
type Options struct {
	Sources []string
	// Include lists glob patterns a source file must match, see source.Walker.
	Include []string
	// Accept filters source files by absolute path.
	Accept func(path string) bool
	Mode   source.Mode

	Dest string
	Ext  string

	Concurrency int
	// KeepGoing drops failing items instead of stopping the run. Their errors are returned once the run is over.
	KeepGoing bool
	// GraphFile receives a DOT drawing of the pipeline when set.
	GraphFile string
	// Measure records step durations in the report.
	Measure bool
}

// Report describes a finished run.
type Report struct {
	Stats     mockup.Stats
	Files     int64
	Bytes     int64
	Summaries []measure.Summary
	Slowest   []autoscaler.Flow
}

// Run renders every source file with stage and writes the emitted files.
func Run(ctx context.Context, stage *mockup.Transform, opts Options, logger log.Interface) (*Report, error) {
	if len(opts.Sources) == 0 {
		return nil, ErrNoSources
	}
	if logger == nil {
		logger = log.Log
	}

	writer, err := sink.NewWriter(opts.Dest, opts.Ext, logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create writer")
	}

	msr := measure.NewDefaultMeasure()

	var pipeOpts []model.PipelineOption
	if opts.Measure || opts.GraphFile != "" {
		pipeOpts = append(pipeOpts, measure.PipelineMeasure(msr))
	}
	if opts.GraphFile != "" {
		pipeOpts = append(pipeOpts, drawer.PipelineDrawer(drawer.NewDOTDrawer(opts.GraphFile), msr))
	}

	pipe, err := pipeline.New(ctx, pipeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	input, err := addSources(pipe, opts)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		itemErrs *multierror.Error
	)

	process := stage.Process
	if opts.KeepGoing {
		process = func(ctx context.Context, f *file.File) (*file.File, error) {
			out, err := stage.Process(ctx, f)
			if err != nil {
				logger.WithError(err).Error("skipping item")

				mu.Lock()
				itemErrs = multierror.Append(itemErrs, err)
				mu.Unlock()

				return nil, nil
			}

			return out, nil
		}
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	rendered, err := pipeline.AddStepOneToOneOrZero(pipe, stage.Name(), input, process,
		pipeline.StepConcurrency[*file.File](concurrency),
		pipeline.StepBufferSize[*file.File](concurrency),
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add render step")
	}

	err = pipeline.AddSink(pipe, "write", rendered, writer.Write)
	if err != nil {
		return nil, errors.Wrap(err, "unable to add write step")
	}

	err = pipe.Run()

	report := &Report{Stats: stage.Stats()}
	report.Files, report.Bytes = writer.Written()

	if err != nil {
		return report, errors.Wrap(err, "pipeline failed")
	}

	if opts.Measure {
		report.Summaries = measure.Summaries(msr)

		report.Slowest, err = autoscaler.SlowestPath(msr)
		if err != nil && !errors.Is(err, autoscaler.ErrNoMetrics) {
			logger.WithError(err).Warn("unable to find the slowest path")
		}
	}

	return report, itemErrs.ErrorOrNil()
}

func addSources(pipe *pipeline.Pipeline, opts Options) (*model.Step[*file.File], error) {
	roots := make([]*model.Step[*file.File], 0, len(opts.Sources))

	for i, dir := range opts.Sources {
		walker := &source.Walker{
			Root:    dir,
			Mode:    opts.Mode,
			Include: opts.Include,
			Accept:  opts.Accept,
		}

		name := "source"
		if len(opts.Sources) > 1 {
			name = fmt.Sprintf("source %d", i+1)
		}

		root, err := pipeline.AddRootStep(pipe, name, walker.Walk)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add source %s", dir)
		}
		roots = append(roots, root)
	}

	if len(roots) == 1 {
		return roots[0], nil
	}

	merged, err := pipeline.AddMerger(pipe, "sources", roots...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to merge sources")
	}

	return merged, nil
}
