package model

import "time"

// PipelineOption observes a pipeline while it runs. Measure and drawer are
// implemented as options; any error returned aborts the run.
type PipelineOption interface {
	// New is called once when the pipeline is created.
	New() error
	// Finish is called once after every step has returned without error.
	Finish() error

	StepHooks
	MergerHooks
	SinkHooks
}

// StepHooks are called for root and intermediate steps. parent is
// StartStep's details for a root step.
type StepHooks interface {
	PrepareStep(parent, step *StepInfo) error
	// OnStepOutput reports the time spent waiting for and computing one item
	// that was sent downstream. Dropped items are not reported.
	OnStepOutput(parent, step *StepInfo, iteration, computation time.Duration) error
}

// MergerHooks are called for merger steps.
type MergerHooks interface {
	PrepareMerger(parents []*StepInfo, step *StepInfo) error
	OnMergerOutput(parent, step *StepInfo, iteration time.Duration) error
}

// SinkHooks are called for the sink.
type SinkHooks interface {
	PrepareSink(parent, step *StepInfo) error
	OnSinkOutput(parent, step *StepInfo, iteration, computation time.Duration) error
	// AfterSink is called once the sink input is closed.
	AfterSink(step *StepInfo, total time.Duration) error
}
