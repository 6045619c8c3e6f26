package pipeline

import (
	"time"

	"github.com/askiada/go-mockup/pkg/pipeline/model"
)

// noopOption implements model.PipelineOption without doing anything. Tests embed it to override single hooks.
type noopOption struct{}

func (noopOption) New() error { return nil }

func (noopOption) PrepareStep(_, _ *model.StepInfo) error { return nil }

func (noopOption) OnStepOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }

func (noopOption) PrepareMerger(_ []*model.StepInfo, _ *model.StepInfo) error { return nil }

func (noopOption) OnMergerOutput(_, _ *model.StepInfo, _ time.Duration) error { return nil }

func (noopOption) PrepareSink(_, _ *model.StepInfo) error { return nil }

func (noopOption) OnSinkOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }

func (noopOption) AfterSink(_ *model.StepInfo, _ time.Duration) error { return nil }

func (noopOption) Finish() error { return nil }

var _ model.PipelineOption = noopOption{}
