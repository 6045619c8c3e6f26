package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/pkg/pipeline/measure"
	"github.com/askiada/go-mockup/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	outputsIgnored
	m         measure.Measure
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	for _, name := range []string{model.StartStep.Details.Name, model.EndStep.Details.Name} {
		err := pd.AddStep(name)
		if err != nil {
			return errors.Wrapf(err, "unable to add %s step to drawer", name)
		}
	}

	return nil
}

func (pd *pipelineDrawer) link(parents []*model.StepInfo, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}

	for _, parent := range parents {
		err := pd.AddLink(parent.Name, step.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	return pd.link([]*model.StepInfo{parentStep}, step)
}

func (pd *pipelineDrawer) PrepareMerger(parentSteps []*model.StepInfo, step *model.StepInfo) error {
	return pd.link(parentSteps, step)
}

func (pd *pipelineDrawer) PrepareSink(parentStep, step *model.StepInfo) error {
	err := pd.link([]*model.StepInfo{parentStep}, step)
	if err != nil {
		return err
	}

	return pd.AddLink(step.Name, model.EndStep.Details.Name)
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.SetTotalTime(model.EndStep.Details.Name, pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}

		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// outputsIgnored satisfies the per-item hooks; the drawer only needs the shape of the pipeline.
type outputsIgnored struct{}

func (outputsIgnored) OnStepOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }
func (outputsIgnored) OnMergerOutput(_, _ *model.StepInfo, _ time.Duration) error  { return nil }
func (outputsIgnored) OnSinkOutput(_, _ *model.StepInfo, _, _ time.Duration) error { return nil }
func (outputsIgnored) AfterSink(_ *model.StepInfo, _ time.Duration) error          { return nil }

// PipelineDrawer returns a pipeline option drawing the pipeline once it finishes. When measure is not nil the graph
// is annotated with its durations, so the measure option must be registered as well.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure, startTime: time.Now()}
}
