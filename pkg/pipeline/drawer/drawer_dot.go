package drawer

import (
	"os"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-mockup/pkg/pipeline/measure"
)

const maxRGB = 240

// DOTDrawer writes the pipeline graph in the Graphviz DOT format.
type DOTDrawer struct {
	graph    graph.Graph[string, string]
	fileName string
}

// NewDOTDrawer creates a drawer writing to fileName.
func NewDOTDrawer(fileName string) *DOTDrawer {
	return &DOTDrawer{
		fileName: fileName,
		graph:    graph.New(graph.StringHash, graph.Directed()),
	}
}

// AddStep adds a step to the pipeline graph. Adding a known step is a no-op.
func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("label", name))
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and child steps.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// Draw writes the DOT file.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = draw.DOT(d.graph, file, draw.GraphAttribute("rankdir", "LR"))
	if err != nil {
		return errors.Wrapf(err, "unable to write dot file %s", d.fileName)
	}

	return nil
}

// SetTotalTime labels the step with the time elapsed since startTime.
func (d *DOTDrawer) SetTotalTime(stepName string, startTime time.Time) error {
	return d.appendLabel(stepName, time.Since(startTime).String())
}

func (d *DOTDrawer) appendLabel(stepName, text string) error {
	_, properties, err := d.graph.VertexWithProperties(stepName)
	if err != nil {
		return errors.Wrapf(err, "unable to get properties of %s", stepName)
	}

	properties.Attributes["label"] += `\n` + text

	return nil
}

// AddMeasure labels every step with its average duration and colours every link from blue (fastest) to red
// (slowest) according to the average time spent waiting on it.
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	all := msr.AllMetrics()

	var elapsed []time.Duration
	for _, mt := range all {
		for _, info := range mt.AVGTransportDuration() {
			if info.Elapsed > 0 {
				elapsed = append(elapsed, info.Elapsed)
			}
		}
	}
	sort.Slice(elapsed, func(i, j int) bool { return elapsed[i] < elapsed[j] })

	for name, mt := range all {
		if _, _, err := d.graph.VertexWithProperties(name); err != nil {
			continue
		}

		if avg := mt.AVGDuration(); avg > 0 {
			if err := d.appendLabel(name, "avg "+avg.String()); err != nil {
				return err
			}
		}

		for input, info := range mt.AVGTransportDuration() {
			if info.Elapsed == 0 {
				continue
			}

			hex, err := edgeColour(info.Elapsed, elapsed)
			if err != nil {
				return err
			}

			err = d.graph.UpdateEdge(input, name,
				graph.EdgeAttribute("label", info.Elapsed.String()),
				graph.EdgeAttribute("color", hex),
			)
			if err != nil && !errors.Is(err, graph.ErrEdgeNotFound) {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

func edgeColour(value time.Duration, sorted []time.Duration) (string, error) {
	fraction := 1.0
	if minValue, maxValue := sorted[0], sorted[len(sorted)-1]; maxValue > minValue {
		fraction = float64(value-minValue) / float64(maxValue-minValue)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

var _ Drawer = (*DOTDrawer)(nil)
