// Package autoscaler finds the steps limiting the throughput of a measured pipeline.
package autoscaler

import (
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-mockup/pkg/pipeline/measure"
	"github.com/askiada/go-mockup/pkg/pipeline/model"
)

var ErrNoMetrics = errors.New("no metrics recorded")

// Flow is a step on the slowest path of a pipeline.
type Flow struct {
	Step string
	// Average is the average time the step spends on one item.
	Average time.Duration
	// Wait is the average time the step waits on the previous step of the path.
	Wait time.Duration
}

// SlowestPath returns the path from the start to the end of the pipeline accumulating the largest average step
// durations. Steps appear in pipeline order, start and end excluded.
func SlowestPath(msr measure.Measure) ([]Flow, error) {
	start, end := model.StartStep.Details.Name, model.EndStep.Details.Name

	all := msr.AllMetrics()
	if len(all) <= 2 {
		return nil, ErrNoMetrics
	}

	var maxAvg time.Duration
	for _, mt := range all {
		if avg := mt.AVGDuration(); avg > maxAvg {
			maxAvg = avg
		}
	}

	g := graph.New(graph.StringHash, graph.Directed(), graph.Weighted())
	for name := range all {
		if err := g.AddVertex(name); err != nil {
			return nil, errors.Wrapf(err, "unable to add step %s", name)
		}
	}

	hasParent := make(map[string]bool)
	hasChild := make(map[string]bool)

	// The cheaper an edge, the slower its target: the shortest path is the slowest one.
	weight := func(name string) int {
		if mt, ok := all[name]; ok {
			return int(maxAvg - mt.AVGDuration())
		}

		return int(maxAvg)
	}

	addEdge := func(from, to string) error {
		err := g.AddEdge(from, to, graph.EdgeWeight(weight(to)))
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return errors.Wrapf(err, "unable to link %s to %s", from, to)
		}
		hasChild[from] = true
		hasParent[to] = true

		return nil
	}

	for name, mt := range all {
		for input := range mt.AVGTransportDuration() {
			if _, ok := all[input]; !ok {
				continue
			}
			if err := addEdge(input, name); err != nil {
				return nil, err
			}
		}
	}

	for name := range all {
		if name == start || name == end {
			continue
		}
		if !hasParent[name] {
			if err := addEdge(start, name); err != nil {
				return nil, err
			}
		}
		if !hasChild[name] {
			if err := addEdge(name, end); err != nil {
				return nil, err
			}
		}
	}

	path, err := graph.ShortestPath(g, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "unable to find the slowest path")
	}

	flows := make([]Flow, 0, len(path))
	for i, name := range path {
		if name == start || name == end {
			continue
		}

		mt := all[name]
		flow := Flow{Step: name, Average: mt.AVGDuration()}
		if info, ok := mt.AVGTransportDuration()[path[i-1]]; ok {
			flow.Wait = info.Elapsed
		}
		flows = append(flows, flow)
	}

	return flows, nil
}

// Bottlenecks returns flows sorted from the slowest step to the fastest.
func Bottlenecks(flows []Flow) []Flow {
	res := append([]Flow(nil), flows...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Average > res[j].Average
	})

	return res
}
