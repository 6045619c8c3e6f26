package measure

import (
	"sort"
	"sync"
	"time"
)

// DefaultMeasure is an in-memory Measure safe for concurrent use.
type DefaultMeasure struct {
	mu    sync.RWMutex
	steps map[string]Metric
}

// NewDefaultMeasure creates an empty measure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		steps: make(map[string]Metric),
	}
}

// AddMetric registers a metric for the step, replacing any previous one.
func (m *DefaultMeasure) AddMetric(name string, concurrent int) Metric {
	mt := newDefaultMetric(concurrent)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[name] = mt

	return mt
}

// GetMetric returns the metric of the step, nil when the step is unknown.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.steps[name]
}

// AllMetrics returns a copy of the metrics indexed by step name.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]Metric, len(m.steps))
	for name, mt := range m.steps {
		res[name] = mt
	}

	return res
}

// Summary is a flattened view of a step metric.
type Summary struct {
	Step      string
	Count     int64
	Average   time.Duration
	Total     time.Duration
	Transport map[string]time.Duration
}

// Summaries returns one Summary per step sorted by step name.
func Summaries(msr Measure) []Summary {
	all := msr.AllMetrics()
	res := make([]Summary, 0, len(all))

	for name, mt := range all {
		sum := Summary{
			Step:      name,
			Count:     mt.Count(),
			Average:   mt.AVGDuration(),
			Total:     mt.GetTotalDuration(),
			Transport: make(map[string]time.Duration),
		}
		for input, info := range mt.AVGTransportDuration() {
			sum.Transport[input] = info.Elapsed
		}
		res = append(res, sum)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Step < res[j].Step
	})

	return res
}

var _ Measure = (*DefaultMeasure)(nil)
