package schedule

import (
	"github.com/uber-go/tally/v4"
)

// Metrics contains the metrics reported by the schedule aggregator
type Metrics struct {
	Runs    tally.Counter
	RunFail tally.Counter
	// Picked counts how often each method produced the winning schedule
	Picked map[Method]tally.Counter
	// Makespan of the last schedule of each method
	Makespan map[Method]tally.Gauge
	Duration map[Method]tally.Timer
}

// NewMetrics returns a new Metrics struct with all metrics initialized and
// rooted below the given tally scope
func NewMetrics(scope tally.Scope) *Metrics {
	aggScope := scope.SubScope("aggregator")
	successScope := aggScope.Tagged(map[string]string{"type": "success"})
	failScope := aggScope.Tagged(map[string]string{"type": "fail"})

	m := &Metrics{
		Runs:     successScope.Counter("run"),
		RunFail:  failScope.Counter("run"),
		Picked:   make(map[Method]tally.Counter, len(Methods)),
		Makespan: make(map[Method]tally.Gauge, len(Methods)),
		Duration: make(map[Method]tally.Timer, len(Methods)),
	}
	for _, method := range Methods {
		methodScope := aggScope.Tagged(map[string]string{"method": method.String()})
		m.Picked[method] = methodScope.Counter("picked")
		m.Makespan[method] = methodScope.Gauge("makespan")
		m.Duration[method] = methodScope.Timer("duration")
	}
	return m
}
