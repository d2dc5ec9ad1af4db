package schedule

import (
	"context"

	"dagsched/graph"

	"github.com/ledgerwatch/log/v3"
	"github.com/pkg/errors"
	"github.com/uber-go/tally/v4"
	"golang.org/x/sync/errgroup"
)

// ScheduleAggregator runs several methods on the same graph and keeps the
// shortest schedule.
type ScheduleAggregator struct {
	graph   *graph.Graph
	methods []Method
	metrics *Metrics
}

func NewScheduleAggregator(g *graph.Graph, scope tally.Scope, methods ...Method) *ScheduleAggregator {
	if len(methods) == 0 {
		methods = Methods
	}
	if scope == nil {
		scope = tally.NoopScope
	}
	return &ScheduleAggregator{
		graph:   g,
		methods: methods,
		metrics: NewMetrics(scope),
	}
}

// Schedule runs every method concurrently. The bound graph is only read, so
// the runs share it. Ties on makespan go to the method listed first.
func (sa *ScheduleAggregator) Schedule(ctx context.Context) (*Solution, Method, error) {
	if err := sa.graph.Ready(); err != nil {
		sa.metrics.RunFail.Inc(1)
		return nil, 0, err
	}
	solutions := make([]*Solution, len(sa.methods))
	eg, ctx := errgroup.WithContext(ctx)
	for i, m := range sa.methods {
		i, m := i, m
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, ok := sa.metrics.Duration[m]; !ok {
				return errors.Wrapf(ErrUnknownMethod, "method %d", int(m))
			}
			sw := sa.metrics.Duration[m].Start()
			sol, err := Schedule(sa.graph, m)
			sw.Stop()
			if err != nil {
				return err
			}
			sa.metrics.Makespan[m].Update(sol.Makespan())
			solutions[i] = sol
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		sa.metrics.RunFail.Inc(1)
		return nil, 0, err
	}

	best := 0
	for i := 1; i < len(solutions); i++ {
		if solutions[i].Makespan() < solutions[best].Makespan() {
			best = i
		}
	}
	method := sa.methods[best]
	sa.metrics.Runs.Inc(1)
	sa.metrics.Picked[method].Inc(1)
	log.Debug("aggregated schedule", "method", method, "makespan", solutions[best].Makespan())
	return solutions[best], method, nil
}
