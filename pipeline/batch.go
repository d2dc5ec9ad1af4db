package pipeline

import (
	"context"
	"sort"
	"sync"

	dag "dagsched/graph"
	"dagsched/genetic"
	"dagsched/schedule"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
	"github.com/ledgerwatch/log/v3"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/uber-go/tally/v4"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/exp/rand"
)

// Runner schedules one bound graph.
type Runner func(ctx context.Context, g *dag.Graph) (*schedule.Solution, error)

// AggregateRunner keeps the shortest of the list scheduling methods.
func AggregateRunner(scope tally.Scope, methods ...schedule.Method) Runner {
	return func(ctx context.Context, g *dag.Graph) (*schedule.Solution, error) {
		sol, _, err := schedule.NewScheduleAggregator(g, scope, methods...).Schedule(ctx)
		return sol, err
	}
}

// GeneticRunner evolves a population and returns the shortest schedule of
// the final Pareto front. Runs seeded alike are reproducible.
func GeneticRunner(cfg genetic.Config, seed uint64) Runner {
	return func(ctx context.Context, g *dag.Graph) (*schedule.Solution, error) {
		res, err := genetic.Run(ctx, g, cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		best := res.Front[0].Solution
		for _, ind := range res.Front[1:] {
			if ind.Solution.Makespan() < best.Makespan() {
				best = ind.Solution
			}
		}
		return best, nil
	}
}

type Job struct {
	Name  string
	Graph *dag.Graph
}

type RunResult struct {
	ID       string
	Name     string
	Solution *schedule.Solution
	Err      error
}

type batchMetrics struct {
	runs    tally.Counter
	runFail tally.Counter
}

// Batch runs independent scheduling jobs on a worker pool. Jobs share
// nothing but read-only graphs and environments.
type Batch struct {
	pool    *ants.PoolWithFunc
	runner  Runner
	results *haxmap.Map[string, *RunResult]
	done    *atomic.Int64
	failed  *atomic.Int64
	metrics batchMetrics
}

type jobAndWg struct {
	ctx context.Context
	id  string
	job Job
	wg  *sync.WaitGroup
}

func NewBatch(workers int, runner Runner, scope tally.Scope) (*Batch, error) {
	if scope == nil {
		scope = tally.NoopScope
	}
	batchScope := scope.SubScope("batch")
	b := &Batch{
		runner:  runner,
		results: haxmap.New[string, *RunResult](),
		done:    atomic.NewInt64(0),
		failed:  atomic.NewInt64(0),
		metrics: batchMetrics{
			runs:    batchScope.Tagged(map[string]string{"type": "success"}).Counter("run"),
			runFail: batchScope.Tagged(map[string]string{"type": "fail"}).Counter("run"),
		},
	}
	pool, err := ants.NewPoolWithFunc(workers, func(i interface{}) {
		// i is a job and its waitGroup
		jw := i.(*jobAndWg)
		defer jw.wg.Done()
		b.process(jw)
	})
	if err != nil {
		return nil, errors.Wrap(err, "create batch pool")
	}
	b.pool = pool
	return b, nil
}

func (b *Batch) process(jw *jobAndWg) {
	res := &RunResult{ID: jw.id, Name: jw.job.Name}
	if err := jw.ctx.Err(); err != nil {
		res.Err = err
	} else {
		res.Solution, res.Err = b.runner(jw.ctx, jw.job.Graph)
	}
	if res.Err != nil {
		res.Err = errors.Wrapf(res.Err, "run %s (%s)", jw.job.Name, jw.id)
		b.failed.Inc()
		b.metrics.runFail.Inc(1)
	} else {
		b.metrics.runs.Inc(1)
	}
	b.done.Inc()
	b.results.Set(jw.id, res)
}

// Run schedules every job and waits for all of them. Results come back in
// job order; the error combines every failed run.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]*RunResult, error) {
	var wg sync.WaitGroup
	ids := make([]string, len(jobs))
	var errs error
	for i, job := range jobs {
		ids[i] = uuid.New().String()
		wg.Add(1)
		if err := b.pool.Invoke(&jobAndWg{ctx: ctx, id: ids[i], job: job, wg: &wg}); err != nil {
			wg.Done()
			b.results.Set(ids[i], &RunResult{ID: ids[i], Name: job.Name, Err: err})
			b.failed.Inc()
		}
	}
	wg.Wait()

	ret := make([]*RunResult, len(jobs))
	for i, id := range ids {
		res, _ := b.results.Get(id)
		ret[i] = res
		errs = multierr.Append(errs, res.Err)
	}
	log.Debug("batch done", "jobs", len(jobs), "failed", b.failed.Load())
	return ret, errs
}

// Result looks up a finished run by id.
func (b *Batch) Result(id string) (*RunResult, bool) {
	return b.results.Get(id)
}

// IDs lists the ids of every finished run, sorted.
func (b *Batch) IDs() []string {
	ids := make([]string, 0, b.results.Len())
	b.results.ForEach(func(id string, _ *RunResult) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

func (b *Batch) Done() int64 {
	return b.done.Load()
}

func (b *Batch) Failed() int64 {
	return b.failed.Load()
}

func (b *Batch) Release() {
	b.pool.Release()
}
