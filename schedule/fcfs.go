package schedule

import (
	"dagsched/graph"

	"github.com/ledgerwatch/log/v3"
)

// SchedulerFCFS places tasks in topological order without backfilling.
type SchedulerFCFS struct {
	graph  *graph.Graph
	logger log.Logger
}

func NewSchedulerFCFS(g *graph.Graph) *SchedulerFCFS {
	return &SchedulerFCFS{
		graph:  g,
		logger: log.New("method", MethodFCFS.String()),
	}
}

// FCFS is the first come first served baseline: heads go to their fastest
// machine, every other task stays with its latest finishing predecessor when
// it can start there as soon as its inputs are ready, and otherwise moves to
// the machine where it can start earliest.
func FCFS(g *graph.Graph) (*Solution, error) {
	return NewSchedulerFCFS(g).Schedule()
}

func (s *SchedulerFCFS) Schedule() (*Solution, error) {
	g := s.graph
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	sol := NewSolution(g.Environment(), g.Len())
	for _, t := range order {
		var m int
		var start float64
		if len(g.Predecessors(t)) == 0 {
			m, _ = g.MinRuntime(t)
			start = sol.appendStart(m, 0)
		} else {
			m, start = s.selectProcessor(sol, t)
		}
		sol.Add(t, g.Tid(t), m, start, start+g.Runtime(t, m))
	}
	s.logger.Debug("schedule done", "tasks", sol.Len(), "makespan", sol.Makespan())
	return sol, nil
}

func (s *SchedulerFCFS) selectProcessor(sol *Solution, t int) (int, float64) {
	g := s.graph
	var latest *Allocation
	for _, p := range g.Predecessors(t) {
		a, _ := sol.Allocation(p)
		if latest == nil || a.AFT > latest.AFT {
			latest = a
		}
	}

	// stay with the latest predecessor when that costs no waiting
	home := latest.Machine
	ready := sol.ReadyTime(g, t, home)
	if start := sol.appendStart(home, ready); start == ready {
		return home, start
	}

	pid := 0
	best := 0.0
	for m := 0; m < g.Machines(); m++ {
		start := sol.appendStart(m, sol.ReadyTime(g, t, m))
		if m == 0 || start < best {
			pid = m
			best = start
		}
	}
	return pid, best
}
