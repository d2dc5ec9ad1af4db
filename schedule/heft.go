package schedule

import (
	"container/heap"
	"math"

	"dagsched/graph"

	"github.com/ledgerwatch/log/v3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var ErrUnknownMethod = errors.New("unknown scheduling method")

// SchedulerHeur is the insertion based list scheduler behind HEFT and PHEFT.
type SchedulerHeur struct {
	graph  *graph.Graph
	method Method
	oct    *mat.Dense
	logger log.Logger
}

func NewSchedulerHeur(g *graph.Graph, m Method) *SchedulerHeur {
	return &SchedulerHeur{
		graph:  g,
		method: m,
		logger: log.New("method", m.String()),
	}
}

// HEFT schedules g by upward rank, each task on the machine giving the
// earliest finish time.
func HEFT(g *graph.Graph) (*Solution, error) {
	return NewSchedulerHeur(g, MethodHEFT).Schedule()
}

// PHEFT schedules g by optimistic cost rank, each task on the machine giving
// the smallest EFT + OCT.
func PHEFT(g *graph.Graph) (*Solution, error) {
	return NewSchedulerHeur(g, MethodPHEFT).Schedule()
}

func (s *SchedulerHeur) Schedule() (*Solution, error) {
	if err := s.graph.Ready(); err != nil {
		return nil, err
	}
	priority, err := s.taskPrioritize()
	if err != nil {
		return nil, err
	}
	sol := s.pqSchedule(priority)
	s.logger.Debug("schedule done", "tasks", sol.Len(), "makespan", sol.Makespan())
	return sol, nil
}

func (s *SchedulerHeur) taskPrioritize() ([]float64, error) {
	switch s.method {
	case MethodHEFT:
		return UpwardRank(s.graph)
	case MethodPHEFT:
		oct, err := OptimisticCostTable(s.graph)
		if err != nil {
			return nil, err
		}
		s.oct = oct
		return OCTRank(oct), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMethod, "%s is not a list scheduling method", s.method)
	}
}

// pqSchedule takes tasks highest priority first among those whose
// predecessors are all placed. With ranks that decrease along every edge this
// is exactly the global descending rank order.
func (s *SchedulerHeur) pqSchedule(priority []float64) *Solution {
	g := s.graph
	sol := NewSolution(g.Environment(), g.Len())
	indegree := make([]int, g.Len())
	pq := make(PriorityTaskQueue, 0)
	for i := 0; i < g.Len(); i++ {
		indegree[i] = len(g.Predecessors(i))
		if indegree[i] == 0 {
			heap.Push(&pq, &TaskWrapper{Task: i, Tid: g.Tid(i), Priority: priority[i]})
		}
	}

	for pq.Len() != 0 {
		tWrap := heap.Pop(&pq).(*TaskWrapper)
		s.selectBestProcessor(sol, tWrap.Task)

		for _, succ := range g.Successors(tWrap.Task) {
			indegree[succ]--
			if indegree[succ] == 0 {
				heap.Push(&pq, &TaskWrapper{Task: succ, Tid: g.Tid(succ), Priority: priority[succ]})
			}
		}
	}
	return sol
}

func (s *SchedulerHeur) selectBestProcessor(sol *Solution, task int) {
	g := s.graph
	pid := 0
	best := math.Inf(1)
	var bestStart float64
	for m := 0; m < g.Machines(); m++ {
		w := g.Runtime(task, m)
		start := insertionStart(sol.Timeline(m), sol.ReadyTime(g, task, m), w)
		value := start + w
		if s.oct != nil {
			value += s.oct.At(task, m)
		}
		if value < best {
			pid = m
			best = value
			bestStart = start
		}
	}
	sol.Add(task, g.Tid(task), pid, bestStart, bestStart+g.Runtime(task, pid))
	s.logger.Trace("task placed", "tid", g.Tid(task), "machine", pid, "ast", bestStart)
}
