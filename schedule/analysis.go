package schedule

import (
	"math"

	"dagsched/graph"
)

// SequentialTime is the best total runtime of g executed on one machine.
func SequentialTime(g *graph.Graph) float64 {
	best := math.Inf(1)
	for m := 0; m < g.Machines(); m++ {
		total := 0.0
		for t := 0; t < g.Len(); t++ {
			total += g.Runtime(t, m)
		}
		best = min(best, total)
	}
	return best
}

// CriticalPath is the length of the longest path of g when every task runs
// at its minimum runtime and transfers are free. It is a lower bound of any
// makespan.
func CriticalPath(g *graph.Graph) (float64, error) {
	topo, err := g.TopologicalOrder()
	if err != nil {
		return 0, err
	}
	length := make([]float64, g.Len())
	cp := 0.0
	for i := len(topo) - 1; i >= 0; i-- {
		t := topo[i]
		tail := 0.0
		for _, s := range g.Successors(t) {
			tail = max(tail, length[s])
		}
		_, w := g.MinRuntime(t)
		length[t] = w + tail
		cp = max(cp, length[t])
	}
	return cp, nil
}

func Speedup(g *graph.Graph, sol *Solution) float64 {
	return SequentialTime(g) / sol.Makespan()
}

func Efficiency(g *graph.Graph, sol *Solution) float64 {
	return Speedup(g, sol) / float64(g.Machines())
}

// SLR is the schedule length ratio: makespan over the critical path.
func SLR(g *graph.Graph, sol *Solution) (float64, error) {
	cp, err := CriticalPath(g)
	if err != nil {
		return 0, err
	}
	return sol.Makespan() / cp, nil
}
