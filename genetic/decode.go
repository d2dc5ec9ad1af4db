package genetic

import (
	"dagsched/graph"
	"dagsched/schedule"

	"github.com/pkg/errors"
)

// Decode turns an execution order and a task to machine assignment into a
// schedule. Tasks are placed one after the other in order, each as soon as
// its inputs are ready and its machine has finished the tasks placed on it
// before, so every machine runs its tasks in the order given.
func Decode(g *graph.Graph, order []int, machines []int) (*schedule.Solution, error) {
	if err := g.Ready(); err != nil {
		return nil, err
	}
	if !g.IsTopological(order) {
		return nil, ErrInvalidOrder
	}
	if len(machines) != g.Len() {
		return nil, errors.Wrapf(ErrInvalidOrder, "%d machine slots for %d tasks", len(machines), g.Len())
	}
	for t, m := range machines {
		if m < 0 || m >= g.Machines() {
			return nil, errors.Wrapf(ErrInvalidOrder, "task %d assigned to machine %d", g.Tid(t), m)
		}
	}
	return decode(g, order, machines), nil
}

func decode(g *graph.Graph, order []int, machines []int) *schedule.Solution {
	sol := schedule.NewSolution(g.Environment(), g.Len())
	for _, t := range order {
		m := machines[t]
		start := max(sol.ReadyTime(g, t, m), sol.FreeAt(m))
		sol.Add(t, g.Tid(t), m, start, start+g.Runtime(t, m))
	}
	return sol
}
