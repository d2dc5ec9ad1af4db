package schedule

import (
	"dagsched/graph"

	"github.com/pkg/errors"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

// Validate checks that sol places every task of g exactly once, that no two
// allocations of a machine overlap, that every edge is honoured including
// its transfer delay and that the makespan matches the allocations.
func Validate(g *graph.Graph, sol *Solution) error {
	if sol.Len() != g.Len() {
		return errors.Wrapf(ErrInvalidSchedule, "%d of %d tasks allocated", sol.Len(), g.Len())
	}
	for m := 0; m < sol.Machines(); m++ {
		tl := sol.Timeline(m)
		if len(tl) == 0 {
			continue
		}
		last := tl[0]
		for _, a := range tl[1:] {
			if last.AFT > a.AST {
				return errors.Wrapf(ErrInvalidSchedule, "tasks %d and %d overlap on machine %d",
					last.Tid, a.Tid, m)
			}
			if a.AFT > last.AFT {
				last = a
			}
		}
	}
	makespan := 0.0
	for _, a := range sol.ExecutionOrder() {
		makespan = max(makespan, a.AFT)
		for _, s := range g.Successors(a.Task) {
			b, _ := sol.Allocation(s)
			ready := a.AFT
			if a.Machine != b.Machine {
				ready += g.CommCost(a.Task, s)
			}
			if ready > b.AST {
				return errors.Wrapf(ErrInvalidSchedule, "task %d starts at %g before input from %d is ready at %g",
					b.Tid, b.AST, a.Tid, ready)
			}
		}
	}
	if makespan != sol.Makespan() {
		return errors.Wrapf(ErrInvalidSchedule, "makespan %g, allocations end at %g", sol.Makespan(), makespan)
	}
	if !g.IsTopological(sol.Order()) {
		return errors.Wrap(ErrInvalidSchedule, "execution order breaks precedence")
	}
	return nil
}
