package schedule

import (
	"math"

	"dagsched/graph"
)

// ReadyTime is the earliest moment task may start on machine once every
// allocated predecessor has finished and shipped its data.
func (s *Solution) ReadyTime(g *graph.Graph, task, machine int) float64 {
	est := 0.0
	for _, p := range g.Predecessors(task) {
		a := s.byTask[p]
		if a == nil {
			continue
		}
		ready := a.AFT
		if a.Machine != machine {
			ready += g.CommCost(p, task)
		}
		est = max(est, ready)
	}
	return est
}

type slot struct {
	start, end float64
}

// idleSlots lists the gaps of a timeline: a leading gap when the first
// allocation does not start at 0, the gaps between neighbours and an
// unbounded tail. A gap opens at the latest finish seen so far, so zero length
// allocations never reopen time that is still busy.
func idleSlots(tl []*Allocation) []slot {
	if len(tl) == 0 {
		return []slot{{0, math.Inf(1)}}
	}
	slots := make([]slot, 0, len(tl)+1)
	if tl[0].AST > 0 {
		slots = append(slots, slot{0, tl[0].AST})
	}
	busy := tl[0].AFT
	for i := 1; i < len(tl); i++ {
		if tl[i].AST >= busy {
			slots = append(slots, slot{busy, tl[i].AST})
		}
		busy = max(busy, tl[i].AFT)
	}
	return append(slots, slot{busy, math.Inf(1)})
}

// insertionStart returns the earliest start not before est at which a task
// of length w fits into an idle slot of tl.
func insertionStart(tl []*Allocation, est, w float64) float64 {
	for _, sl := range idleSlots(tl) {
		if est < sl.start && sl.start+w <= sl.end {
			return sl.start
		}
		if est >= sl.start && est+w <= sl.end {
			return est
		}
	}
	return est
}

// appendStart returns the earliest start not before est that comes after
// every allocation of machine.
func (s *Solution) appendStart(machine int, est float64) float64 {
	return max(est, s.FreeAt(machine))
}
