package genetic

import (
	"dagsched/graph"
	"dagsched/schedule"

	"golang.org/x/exp/rand"
)

// MutationAttempts bounds the search for a swappable pair.
const MutationAttempts = 100

// Mutate swaps two independent tasks that share a machine. Ancestors of the
// later task that sat between the two move in front of it, descendants of the
// earlier task move behind it, and the result is decoded again. It returns
// false when no independent pair turned up within MutationAttempts draws.
func Mutate(sol *schedule.Solution, g *graph.Graph, rng *rand.Rand) (*schedule.Solution, bool) {
	child, _, _, ok := mutate(sol, g, rng, MutationAttempts)
	return child, ok
}

func mutate(sol *schedule.Solution, g *graph.Graph, rng *rand.Rand, attempts int) (*schedule.Solution, int, int, bool) {
	a, b, ok := pickSwap(sol, g, rng, attempts)
	if !ok {
		return nil, -1, -1, false
	}
	order := sol.Order()
	pos := make([]int, len(order))
	for i, t := range order {
		pos[t] = i
	}
	if pos[a] > pos[b] {
		a, b = b, a
	}
	ia, ib := pos[a], pos[b]

	anc := g.Ancestors(b)
	desc := g.Descendants(a)
	before := make([]int, 0)
	middle := make([]int, 0)
	after := make([]int, 0)
	for _, t := range order[ia+1 : ib] {
		switch {
		case anc[t]:
			before = append(before, t)
		case desc[t]:
			after = append(after, t)
		default:
			middle = append(middle, t)
		}
	}

	next := make([]int, 0, len(order))
	next = append(next, order[:ia]...)
	next = append(next, before...)
	next = append(next, b)
	next = append(next, middle...)
	next = append(next, a)
	next = append(next, after...)
	next = append(next, order[ib+1:]...)
	return decode(g, next, sol.Assignment()), a, b, true
}

func pickSwap(sol *schedule.Solution, g *graph.Graph, rng *rand.Rand, attempts int) (int, int, bool) {
	for i := 0; i < attempts; i++ {
		tl := sol.Timeline(rng.Intn(sol.Machines()))
		if len(tl) < 2 {
			continue
		}
		i1, i2 := rng.Intn(len(tl)), rng.Intn(len(tl))
		if i1 == i2 {
			continue
		}
		if i1 > i2 {
			i1, i2 = i2, i1
		}
		a, b := tl[i1].Task, tl[i2].Task
		if g.Reachable(a, b) || g.Reachable(b, a) {
			continue
		}
		return a, b, true
	}
	return -1, -1, false
}
