package genetic

import (
	"dagsched/graph"
	"dagsched/schedule"

	"golang.org/x/exp/rand"
)

// Crossover exchanges machines over a window of parent1's execution order.
// The first child keeps the order and machines of parent1 except that the
// tasks inside the window take their machine from parent2; the second child
// is the mirror image over parent2's order. Both are decoded again, so their
// orders stay topological.
func Crossover(parent1, parent2 *schedule.Solution, g *graph.Graph, rng *rand.Rand) (*schedule.Solution, *schedule.Solution) {
	order1, order2 := parent1.Order(), parent2.Order()
	m1, m2 := parent1.Assignment(), parent2.Assignment()
	if len(order1) < 2 {
		return decode(g, order1, m1), decode(g, order2, m2)
	}

	p1, p2 := window(len(order1), rng)
	c1 := append([]int(nil), m1...)
	c2 := append([]int(nil), m2...)
	for _, t := range order1[p1:p2] {
		c1[t] = m2[t]
		c2[t] = m1[t]
	}
	return decode(g, order1, c1), decode(g, order2, c2)
}

// window picks 1 <= p1 < p2 <= n.
func window(n int, rng *rand.Rand) (int, int) {
	p1 := 1 + rng.Intn(n-1)
	p2 := 1 + rng.Intn(n-1)
	if p2 >= p1 {
		p2++
	}
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return p1, p2
}
