package genetic

import (
	"dagsched/graph"
	"dagsched/schedule"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// RandBounds is the upper bound of the raw draws reduced modulo a range.
const RandBounds = 1000

// GeneratePopulation draws size schedules. Orders come from the walk over
// all topological orders, skipping a random number (below skipLimit) of
// orders between draws and starting the walk over once it runs out. Every
// task then gets a uniformly random machine.
func GeneratePopulation(g *graph.Graph, size int, rng *rand.Rand, skipLimit int) ([]*schedule.Solution, error) {
	if err := g.Ready(); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "population size %d", size)
	}
	if skipLimit < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "skip limit %d", skipLimit)
	}
	it := g.TopologicalSorts()
	pop := make([]*schedule.Solution, 0, size)
	for len(pop) < size {
		order, ok := it.Next()
		if !ok {
			it.Reset()
			order, _ = it.Next()
		}
		pop = append(pop, decode(g, order, randomAssignment(g, order, rng)))

		skip := rng.Intn(RandBounds+1) % skipLimit
		for i := 0; i < skip; i++ {
			if _, ok := it.Next(); !ok {
				it.Reset()
			}
		}
	}
	return pop, nil
}

func randomAssignment(g *graph.Graph, order []int, rng *rand.Rand) []int {
	machines := make([]int, g.Len())
	for _, t := range order {
		machines[t] = rng.Intn(g.Machines())
	}
	return machines
}
