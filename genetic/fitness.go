package genetic

import (
	"dagsched/graph"
	"dagsched/schedule"

	"github.com/pkg/errors"
)

const (
	ObjectiveTime = "time"
	ObjectiveCost = "cost"
)

// Fitness evaluates sol on every named objective. All objectives are
// minimised.
func Fitness(sol *schedule.Solution, g *graph.Graph, objectives []string) (map[string]float64, error) {
	fit := make(map[string]float64, len(objectives))
	for _, o := range objectives {
		switch o {
		case ObjectiveTime:
			fit[o] = sol.Makespan()
		case ObjectiveCost:
			fit[o] = runtimeCost(sol, g)
		default:
			return nil, errors.Wrapf(ErrUnknownObjective, "%q", o)
		}
	}
	return fit, nil
}

func runtimeCost(sol *schedule.Solution, g *graph.Graph) float64 {
	env := g.Environment()
	cost := 0.0
	for m := 0; m < sol.Machines(); m++ {
		price := env.Machine(m).Cost
		for _, a := range sol.Timeline(m) {
			cost += g.Runtime(a.Task, m) * price
		}
	}
	return cost
}

// Individual is an evaluated member of a population.
type Individual struct {
	Solution *schedule.Solution
	Fitness  map[string]float64
	Front    int
	Crowding float64
}

func NewIndividual(g *graph.Graph, sol *schedule.Solution, objectives []string) (*Individual, error) {
	fit, err := Fitness(sol, g, objectives)
	if err != nil {
		return nil, err
	}
	return &Individual{
		Solution: sol,
		Fitness:  fit,
	}, nil
}

// Evaluate wraps every solution into an Individual.
func Evaluate(g *graph.Graph, sols []*schedule.Solution, objectives []string) ([]*Individual, error) {
	pop := make([]*Individual, len(sols))
	for i, sol := range sols {
		ind, err := NewIndividual(g, sol, objectives)
		if err != nil {
			return nil, err
		}
		pop[i] = ind
	}
	return pop, nil
}
