package genetic

import (
	"context"
	"sort"

	"dagsched/graph"
	"dagsched/schedule"

	"github.com/ledgerwatch/log/v3"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

type Config struct {
	Population       int
	Generations      int
	CrossoverProb    float64
	MutationProb     float64
	TournamentProb   float64
	SkipLimit        int
	MutationAttempts int
	Objectives       []string
	Weights          []float64
}

func DefaultConfig() Config {
	return Config{
		Population:       100,
		Generations:      50,
		CrossoverProb:    0.9,
		MutationProb:     0.1,
		TournamentProb:   0.9,
		SkipLimit:        2,
		MutationAttempts: MutationAttempts,
		Objectives:       []string{ObjectiveTime, ObjectiveCost},
		Weights:          []float64{0.5, 0.5},
	}
}

func (c Config) weights() (map[string]float64, error) {
	if len(c.Objectives) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "no objectives")
	}
	if len(c.Weights) != len(c.Objectives) {
		return nil, errors.Wrapf(ErrInvalidConfig, "%d weights for %d objectives", len(c.Weights), len(c.Objectives))
	}
	w := make(map[string]float64, len(c.Objectives))
	for i, o := range c.Objectives {
		w[o] = c.Weights[i]
	}
	return w, nil
}

type Result struct {
	Population  []*Individual
	Front       []*Individual
	Generations int
}

// Run evolves a population with NSGA-II: tournament parents, crossover and
// mutation children, then elitist survival by Pareto front and crowding
// distance over parents and children together.
func Run(ctx context.Context, g *graph.Graph, cfg Config, rng *rand.Rand) (*Result, error) {
	weights, err := cfg.weights()
	if err != nil {
		return nil, err
	}
	logger := log.New("population", cfg.Population)
	sols, err := GeneratePopulation(g, cfg.Population, rng, cfg.SkipLimit)
	if err != nil {
		return nil, err
	}
	pop, err := Evaluate(g, sols, cfg.Objectives)
	if err != nil {
		return nil, err
	}
	survive(pop, len(pop), cfg.Objectives)

	gen := 0
	for ; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		children := make([]*schedule.Solution, 0, cfg.Population+1)
		for len(children) < cfg.Population {
			p1 := BinaryTournament(pop, cfg.TournamentProb, weights, rng).Solution
			p2 := BinaryTournament(pop, cfg.TournamentProb, weights, rng).Solution
			c1, c2 := p1, p2
			if rng.Float64() < cfg.CrossoverProb {
				c1, c2 = Crossover(p1, p2, g, rng)
			}
			children = append(children, mutateMaybe(c1, g, cfg, rng), mutateMaybe(c2, g, cfg, rng))
		}
		offspring, err := Evaluate(g, children[:cfg.Population], cfg.Objectives)
		if err != nil {
			return nil, err
		}
		pop = survive(append(pop, offspring...), cfg.Population, cfg.Objectives)
		logger.Debug("generation done", "gen", gen, "front", countFront(pop))
	}

	fronts := NonDominatedSort(pop, cfg.Objectives)
	return &Result{
		Population:  pop,
		Front:       fronts[0],
		Generations: gen,
	}, nil
}

func mutateMaybe(sol *schedule.Solution, g *graph.Graph, cfg Config, rng *rand.Rand) *schedule.Solution {
	if rng.Float64() >= cfg.MutationProb {
		return sol
	}
	if child, _, _, ok := mutate(sol, g, rng, cfg.MutationAttempts); ok {
		return child
	}
	return sol
}

// survive keeps the size best of pop, front by front, cutting the last
// admitted front by crowding distance.
func survive(pop []*Individual, size int, objectives []string) []*Individual {
	next := make([]*Individual, 0, size)
	for _, front := range NonDominatedSort(pop, objectives) {
		CrowdingDistance(front, objectives)
		if len(next)+len(front) <= size {
			next = append(next, front...)
			continue
		}
		sort.SliceStable(front, func(i, j int) bool {
			return CrowdedLess(front[i], front[j])
		})
		next = append(next, front[:size-len(next)]...)
		break
	}
	return next
}

func countFront(pop []*Individual) int {
	n := 0
	for _, ind := range pop {
		if ind.Front == 0 {
			n++
		}
	}
	return n
}
