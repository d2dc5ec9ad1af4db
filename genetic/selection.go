package genetic

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// BinaryTournament draws two distinct individuals and compares them on the
// weighted sum of their objectives, each normalised to [0,1] over pop. The
// better one wins with probability prob, otherwise either of the two is
// returned at random.
func BinaryTournament(pop []*Individual, prob float64, weights map[string]float64, rng *rand.Rand) *Individual {
	if len(pop) == 0 {
		return nil
	}
	if len(pop) == 1 {
		return pop[0]
	}
	i := rng.Intn(len(pop))
	j := rng.Intn(len(pop) - 1)
	if j >= i {
		j++
	}
	t1, t2 := pop[i], pop[j]

	better := t1
	score := weightedScores(pop, weights)
	if score[j] < score[i] {
		better = t2
	}
	if rng.Float64() < prob {
		return better
	}
	if rng.Intn(2) == 0 {
		return t1
	}
	return t2
}

// weightedScores returns the weighted sum of min-max normalised objectives
// of every individual. An objective on which pop does not vary adds nothing.
func weightedScores(pop []*Individual, weights map[string]float64) []float64 {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	score := make([]float64, len(pop))
	for _, name := range names {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, ind := range pop {
			lo = min(lo, ind.Fitness[name])
			hi = max(hi, ind.Fitness[name])
		}
		if hi <= lo {
			continue
		}
		for k, ind := range pop {
			score[k] += weights[name] * (ind.Fitness[name] - lo) / (hi - lo)
		}
	}
	return score
}
