package genetic

import (
	"math"
	"sort"
)

// Dominates reports whether p is no worse than q on every objective and
// strictly better on at least one.
func Dominates(p, q *Individual, objectives []string) bool {
	strict := false
	for _, o := range objectives {
		if p.Fitness[o] > q.Fitness[o] {
			return false
		}
		if p.Fitness[o] < q.Fitness[o] {
			strict = true
		}
	}
	return strict
}

// NonDominatedSort splits pop into Pareto fronts, best front first, and
// records the front index on every individual.
func NonDominatedSort(pop []*Individual, objectives []string) [][]*Individual {
	dominatedBy := make([]int, len(pop))
	dominates := make([][]int, len(pop))
	current := make([]int, 0)
	for i, p := range pop {
		for j, q := range pop {
			if i == j {
				continue
			}
			if Dominates(p, q, objectives) {
				dominates[i] = append(dominates[i], j)
			} else if Dominates(q, p, objectives) {
				dominatedBy[i]++
			}
		}
		if dominatedBy[i] == 0 {
			current = append(current, i)
		}
	}

	fronts := make([][]*Individual, 0)
	for len(current) > 0 {
		front := make([]*Individual, len(current))
		next := make([]int, 0)
		for k, i := range current {
			pop[i].Front = len(fronts)
			front[k] = pop[i]
			for _, j := range dominates[i] {
				dominatedBy[j]--
				if dominatedBy[j] == 0 {
					next = append(next, j)
				}
			}
		}
		sort.Ints(next)
		fronts = append(fronts, front)
		current = next
	}
	return fronts
}

// CrowdingDistance assigns every member of front the sum over objectives of
// the normalised gap between its two neighbours. Boundary members get +Inf.
func CrowdingDistance(front []*Individual, objectives []string) {
	for _, ind := range front {
		ind.Crowding = 0
	}
	if len(front) <= 2 {
		for _, ind := range front {
			ind.Crowding = math.Inf(1)
		}
		return
	}
	sorted := make([]*Individual, len(front))
	copy(sorted, front)
	for _, o := range objectives {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Fitness[o] < sorted[j].Fitness[o]
		})
		lo, hi := sorted[0].Fitness[o], sorted[len(sorted)-1].Fitness[o]
		sorted[0].Crowding = math.Inf(1)
		sorted[len(sorted)-1].Crowding = math.Inf(1)
		if hi <= lo {
			continue
		}
		for k := 1; k < len(sorted)-1; k++ {
			sorted[k].Crowding += (sorted[k+1].Fitness[o] - sorted[k-1].Fitness[o]) / (hi - lo)
		}
	}
}

// CrowdedLess orders by front first, then by larger crowding distance.
func CrowdedLess(a, b *Individual) bool {
	if a.Front != b.Front {
		return a.Front < b.Front
	}
	return a.Crowding > b.Crowding
}
