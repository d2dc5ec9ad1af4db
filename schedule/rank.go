package schedule

import (
	"math"

	"dagsched/graph"

	"gonum.org/v1/gonum/mat"
)

// UpwardRank computes the HEFT priority of every task, indexed by task.
// Tasks are visited in reverse topological order so every successor is
// ranked before its predecessors.
func UpwardRank(g *graph.Graph) ([]float64, error) {
	topo, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	rank := make([]float64, g.Len())
	for i := len(topo) - 1; i >= 0; i-- {
		t := topo[i]
		maxSucc := 0.0
		for _, s := range g.Successors(t) {
			maxSucc = max(maxSucc, g.CommCost(t, s)+rank[s])
		}
		rank[t] = g.AvgRuntime(t) + maxSucc
	}
	return rank, nil
}

// OptimisticCostTable builds the tasks x machines OCT matrix. OCT(t,m) is the
// longest optimistic path from t to an exit when t runs on m.
func OptimisticCostTable(g *graph.Graph) (*mat.Dense, error) {
	if _, err := g.TopologicalOrder(); err != nil {
		return nil, err
	}
	n, p := g.Len(), g.Machines()
	oct := mat.NewDense(n, p, nil)
	done := make([]bool, n*p)

	// every (task, machine) pair goes on the stack; a pair is settled only once
	// all pairs of its successors are
	stack := make([]int, 0, n*p)
	for k := n*p - 1; k >= 0; k-- {
		stack = append(stack, k)
	}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		if done[k] {
			stack = stack[:len(stack)-1]
			continue
		}
		t, m := k/p, k%p
		pending := false
		for _, s := range g.Successors(t) {
			for m2 := 0; m2 < p; m2++ {
				if !done[s*p+m2] {
					stack = append(stack, s*p+m2)
					pending = true
				}
			}
		}
		if pending {
			continue
		}
		stack = stack[:len(stack)-1]

		value := 0.0
		for _, s := range g.Successors(t) {
			best := math.Inf(1)
			for m2 := 0; m2 < p; m2++ {
				v := oct.At(s, m2) + g.Runtime(s, m2)
				if m2 != m {
					v += g.CommCost(t, s)
				}
				best = min(best, v)
			}
			value = max(value, best)
		}
		oct.Set(t, m, value)
		done[k] = true
	}
	return oct, nil
}

// OCTRank averages each row of the optimistic cost table.
func OCTRank(oct *mat.Dense) []float64 {
	n, p := oct.Dims()
	rank := make([]float64, n)
	for i := 0; i < n; i++ {
		rank[i] = mat.Sum(oct.RowView(i)) / float64(p)
	}
	return rank
}
