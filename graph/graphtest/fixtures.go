// Package graphtest builds the task graphs used across the scheduler tests.
package graphtest

import (
	"fmt"

	"dagsched/graph"
	"dagsched/types"

	"golang.org/x/exp/rand"
)

type edge struct {
	src, dst int
	size     float64
}

// Topcuoglu is the ten task, three machine example of Topcuoglu et al. 2002.
func Topcuoglu() (*graph.Graph, error) {
	comp := [][]float64{
		{14, 16, 9}, {13, 19, 18}, {11, 13, 19}, {13, 8, 17}, {12, 13, 10},
		{13, 16, 9}, {7, 15, 11}, {5, 11, 14}, {18, 12, 20}, {21, 7, 16},
	}
	edges := []edge{
		{0, 1, 18}, {0, 2, 12}, {0, 3, 9}, {0, 4, 11}, {0, 5, 14},
		{1, 7, 19}, {1, 8, 16}, {2, 6, 23}, {3, 7, 27}, {3, 8, 23},
		{4, 8, 13}, {5, 7, 15}, {6, 9, 17}, {7, 9, 11}, {8, 9, 13},
	}
	return build(comp, edges, []float64{1, 1, 1})
}

// PEFT is the ten task, three machine example of Arabnejad and Barbosa 2014.
func PEFT() (*graph.Graph, error) {
	comp := [][]float64{
		{22, 21, 36}, {22, 18, 18}, {32, 27, 43}, {7, 10, 4}, {29, 27, 35},
		{26, 17, 24}, {14, 25, 30}, {29, 23, 36}, {15, 21, 8}, {13, 16, 33},
	}
	edges := []edge{
		{0, 1, 17}, {0, 2, 31}, {0, 3, 29}, {0, 4, 13}, {0, 5, 7},
		{1, 7, 3}, {1, 8, 30}, {2, 6, 16}, {3, 7, 11}, {3, 8, 7},
		{4, 8, 57}, {5, 7, 5}, {6, 9, 9}, {7, 9, 42}, {8, 9, 7},
	}
	return build(comp, edges, []float64{1, 1, 1})
}

// Environment returns machines without transfer rates, so transfer delay
// equals the data size on the edge.
func Environment(costs []float64) (*types.Environment, error) {
	machines := make([]*types.Machine, len(costs))
	for i, c := range costs {
		machines[i] = types.NewMachine(fmt.Sprintf("cat%d_m%d", i%2, i), 1, 0, c)
	}
	return types.NewEnvironment(machines...)
}

// Random builds a layered random DAG of n tasks on m machines. Every task
// but those of the first layer gets at least one predecessor.
func Random(rng *rand.Rand, n, m int) (*graph.Graph, error) {
	comp := make([][]float64, n)
	for i := range comp {
		comp[i] = make([]float64, m)
		for j := range comp[i] {
			comp[i][j] = float64(1 + rng.Intn(20))
		}
	}
	layer := make([]int, n)
	for i := 1; i < n; i++ {
		layer[i] = layer[i-1]
		if rng.Intn(3) == 0 {
			layer[i]++
		}
	}
	edges := make([]edge, 0)
	for j := 0; j < n; j++ {
		if layer[j] == 0 {
			continue
		}
		linked := false
		for i := 0; i < j; i++ {
			if layer[i] < layer[j] && rng.Intn(4) == 0 {
				edges = append(edges, edge{i, j, float64(rng.Intn(15))})
				linked = true
			}
		}
		if !linked {
			// tie it to some task of an earlier layer
			for i := j - 1; i >= 0; i-- {
				if layer[i] < layer[j] {
					edges = append(edges, edge{i, j, float64(rng.Intn(15))})
					break
				}
			}
		}
	}
	costs := make([]float64, m)
	for i := range costs {
		costs[i] = float64(1 + rng.Intn(5))
	}
	return build(comp, edges, costs)
}

func build(comp [][]float64, edges []edge, costs []float64) (*graph.Graph, error) {
	g := graph.NewGraph()
	for tid, rt := range comp {
		g.AddVertex(types.NewTask(tid, rt...))
	}
	for _, e := range edges {
		if err := g.AddEdge(e.src, e.dst, e.size); err != nil {
			return nil, err
		}
	}
	env, err := Environment(costs)
	if err != nil {
		return nil, err
	}
	if err := g.Bind(env); err != nil {
		return nil, err
	}
	return g, nil
}
