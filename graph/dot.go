package graph

import (
	"sort"
	"strconv"

	"github.com/emicklei/dot"
)

// Dot renders the task graph in Graphviz format, edges labelled with their
// data size.
func (g *Graph) Dot() string {
	d := dot.NewGraph(dot.Directed)
	tids := make([]int, 0, len(g.Vertices))
	for tid := range g.Vertices {
		tids = append(tids, tid)
	}
	sort.Ints(tids)

	nodes := make(map[int]dot.Node, len(tids))
	for _, tid := range tids {
		nodes[tid] = d.Node(strconv.Itoa(tid))
	}
	for _, src := range tids {
		dsts := make([]int, 0, len(g.AdjacencyMap[src]))
		for dst := range g.AdjacencyMap[src] {
			dsts = append(dsts, dst)
		}
		sort.Ints(dsts)
		for _, dst := range dsts {
			size := g.AdjacencyMap[src][dst].DataSize
			d.Edge(nodes[src], nodes[dst], strconv.FormatFloat(size, 'g', -1, 64))
		}
	}
	return d.String()
}
