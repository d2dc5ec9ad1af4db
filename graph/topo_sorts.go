package graph

// TopoSorts walks every topological order of a bound graph in lexicographic
// order of task indices. The walk keeps its own stack, so deep graphs do not
// grow the goroutine stack.
type TopoSorts struct {
	g      *Graph
	degree []int
	placed []bool
	order  []int
	stack  []topoFrame
}

type topoFrame struct {
	cands  []int
	pos    int
	chosen bool
}

func (g *Graph) TopologicalSorts() *TopoSorts {
	it := &TopoSorts{g: g}
	it.Reset()
	return it
}

// Reset rewinds the walk to the first order.
func (it *TopoSorts) Reset() {
	n := it.g.Len()
	it.degree = make([]int, n)
	for i := 0; i < n; i++ {
		it.degree[i] = len(it.g.pred[i])
	}
	it.placed = make([]bool, n)
	it.order = make([]int, 0, n)
	it.stack = []topoFrame{{cands: it.available()}}
}

// Next returns the next order, or false once every order has been produced.
// The returned slice is owned by the caller.
func (it *TopoSorts) Next() ([]int, bool) {
	n := it.g.Len()
	for len(it.stack) > 0 {
		f := &it.stack[len(it.stack)-1]
		if f.chosen {
			it.unplace(f.cands[f.pos])
			f.chosen = false
			f.pos++
		}
		if f.pos >= len(f.cands) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		it.place(f.cands[f.pos])
		f.chosen = true
		if len(it.order) == n {
			ret := make([]int, n)
			copy(ret, it.order)
			return ret, true
		}
		it.stack = append(it.stack, topoFrame{cands: it.available()})
	}
	return nil, false
}

func (it *TopoSorts) available() []int {
	ret := make([]int, 0)
	for i, d := range it.degree {
		if d == 0 && !it.placed[i] {
			ret = append(ret, i)
		}
	}
	return ret
}

func (it *TopoSorts) place(t int) {
	it.placed[t] = true
	it.order = append(it.order, t)
	for _, s := range it.g.succ[t] {
		it.degree[s]--
	}
}

func (it *TopoSorts) unplace(t int) {
	for _, s := range it.g.succ[t] {
		it.degree[s]++
	}
	it.order = it.order[:len(it.order)-1]
	it.placed[t] = false
}
