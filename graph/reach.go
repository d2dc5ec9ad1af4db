package graph

// Reachable reports whether a path from task i to task j exists.
func (g *Graph) Reachable(i, j int) bool {
	if i == j {
		return true
	}
	return g.Descendants(i)[j]
}

// Descendants marks every task reachable from i, i excluded.
func (g *Graph) Descendants(i int) []bool {
	return g.walk(i, g.succ)
}

// Ancestors marks every task from which i is reachable, i excluded.
func (g *Graph) Ancestors(i int) []bool {
	return g.walk(i, g.pred)
}

func (g *Graph) walk(from int, adj [][]int) []bool {
	seen := make([]bool, len(g.tasks))
	stack := append([]int(nil), adj[from]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, adj[cur]...)
	}
	return seen
}
