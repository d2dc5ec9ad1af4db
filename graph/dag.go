package graph

import (
	"sort"

	"dagsched/types"

	"github.com/ledgerwatch/log/v3"
	"github.com/pkg/errors"
)

type Vertex struct {
	Task      *types.Task
	InDegree  uint // IN-DEGREE
	OutDegree uint // OUT-DEGREE
}

type Edge struct {
	DataSize float64
}

// Graph is a DAG of tasks. Once bound to an environment it also carries the
// dense task index (ascending tid), the runtime table and sorted adjacency
// lists that the schedulers work on. A bound graph is read-only and may be
// shared between goroutines.
type Graph struct {
	Vertices     map[int]*Vertex       `json:"vertices"`
	AdjacencyMap map[int]map[int]*Edge `json:"adjacencyMap"`
	ReverseMap   map[int]map[int]*Edge `json:"reverseMap"`

	env     *types.Environment
	tasks   types.Tasks
	runtime [][]float64
	succ    [][]int
	pred    [][]int
	topo    []int
}

func NewGraph() *Graph {
	return &Graph{
		Vertices:     make(map[int]*Vertex),
		AdjacencyMap: make(map[int]map[int]*Edge),
		ReverseMap:   make(map[int]map[int]*Edge),
	}
}

func (g *Graph) AddVertex(task *types.Task) {
	id := task.Tid
	_, exist := g.Vertices[id]
	if exist {
		return
	}
	g.Vertices[id] = &Vertex{
		Task: task,
	}
	g.unbind()
}

func (g *Graph) AddEdge(source, destination int, dataSize float64) error {
	if _, ok := g.Vertices[source]; !ok {
		return errors.Wrapf(ErrUnknownTask, "edge source %d", source)
	}
	if _, ok := g.Vertices[destination]; !ok {
		return errors.Wrapf(ErrUnknownTask, "edge destination %d", destination)
	}
	if source == destination {
		return errors.Wrapf(ErrCycle, "self-loop on task %d", source)
	}
	if g.HasEdge(source, destination) {
		return nil
	}
	// if do not have edge, init the map
	if _, ok := g.AdjacencyMap[source]; !ok {
		g.AdjacencyMap[source] = make(map[int]*Edge)
	}
	if _, ok := g.ReverseMap[destination]; !ok {
		g.ReverseMap[destination] = make(map[int]*Edge)
	}
	e := &Edge{DataSize: dataSize}
	g.AdjacencyMap[source][destination] = e
	g.ReverseMap[destination][source] = e
	g.Vertices[source].OutDegree++
	g.Vertices[destination].InDegree++
	g.unbind()
	return nil
}

func (g *Graph) HasEdge(source, destination int) bool {
	_, ok := g.AdjacencyMap[source][destination]
	return ok
}

func (g *Graph) unbind() {
	g.env = nil
	g.tasks = nil
	g.runtime = nil
	g.succ = nil
	g.pred = nil
	g.topo = nil
}

// Bind attaches env to the graph and precomputes everything the schedulers
// read. Runtime mismatches and cycles are reported here, before any
// scheduling starts. Mutating the graph afterwards drops the binding.
func (g *Graph) Bind(env *types.Environment) error {
	if env == nil {
		return ErrNoEnvironment
	}
	if len(g.Vertices) == 0 {
		return ErrEmptyGraph
	}
	tasks := make(types.Tasks, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		tasks = append(tasks, v.Task)
	}
	sort.Sort(tasks)

	runtime := make([][]float64, len(tasks))
	for i, t := range tasks {
		rt, err := env.Runtimes(t)
		if err != nil {
			return err
		}
		runtime[i] = rt
	}

	succ := make([][]int, len(tasks))
	pred := make([][]int, len(tasks))
	for i, t := range tasks {
		for dst := range g.AdjacencyMap[t.Tid] {
			j, _ := tasks.Find(dst)
			succ[i] = append(succ[i], j)
		}
		for src := range g.ReverseMap[t.Tid] {
			j, _ := tasks.Find(src)
			pred[i] = append(pred[i], j)
		}
		sort.Ints(succ[i])
		sort.Ints(pred[i])
	}

	g.tasks = tasks
	g.runtime = runtime
	g.succ = succ
	g.pred = pred
	topo, err := g.kahn()
	if err != nil {
		g.unbind()
		return err
	}
	g.topo = topo
	g.env = env
	log.Debug("task graph bound", "tasks", len(tasks), "machines", env.Len())
	return nil
}

// Ready reports whether the graph can be scheduled.
func (g *Graph) Ready() error {
	if g.env == nil {
		return ErrNoEnvironment
	}
	return nil
}

func (g *Graph) Environment() *types.Environment {
	return g.env
}

// Len is the number of tasks of a bound graph.
func (g *Graph) Len() int {
	return len(g.tasks)
}

func (g *Graph) Machines() int {
	return g.env.Len()
}

func (g *Graph) Task(i int) *types.Task {
	return g.tasks[i]
}

func (g *Graph) Tid(i int) int {
	return g.tasks[i].Tid
}

// Index returns the dense index of tid in a bound graph.
func (g *Graph) Index(tid int) (int, bool) {
	i, ok := g.tasks.Find(tid)
	if !ok {
		return -1, false
	}
	return i, true
}

func (g *Graph) Successors(i int) []int {
	return g.succ[i]
}

func (g *Graph) Predecessors(i int) []int {
	return g.pred[i]
}

func (g *Graph) Runtime(i, m int) float64 {
	return g.runtime[i][m]
}

func (g *Graph) AvgRuntime(i int) float64 {
	sum := 0.0
	for _, rt := range g.runtime[i] {
		sum += rt
	}
	return sum / float64(len(g.runtime[i]))
}

// MinRuntime returns the fastest machine for task i, lowest index on ties.
func (g *Graph) MinRuntime(i int) (int, float64) {
	best := 0
	for m := 1; m < len(g.runtime[i]); m++ {
		if g.runtime[i][m] < g.runtime[i][best] {
			best = m
		}
	}
	return best, g.runtime[i][best]
}

// CommCost is the transfer delay on edge i->j when both ends run on
// different machines.
func (g *Graph) CommCost(i, j int) float64 {
	e := g.AdjacencyMap[g.tasks[i].Tid][g.tasks[j].Tid]
	if e == nil {
		return 0
	}
	return g.env.TransferTime(e.DataSize)
}

func (g *Graph) Heads() []int {
	ret := make([]int, 0)
	for i := range g.tasks {
		if len(g.pred[i]) == 0 {
			ret = append(ret, i)
		}
	}
	return ret
}

func (g *Graph) Exits() []int {
	ret := make([]int, 0)
	for i := range g.tasks {
		if len(g.succ[i]) == 0 {
			ret = append(ret, i)
		}
	}
	return ret
}

// TopologicalOrder returns task indices generation by generation, ascending
// within a generation.
func (g *Graph) TopologicalOrder() ([]int, error) {
	if err := g.Ready(); err != nil {
		return nil, err
	}
	ret := make([]int, len(g.topo))
	copy(ret, g.topo)
	return ret, nil
}

func (g *Graph) kahn() ([]int, error) {
	degree := make([]int, len(g.tasks))
	degreeZero := make([]int, 0)
	for i := range g.tasks {
		degree[i] = len(g.pred[i])
		if degree[i] == 0 {
			degreeZero = append(degreeZero, i)
		}
	}

	topo := make([]int, 0, len(g.tasks))
	for len(degreeZero) > 0 {
		topo = append(topo, degreeZero...)
		newDegreeZero := make([]int, 0)
		for _, vid := range degreeZero {
			for _, succ := range g.succ[vid] {
				degree[succ]--
				if degree[succ] == 0 {
					newDegreeZero = append(newDegreeZero, succ)
				}
			}
		}
		sort.Ints(newDegreeZero)
		degreeZero = newDegreeZero
	}
	if len(topo) != len(g.tasks) {
		return nil, errors.Wrapf(ErrCycle, "%d of %d tasks are on or behind a cycle", len(g.tasks)-len(topo), len(g.tasks))
	}
	return topo, nil
}

// IsTopological reports whether order is a permutation of the task indices
// that respects every edge.
func (g *Graph) IsTopological(order []int) bool {
	if len(order) != len(g.tasks) {
		return false
	}
	pos := make([]int, len(g.tasks))
	for i := range pos {
		pos[i] = -1
	}
	for p, t := range order {
		if t < 0 || t >= len(g.tasks) || pos[t] >= 0 {
			return false
		}
		pos[t] = p
	}
	for u := range g.tasks {
		for _, v := range g.succ[u] {
			if pos[u] > pos[v] {
				return false
			}
		}
	}
	return true
}
