package schedule

import (
	"fmt"
	"sort"
	"strings"

	"dagsched/types"
)

// Allocation places one task on one machine over [AST, AFT).
type Allocation struct {
	Task    int // task index in the bound graph
	Tid     int
	Machine int
	AST     float64
	AFT     float64
}

func (a *Allocation) Runtime() float64 {
	return a.AFT - a.AST
}

// Solution is a schedule of a bound graph. It never touches the graph: all
// placement data lives in its own side table.
type Solution struct {
	env       *types.Environment
	timelines [][]*Allocation
	order     []*Allocation
	byTask    []*Allocation
	makespan  float64
}

func NewSolution(env *types.Environment, tasks int) *Solution {
	return &Solution{
		env:       env,
		timelines: make([][]*Allocation, env.Len()),
		order:     make([]*Allocation, 0, tasks),
		byTask:    make([]*Allocation, tasks),
	}
}

func (s *Solution) Environment() *types.Environment {
	return s.env
}

// Add records an allocation. Timelines stay sorted by (start, finish) so a
// zero length allocation sits ahead of the one it shares a start with. The
// execution order is sorted by start time, ties kept in insertion order.
func (s *Solution) Add(task, tid, machine int, ast, aft float64) *Allocation {
	if s.byTask[task] != nil {
		panic(fmt.Sprintf("Add: task %d already allocated", tid))
	}
	a := &Allocation{
		Task:    task,
		Tid:     tid,
		Machine: machine,
		AST:     ast,
		AFT:     aft,
	}
	s.byTask[task] = a

	tl := s.timelines[machine]
	i := sort.Search(len(tl), func(i int) bool {
		return tl[i].AST > ast || (tl[i].AST == ast && tl[i].AFT > aft)
	})
	tl = append(tl, nil)
	copy(tl[i+1:], tl[i:])
	tl[i] = a
	s.timelines[machine] = tl

	j := sort.Search(len(s.order), func(i int) bool { return s.order[i].AST > ast })
	s.order = append(s.order, nil)
	copy(s.order[j+1:], s.order[j:])
	s.order[j] = a

	s.makespan = max(s.makespan, aft)
	return a
}

func (s *Solution) Machines() int {
	return len(s.timelines)
}

// Len is the number of allocated tasks.
func (s *Solution) Len() int {
	return len(s.order)
}

func (s *Solution) Timeline(machine int) []*Allocation {
	return s.timelines[machine]
}

func (s *Solution) ExecutionOrder() []*Allocation {
	return s.order
}

// Order returns the task indices in execution order.
func (s *Solution) Order() []int {
	ret := make([]int, len(s.order))
	for i, a := range s.order {
		ret[i] = a.Task
	}
	return ret
}

func (s *Solution) Allocation(task int) (*Allocation, bool) {
	a := s.byTask[task]
	return a, a != nil
}

// MachineOf returns the machine task runs on, or -1 when unallocated.
func (s *Solution) MachineOf(task int) int {
	if a := s.byTask[task]; a != nil {
		return a.Machine
	}
	return -1
}

// Assignment returns the machine of every task, indexed by task.
func (s *Solution) Assignment() []int {
	ret := make([]int, len(s.byTask))
	for i := range ret {
		ret[i] = s.MachineOf(i)
	}
	return ret
}

// FreeAt returns when machine finishes its last allocation.
func (s *Solution) FreeAt(machine int) float64 {
	free := 0.0
	for _, a := range s.timelines[machine] {
		free = max(free, a.AFT)
	}
	return free
}

func (s *Solution) Makespan() float64 {
	return s.makespan
}

// Cost sums machine cost over the occupied time of every allocation.
func (s *Solution) Cost() float64 {
	cost := 0.0
	for m, tl := range s.timelines {
		price := s.env.Machine(m).Cost
		for _, a := range tl {
			cost += price * a.Runtime()
		}
	}
	return cost
}

func (s *Solution) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "makespan %g\n", s.makespan)
	for m, tl := range s.timelines {
		fmt.Fprintf(&sb, "%s:", s.env.Machine(m).ID)
		for _, a := range tl {
			fmt.Fprintf(&sb, " %d[%g,%g)", a.Tid, a.AST, a.AFT)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
