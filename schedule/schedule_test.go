package schedule

import (
	"context"
	"math"
	"testing"

	"dagsched/graph"
	"dagsched/graph/graphtest"
	"dagsched/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"golang.org/x/exp/rand"
)

// alloc is (ast, aft, tid) per machine
type alloc [3]float64

func timelines(sol *Solution) [][]alloc {
	ret := make([][]alloc, sol.Machines())
	for m := range ret {
		ret[m] = make([]alloc, 0)
		for _, a := range sol.Timeline(m) {
			ret[m] = append(ret[m], alloc{a.AST, a.AFT, float64(a.Tid)})
		}
	}
	return ret
}

func topcuoglu(t *testing.T) *graph.Graph {
	g, err := graphtest.Topcuoglu()
	require.NoError(t, err)
	return g
}

func peft(t *testing.T) *graph.Graph {
	g, err := graphtest.PEFT()
	require.NoError(t, err)
	return g
}

func TestUpwardRank(t *testing.T) {
	t.Parallel()
	rank, err := UpwardRank(topcuoglu(t))
	require.NoError(t, err)
	expected := []float64{108, 77, 80, 80, 69, 63.333333, 42.666667, 35.666667, 44.333333, 14.666667}
	assert.InDeltaSlice(t, expected, rank, 1e-6)
	// 2 and 3 tie on paper; float rounding must keep 3 ahead
	assert.Less(t, rank[2], rank[3])

	rank, err = UpwardRank(peft(t))
	require.NoError(t, err)
	expected = []float64{169, 114.333333, 102.666667, 110, 129.666667, 119.333333, 52.666667, 92, 42.333333, 20.666667}
	assert.InDeltaSlice(t, expected, rank, 1e-6)
}

func TestOptimisticCostTable(t *testing.T) {
	t.Parallel()
	g := peft(t)
	oct, err := OptimisticCostTable(g)
	require.NoError(t, err)
	r, c := oct.Dims()
	assert.Equal(t, 10, r)
	assert.Equal(t, 3, c)
	for m := 0; m < 3; m++ {
		assert.Equal(t, 0.0, oct.At(9, m))
	}
	// task 8 only feeds 9, which pays the transfer of 7 off machine
	assert.Equal(t, 13.0, oct.At(8, 0))
	assert.Equal(t, 16.0, oct.At(8, 1))
	assert.Equal(t, 20.0, oct.At(8, 2))

	expected := []float64{72.666667, 41, 37, 43.666667, 31, 41.666667, 17, 20.666667, 16.333333, 0}
	assert.InDeltaSlice(t, expected, OCTRank(oct), 1e-6)

	again, err := OptimisticCostTable(g)
	require.NoError(t, err)
	assert.Equal(t, oct.RawMatrix().Data, again.RawMatrix().Data)
}

func TestHEFT(t *testing.T) {
	t.Parallel()
	g := topcuoglu(t)
	sol, err := HEFT(g)
	require.NoError(t, err)
	require.NoError(t, Validate(g, sol))
	assert.Equal(t, 80.0, sol.Makespan())
	assert.Equal(t, [][]alloc{
		{{27, 40, 1}, {57, 62, 7}},
		{{18, 26, 3}, {26, 42, 5}, {56, 68, 8}, {73, 80, 9}},
		{{0, 9, 0}, {9, 28, 2}, {28, 38, 4}, {38, 49, 6}},
	}, timelines(sol))

	g = peft(t)
	sol, err = HEFT(g)
	require.NoError(t, err)
	require.NoError(t, Validate(g, sol))
	assert.Equal(t, 133.0, sol.Makespan())
	assert.Equal(t, [][]alloc{
		{{38, 60, 1}, {67, 96, 7}, {120, 133, 9}},
		{{0, 21, 0}, {21, 48, 4}, {48, 75, 2}, {75, 100, 6}},
		{{28, 52, 5}, {52, 56, 3}, {105, 113, 8}},
	}, timelines(sol))
}

func TestPHEFT(t *testing.T) {
	t.Parallel()
	g := peft(t)
	sol, err := PHEFT(g)
	require.NoError(t, err)
	require.NoError(t, Validate(g, sol))
	assert.Equal(t, 122.0, sol.Makespan())
	assert.Equal(t, [][]alloc{
		{{0, 22, 0}, {22, 29, 3}, {29, 51, 1}, {51, 83, 2}, {83, 97, 6}},
		{{29, 46, 5}, {54, 77, 7}, {106, 122, 9}},
		{{35, 70, 4}, {81, 89, 8}},
	}, timelines(sol))

	g = topcuoglu(t)
	sol, err = PHEFT(g)
	require.NoError(t, err)
	require.NoError(t, Validate(g, sol))
	assert.Equal(t, 85.0, sol.Makespan())
}

func TestFCFS(t *testing.T) {
	t.Parallel()
	g := topcuoglu(t)
	sol, err := FCFS(g)
	require.NoError(t, err)
	require.NoError(t, Validate(g, sol))
	first, ok := sol.Allocation(0)
	require.True(t, ok)
	assert.Equal(t, 0.0, first.AST)
	assert.Equal(t, 84.0, sol.Makespan())
	assert.Equal(t, [][]alloc{
		{{21, 32, 2}, {32, 39, 6}},
		{{18, 26, 3}, {26, 39, 4}, {43, 55, 8}},
		{{0, 9, 0}, {9, 27, 1}, {27, 36, 5}, {53, 67, 7}, {68, 84, 9}},
	}, timelines(sol))

	g = peft(t)
	sol, err = FCFS(g)
	require.NoError(t, err)
	require.NoError(t, Validate(g, sol))
	assert.Equal(t, 125.0, sol.Makespan())
}

// FCFS never backfills: every machine runs its tasks in placement order.
func TestFCFSAppendsOnly(t *testing.T) {
	t.Parallel()
	g := peft(t)
	sol, err := FCFS(g)
	require.NoError(t, err)
	topo, err := g.TopologicalOrder()
	require.NoError(t, err)
	pos := make([]int, g.Len())
	for i, task := range topo {
		pos[task] = i
	}
	for m := 0; m < sol.Machines(); m++ {
		tl := sol.Timeline(m)
		for i := 1; i < len(tl); i++ {
			assert.Less(t, pos[tl[i-1].Task], pos[tl[i].Task])
		}
	}
}

func TestDeterminism(t *testing.T) {
	t.Parallel()
	g := peft(t)
	for _, m := range Methods {
		a, err := Schedule(g, m)
		require.NoError(t, err)
		b, err := Schedule(g, m)
		require.NoError(t, err)
		assert.Equal(t, timelines(a), timelines(b), m.String())
		assert.Equal(t, a.Order(), b.Order(), m.String())
	}
}

func TestRandomGraphsAreValid(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 30; i++ {
		g, err := graphtest.Random(rng, 5+rng.Intn(25), 1+rng.Intn(4))
		require.NoError(t, err)
		for _, m := range Methods {
			sol, err := Schedule(g, m)
			require.NoError(t, err)
			require.NoError(t, Validate(g, sol), "%s on graph %d", m, i)
		}
	}
}

func TestScheduleErrors(t *testing.T) {
	t.Parallel()
	g := graph.NewGraph()
	g.AddVertex(types.NewTask(0, 1))
	for _, m := range Methods {
		_, err := Schedule(g, m)
		assert.Equal(t, graph.ErrNoEnvironment, errors.Cause(err), m.String())
	}
	_, err := UpwardRank(g)
	assert.Equal(t, graph.ErrNoEnvironment, err)
	_, err = Schedule(topcuoglu(t), Method(99))
	assert.Equal(t, ErrUnknownMethod, errors.Cause(err))
	assert.Equal(t, "Unknown", Method(99).String())
}

func TestInsertionStart(t *testing.T) {
	tl := []*Allocation{
		{AST: 5, AFT: 10},
		{AST: 14, AFT: 20},
	}
	// leading gap
	assert.Equal(t, 0.0, insertionStart(tl, 0, 5))
	assert.Equal(t, 2.0, insertionStart(tl, 2, 3))
	assert.Equal(t, 1.0, insertionStart(tl, 1, 4))
	// does not fit before 5, lands in [10,14)
	assert.Equal(t, 10.0, insertionStart(tl, 3, 4))
	// fits nowhere before the tail
	assert.Equal(t, 20.0, insertionStart(tl, 1, 5))
	assert.Equal(t, 11.0, insertionStart(tl, 11, 3))
	// tail
	assert.Equal(t, 20.0, insertionStart(tl, 11, 4))
	assert.Equal(t, 25.0, insertionStart(tl, 25, 100))
	assert.Equal(t, 7.0, insertionStart(nil, 7, 1))

	tl = []*Allocation{{AST: 0, AFT: 3}}
	assert.Equal(t, 3.0, insertionStart(tl, 0, 1))
}

func TestZeroLengthAllocation(t *testing.T) {
	env, err := graphtest.Environment([]float64{1})
	require.NoError(t, err)
	sol := NewSolution(env, 3)
	sol.Add(0, 0, 0, 0, 5)
	sol.Add(1, 1, 0, 5, 10)
	sol.Add(2, 2, 0, 5, 5)
	assert.Equal(t, [][]alloc{{{0, 5, 0}, {5, 5, 2}, {5, 10, 1}}}, timelines(sol))

	tl := sol.Timeline(0)
	assert.Equal(t, []slot{{5, 5}, {5, 5}, {10, math.Inf(1)}}, idleSlots(tl))
	assert.Equal(t, 10.0, insertionStart(tl, 5, 3))
	assert.Equal(t, 5.0, insertionStart(tl, 5, 0))

	// a zero length allocation inside a busy one does not open a gap
	tl = []*Allocation{{AST: 0, AFT: 10}, {AST: 4, AFT: 4}, {AST: 12, AFT: 15}}
	assert.Equal(t, []slot{{10, 12}, {15, math.Inf(1)}}, idleSlots(tl))
	assert.Equal(t, 10.0, insertionStart(tl, 4, 2))
}

func TestZeroRuntimeTask(t *testing.T) {
	g := graph.NewGraph()
	for tid, w := range []float64{5, 5, 0, 3} {
		g.AddVertex(types.NewTask(tid, w))
	}
	require.NoError(t, g.AddEdge(0, 1, 0))
	require.NoError(t, g.AddEdge(0, 2, 0))
	require.NoError(t, g.AddEdge(2, 3, 0))
	env, err := graphtest.Environment([]float64{1})
	require.NoError(t, err)
	require.NoError(t, g.Bind(env))

	sol, err := HEFT(g)
	require.NoError(t, err)
	assert.Equal(t, [][]alloc{{{0, 5, 0}, {5, 5, 2}, {5, 10, 1}, {10, 13, 3}}}, timelines(sol))
	assert.Equal(t, 13.0, sol.Makespan())

	for _, m := range Methods {
		sol, err := Schedule(g, m)
		require.NoError(t, err)
		assert.NoError(t, Validate(g, sol), m.String())
	}
}

func TestSolutionBookkeeping(t *testing.T) {
	env, err := graphtest.Environment([]float64{2, 3})
	require.NoError(t, err)
	sol := NewSolution(env, 3)
	sol.Add(0, 10, 0, 4, 6)
	sol.Add(1, 11, 0, 0, 2)
	sol.Add(2, 12, 1, 4, 9)

	assert.Equal(t, 9.0, sol.Makespan())
	assert.Equal(t, 2*2+2*2+3*5.0, sol.Cost())
	assert.Equal(t, []int{1, 0, 2}, sol.Order())
	assert.Equal(t, []int{0, 0, 1}, sol.Assignment())
	assert.Equal(t, 6.0, sol.FreeAt(0))
	assert.Equal(t, 11, sol.Timeline(0)[0].Tid)
	assert.Panics(t, func() { sol.Add(2, 12, 0, 10, 11) })
	assert.Contains(t, sol.String(), "makespan 9")
}

func TestValidateRejects(t *testing.T) {
	g := topcuoglu(t)
	sol := NewSolution(g.Environment(), g.Len())
	sol.Add(0, 0, 0, 0, 14)
	assert.Equal(t, ErrInvalidSchedule, errors.Cause(Validate(g, sol)))

	// 1 runs on another machine before the data of 0 arrives
	sol = NewSolution(g.Environment(), g.Len())
	for task := 0; task < g.Len(); task++ {
		sol.Add(task, g.Tid(task), 1, float64(100*task), float64(100*task+50))
	}
	require.NoError(t, Validate(g, sol))
	bad := NewSolution(g.Environment(), g.Len())
	bad.Add(0, 0, 0, 0, 14)
	for task := 1; task < g.Len(); task++ {
		bad.Add(task, g.Tid(task), 1, float64(20*task), float64(20*task+19))
	}
	assert.Equal(t, ErrInvalidSchedule, errors.Cause(Validate(g, bad)))
}

func TestAnalysis(t *testing.T) {
	g := topcuoglu(t)
	sol, err := HEFT(g)
	require.NoError(t, err)

	assert.Equal(t, 127.0, SequentialTime(g))
	cp, err := CriticalPath(g)
	require.NoError(t, err)
	assert.Equal(t, 41.0, cp)
	assert.InDelta(t, 127.0/80, Speedup(g, sol), 1e-9)
	assert.InDelta(t, 127.0/240, Efficiency(g, sol), 1e-9)
	slr, err := SLR(g, sol)
	require.NoError(t, err)
	assert.InDelta(t, 80.0/41, slr, 1e-9)
	assert.GreaterOrEqual(t, slr, 1.0)
}

func TestScheduleAggregator(t *testing.T) {
	g := peft(t)
	scope := tally.NewTestScope("", nil)
	agg := NewScheduleAggregator(g, scope)
	sol, method, err := agg.Schedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MethodPHEFT, method)
	assert.Equal(t, 122.0, sol.Makespan())

	counters := scope.Snapshot().Counters()
	picked, ok := counters["aggregator.picked+method=PHEFT"]
	require.True(t, ok)
	assert.Equal(t, int64(1), picked.Value())
	gauges := scope.Snapshot().Gauges()
	assert.Equal(t, 133.0, gauges["aggregator.makespan+method=HEFT"].Value())

	agg = NewScheduleAggregator(topcuoglu(t), nil, MethodFCFS, MethodHEFT)
	sol, method, err = agg.Schedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MethodHEFT, method)
	assert.Equal(t, 80.0, sol.Makespan())

	unbound := graph.NewGraph()
	_, _, err = NewScheduleAggregator(unbound, scope).Schedule(context.Background())
	assert.Equal(t, graph.ErrNoEnvironment, err)
}
