package types

// Task holds the static description of one unit of work. Runtimes, when set,
// carries one value per machine in environment order. Otherwise the runtime is
// derived from Demand (and DataDemand) when the graph is bound.
type Task struct {
	Tid        int
	Runtimes   []float64
	Demand     float64
	DataDemand float64
}

func NewTask(tid int, runtimes ...float64) *Task {
	return &Task{
		Tid:      tid,
		Runtimes: runtimes,
	}
}

func NewDemandTask(tid int, demand, dataDemand float64) *Task {
	return &Task{
		Tid:        tid,
		Demand:     demand,
		DataDemand: dataDemand,
	}
}

func (t *Task) Equal(o *Task) bool {
	return t.Tid == o.Tid
}

// we assume Tasks are sorted by Tid
type Tasks []*Task

func (t Tasks) Len() int {
	return len(t)
}

func (t Tasks) Less(i, j int) bool {
	return t[i].Tid < t[j].Tid
}

func (t Tasks) Swap(i, j int) {
	t[i], t[j] = t[j], t[i]
}

// use binary search to find the target task.
// if not found, we find the first task that is less than the target.
func (t Tasks) Find(target int) (int, bool) {
	left, right := 0, len(t)-1

	for left <= right {
		mid := (left + right) / 2
		if t[mid].Tid == target {
			return mid, true
		} else if t[mid].Tid < target {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return right, false
}
