package schedule

type TaskWrapper struct {
	Task     int
	Tid      int
	Priority float64
}

// PriorityTaskQueue pops the highest priority first, lowest tid on ties.
type PriorityTaskQueue []*TaskWrapper

func (pq PriorityTaskQueue) Len() int { return len(pq) }

func (pq PriorityTaskQueue) Less(i, j int) bool {
	if pq[i].Priority == pq[j].Priority {
		return pq[i].Tid < pq[j].Tid
	}
	return pq[i].Priority > pq[j].Priority
}

func (pq PriorityTaskQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *PriorityTaskQueue) Push(x interface{}) {
	*pq = append(*pq, x.(*TaskWrapper))
}

func (pq *PriorityTaskQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	x := old[n-1]
	*pq = old[0 : n-1]
	return x
}
