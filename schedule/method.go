package schedule

import "dagsched/graph"

type Method int

func (m Method) String() string {
	switch m {
	case MethodHEFT:
		return "HEFT"
	case MethodPHEFT:
		return "PHEFT"
	case MethodFCFS:
		return "FCFS"
	default:
		return "Unknown"
	}
}

const (
	MethodHEFT Method = iota
	MethodPHEFT
	MethodFCFS
)

// Methods lists every scheduling method in a fixed order.
var Methods = []Method{MethodHEFT, MethodPHEFT, MethodFCFS}

// Schedule runs method m on g.
func Schedule(g *graph.Graph, m Method) (*Solution, error) {
	switch m {
	case MethodFCFS:
		return NewSchedulerFCFS(g).Schedule()
	default:
		return NewSchedulerHeur(g, m).Schedule()
	}
}
