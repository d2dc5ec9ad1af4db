package pipeline

import (
	dag "dagsched/graph"
	"dagsched/schedule"
	"dagsched/types"
)

type FLAG int

const (
	START FLAG = iota
	END
)

type EdgeSpec struct {
	Src, Dst int
	DataSize float64
}

type WorkflowMessage struct {
	Flag  FLAG
	Name  string
	Tasks types.Tasks
	Edges []EdgeSpec
	Env   *types.Environment
}

type GraphMessage struct {
	Flag  FLAG
	Name  string
	Graph *dag.Graph
	Err   error
}

type ScheduleMessage struct {
	Flag     FLAG
	Name     string
	Solution *schedule.Solution
	Method   schedule.Method
	Makespan float64
	Err      error
}
