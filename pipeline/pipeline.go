package pipeline

import (
	"context"
	"sync"

	"dagsched/schedule"

	"github.com/uber-go/tally/v4"
)

// Start wires a graph builder to a scheduler over channels buffered to queue
// messages and runs both stages. Send an END message on the returned input
// to drain the pipeline; the output is closed once the END message passes
// through and the WaitGroup is released when both stages return.
func Start(ctx context.Context, scope tally.Scope, queue int, methods ...schedule.Method) (chan<- *WorkflowMessage, <-chan *ScheduleMessage, *sync.WaitGroup) {
	wg := &sync.WaitGroup{}
	workflows := make(chan *WorkflowMessage, queue)
	graphs := make(chan *GraphMessage, queue)
	schedules := make(chan *ScheduleMessage, queue)

	wg.Add(2)
	go NewGraphBuilder(wg, workflows, graphs).Run()
	go NewScheduler(ctx, scope, wg, graphs, schedules, methods...).Run()
	return workflows, schedules, wg
}
