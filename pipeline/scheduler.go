package pipeline

import (
	"context"
	"sync"
	"time"

	"dagsched/schedule"

	"github.com/ledgerwatch/log/v3"
	"github.com/uber-go/tally/v4"
)

type Scheduler struct {
	Ctx        context.Context
	Scope      tally.Scope
	Methods    []schedule.Method
	Wg         *sync.WaitGroup
	InputChan  chan *GraphMessage
	OutputChan chan *ScheduleMessage
}

func NewScheduler(ctx context.Context, scope tally.Scope, wg *sync.WaitGroup, in chan *GraphMessage, out chan *ScheduleMessage, methods ...schedule.Method) *Scheduler {
	return &Scheduler{
		Ctx:        ctx,
		Scope:      scope,
		Methods:    methods,
		Wg:         wg,
		InputChan:  in,
		OutputChan: out,
	}
}

func (s *Scheduler) Run() {
	var elapsed time.Duration
	for input := range s.InputChan {
		if input.Flag == END {
			s.OutputChan <- &ScheduleMessage{Flag: END}
			close(s.OutputChan)
			s.Wg.Done()
			log.Debug("scheduler done", "elapsed", elapsed)
			return
		}
		if input.Err != nil {
			s.OutputChan <- &ScheduleMessage{Flag: START, Name: input.Name, Err: input.Err}
			continue
		}

		scheduleAgg := schedule.NewScheduleAggregator(input.Graph, s.Scope, s.Methods...)
		st := time.Now()
		sol, method, err := scheduleAgg.Schedule(s.Ctx)
		elapsed += time.Since(st)
		outMessage := &ScheduleMessage{
			Flag:   START,
			Name:   input.Name,
			Method: method,
			Err:    err,
		}
		if err == nil {
			outMessage.Solution = sol
			outMessage.Makespan = sol.Makespan()
		}
		s.OutputChan <- outMessage
	}
}
