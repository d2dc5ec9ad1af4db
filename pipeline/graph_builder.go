package pipeline

import (
	"sync"
	"time"

	dag "dagsched/graph"

	"github.com/ledgerwatch/log/v3"
)

type GraphBuilder struct {
	Wg         *sync.WaitGroup
	InputChan  chan *WorkflowMessage
	OutputChan chan *GraphMessage
}

func NewGraphBuilder(wg *sync.WaitGroup, in chan *WorkflowMessage, out chan *GraphMessage) *GraphBuilder {
	return &GraphBuilder{
		Wg:         wg,
		InputChan:  in,
		OutputChan: out,
	}
}

// GenerateGraph builds and binds the task graph described by msg.
func GenerateGraph(msg *WorkflowMessage) (*dag.Graph, error) {
	graph := dag.NewGraph()
	for _, task := range msg.Tasks {
		graph.AddVertex(task)
	}
	for _, e := range msg.Edges {
		if err := graph.AddEdge(e.Src, e.Dst, e.DataSize); err != nil {
			return nil, err
		}
	}
	if err := graph.Bind(msg.Env); err != nil {
		return nil, err
	}
	return graph, nil
}

func (g *GraphBuilder) Run() {
	var elapsed time.Duration
	for input := range g.InputChan {
		if input.Flag == END {
			g.OutputChan <- &GraphMessage{Flag: END}
			close(g.OutputChan)
			g.Wg.Done()
			log.Debug("graph builder done", "elapsed", elapsed)
			return
		}
		st := time.Now()
		graph, err := GenerateGraph(input)
		elapsed += time.Since(st)
		if err != nil {
			log.Warn("cannot build task graph", "workflow", input.Name, "err", err)
		}
		g.OutputChan <- &GraphMessage{
			Flag:  START,
			Name:  input.Name,
			Graph: graph,
			Err:   err,
		}
	}
}
