package graph

import "github.com/pkg/errors"

var (
	ErrCycle         = errors.New("task graph contains a cycle")
	ErrEmptyGraph    = errors.New("task graph has no tasks")
	ErrUnknownTask   = errors.New("unknown task")
	ErrNoEnvironment = errors.New("no environment bound to task graph")
)
