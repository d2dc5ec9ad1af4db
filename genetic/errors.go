package genetic

import "github.com/pkg/errors"

var (
	ErrUnknownObjective = errors.New("unknown objective")
	ErrInvalidOrder     = errors.New("order is not a topological order of the graph")
	ErrInvalidConfig    = errors.New("invalid genetic configuration")
)
