package types

import "github.com/pkg/errors"

var (
	ErrNoMachines      = errors.New("environment has no machines")
	ErrInvalidMachine  = errors.New("invalid machine")
	ErrRuntimeMismatch = errors.New("runtime vector does not match machine count")
)
