package types

import (
	"math"

	"github.com/pkg/errors"
)

// Environment is an ordered, read-only set of machines. Machine order fixes
// the column order of every runtime and cost table built from it.
type Environment struct {
	machines  []*Machine
	index     map[string]int
	bandwidth float64
}

func NewEnvironment(machines ...*Machine) (*Environment, error) {
	if len(machines) == 0 {
		return nil, ErrNoMachines
	}
	env := &Environment{
		machines: make([]*Machine, len(machines)),
		index:    make(map[string]int, len(machines)),
	}
	var rates, sum float64
	for i, m := range machines {
		if m == nil || m.ID == "" {
			return nil, errors.Wrapf(ErrInvalidMachine, "machine %d has no id", i)
		}
		if m.Flops < 0 || m.IORate < 0 || m.Cost < 0 {
			return nil, errors.Wrapf(ErrInvalidMachine, "machine %s has a negative rate", m.ID)
		}
		if _, ok := env.index[m.ID]; ok {
			return nil, errors.Wrapf(ErrInvalidMachine, "duplicate machine id %s", m.ID)
		}
		cp := *m
		env.machines[i] = &cp
		env.index[m.ID] = i
		if m.IORate > 0 {
			rates++
			sum += m.IORate
		}
	}
	if rates > 0 {
		env.bandwidth = sum / rates
	}
	return env, nil
}

func (e *Environment) Len() int {
	return len(e.machines)
}

// Machine returns a copy of machine i.
func (e *Environment) Machine(i int) Machine {
	return *e.machines[i]
}

func (e *Environment) Machines() []Machine {
	ret := make([]Machine, len(e.machines))
	for i, m := range e.machines {
		ret[i] = *m
	}
	return ret
}

func (e *Environment) Index(id string) (int, bool) {
	i, ok := e.index[id]
	return i, ok
}

// TransferTime converts a data volume into a delay using the mean transfer
// rate of the machines that declare one. Without any declared rate the volume
// is taken to be the delay itself.
func (e *Environment) TransferTime(dataSize float64) float64 {
	if e.bandwidth <= 0 {
		return dataSize
	}
	return dataSize / e.bandwidth
}

// Runtimes returns the runtime of t on every machine, in machine order.
func (e *Environment) Runtimes(t *Task) ([]float64, error) {
	ret := make([]float64, len(e.machines))
	if t.Runtimes != nil {
		if len(t.Runtimes) != len(e.machines) {
			return nil, errors.Wrapf(ErrRuntimeMismatch, "task %d has %d runtimes for %d machines",
				t.Tid, len(t.Runtimes), len(e.machines))
		}
		copy(ret, t.Runtimes)
		return ret, nil
	}
	for i, m := range e.machines {
		if m.Flops <= 0 {
			return nil, errors.Wrapf(ErrInvalidMachine, "machine %s cannot derive runtime of task %d without flops",
				m.ID, t.Tid)
		}
		rt := math.Round(t.Demand / m.Flops)
		if t.DataDemand > 0 && m.IORate > 0 {
			rt += math.Round(t.DataDemand / m.IORate)
		}
		ret[i] = rt
	}
	return ret, nil
}
