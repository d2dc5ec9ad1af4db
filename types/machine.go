package types

import "strings"

// Machine is a compute resource. Flops is the compute throughput, IORate the
// optional transfer rate and Cost the price per second of occupancy.
type Machine struct {
	ID     string
	Flops  float64
	IORate float64
	Cost   float64
}

func NewMachine(id string, flops, iorate, cost float64) *Machine {
	return &Machine{
		ID:     id,
		Flops:  flops,
		IORate: iorate,
		Cost:   cost,
	}
}

// Type returns the tier prefix of the machine id, e.g. "cat1" for "cat1_m2".
func (m *Machine) Type() string {
	if i := strings.Index(m.ID, "_"); i >= 0 {
		return m.ID[:i]
	}
	return m.ID
}
