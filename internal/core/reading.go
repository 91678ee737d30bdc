// Package core defines the fundamental types shared by signal generators
// and sampling loops.
package core

import (
	"math"
	"time"
)

// Range is the declared physical output range of one numeric channel.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Unbounded is the range of a channel with no physical limit, such as a
// rotation counter.
var Unbounded = Range{Min: math.Inf(-1), Max: math.Inf(1)}

// Clamp forces v into [Min, Max]. Clamping is always the final step of a
// generator's computation.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies in the closed interval [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Valid reports whether the range is well-formed.
func (r Range) Valid() bool {
	return r.Min < r.Max
}

// Reading is one output row: numeric channels followed by categorical or
// binary state columns. A Reading is created fresh each tick and serialized
// immediately; it is never retained or edited after emission.
type Reading struct {
	Values []float64 // numeric channels, in Columns() order
	Flags  []string  // state columns (event flags, alert strings, modes)
}

// Generator maps elapsed simulated time to a Reading. Implementations may
// carry small rolling state (hysteresis, active fault records, a response
// delay buffer) and are NOT safe for concurrent use; each sampling loop owns
// exactly one Generator.
type Generator interface {
	// ID identifies the simulated instrument.
	ID() string

	// Interval is the sampling interval. Always positive for a generator
	// built from a validated configuration.
	Interval() time.Duration

	// Columns returns the stable data column set: numeric channel names
	// first, then flag column names. The sampling loop prepends timestamp
	// and sensor_id.
	Columns() []string

	// Ranges returns the declared physical range for each numeric channel,
	// in Columns() order. Every emitted value lies within its range.
	Ranges() []Range

	// Generate produces the Reading for the given elapsed seconds (>= 0).
	Generate(elapsed float64) (Reading, error)
}
