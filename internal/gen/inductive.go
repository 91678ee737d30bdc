package gen

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"plantsim/internal/core"
)

// InductiveParams configures an inductive proximity switch (NBN40 class)
// watching a ferrous target that sweeps toward and away from the face.
type InductiveParams struct {
	RatedDistanceMM float64       `yaml:"rated_distance_mm"` // Sn, turn-on threshold
	HysteresisPct   float64       `yaml:"hysteresis_pct"`    // fraction of Sn, e.g. 0.05
	Switching       string        `yaml:"switching"`         // "NO" or "NC"
	CycleTime       time.Duration `yaml:"cycle_time"`        // one full target sweep
	NoiseStd        float64       `yaml:"noise_std"`         // mm
}

func (p InductiveParams) Validate() error {
	if p.RatedDistanceMM <= 0 {
		return fmt.Errorf("rated_distance_mm %v must be positive", p.RatedDistanceMM)
	}
	if p.HysteresisPct < 0 || p.HysteresisPct > 1 {
		return fmt.Errorf("hysteresis_pct %v must be in [0, 1]", p.HysteresisPct)
	}
	switch strings.ToUpper(p.Switching) {
	case "NO", "NC":
	default:
		return fmt.Errorf("switching %q must be NO or NC", p.Switching)
	}
	if p.CycleTime <= 0 {
		return fmt.Errorf("cycle_time must be positive")
	}
	if p.NoiseStd < 0 {
		return fmt.Errorf("noise_std must not be negative")
	}
	return nil
}

func (p InductiveParams) turnOn() float64  { return p.RatedDistanceMM }
func (p InductiveParams) turnOff() float64 { return p.RatedDistanceMM * (1 + p.HysteresisPct) }
func (p InductiveParams) maxDist() float64 { return p.turnOff() + 10 }

// Inductive generates the target distance and the switch's electrical output
// with a hysteresis dead-band between the turn-on and turn-off thresholds.
type Inductive struct {
	id       string
	interval time.Duration
	p        InductiveParams
	rng      *rand.Rand
	sensing  bool // internal detection state, before NO/NC mapping
}

func NewInductive(id string, interval time.Duration, seed int64, p InductiveParams) *Inductive {
	return &Inductive{id: id, interval: interval, p: p, rng: newRand(seed)}
}

func (g *Inductive) ID() string              { return g.id }
func (g *Inductive) Interval() time.Duration { return g.interval }

func (g *Inductive) Columns() []string {
	return []string{"distance_to_target_mm", "output_state", "switching_function"}
}

func (g *Inductive) Ranges() []core.Range {
	return []core.Range{{Min: 0, Max: g.p.maxDist()}}
}

// step advances the hysteresis state machine for one observed distance and
// returns the electrical output. The state transitions only when the
// distance crosses the outer threshold while sensing, or the inner threshold
// while not sensing; between the two thresholds the previous state holds.
func (g *Inductive) step(distance float64) int {
	if g.sensing {
		if distance > g.p.turnOff() {
			g.sensing = false
		}
	} else {
		if distance <= g.p.turnOn() {
			g.sensing = true
		}
	}

	out := g.sensing
	if strings.EqualFold(g.p.Switching, "NC") {
		out = !out
	}
	if out {
		return 1
	}
	return 0
}

func (g *Inductive) Generate(elapsed float64) (core.Reading, error) {
	p := g.p
	r := core.Range{Min: 0, Max: p.maxDist()}

	// Triangular sweep: in toward the face for the first half-cycle, back
	// out for the second.
	cyclePos := elapsed / p.CycleTime.Seconds()
	cyclePos -= float64(int64(cyclePos)) // fractional part
	var distance float64
	if cyclePos < 0.5 {
		distance = p.maxDist() * (1 - 2*cyclePos)
	} else {
		distance = p.maxDist() * 2 * (cyclePos - 0.5)
	}
	if p.NoiseStd > 0 {
		distance += g.rng.NormFloat64() * p.NoiseStd
	}
	distance = r.Clamp(distance)

	output := g.step(distance)

	return core.Reading{
		Values: []float64{distance},
		Flags:  []string{boolFlag(output == 1), strings.ToUpper(p.Switching)},
	}, nil
}
