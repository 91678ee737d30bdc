package gen

import (
	"fmt"
	"math/rand"
	"time"

	"plantsim/internal/core"
)

// EncoderParams configures an incremental shaft encoder (HOG10 class)
// counting pulses on a drive pulley.
type EncoderParams struct {
	PPR           int     `yaml:"ppr"`               // pulses per revolution
	BaseRPM       float64 `yaml:"base_rpm"`          // normal operating speed
	MaxRPM        float64 `yaml:"max_rpm"`           // datasheet limit; faster trips OVERSPEED
	JitterPct     float64 `yaml:"jitter_pct"`        // uniform speed variation, fraction
	ReverseProb   float64 `yaml:"reverse_prob"`      // per tick
	SignalErrProb float64 `yaml:"signal_error_prob"` // per tick
}

func (p EncoderParams) Validate() error {
	if p.PPR <= 0 {
		return fmt.Errorf("ppr %d must be positive", p.PPR)
	}
	if p.BaseRPM <= 0 {
		return fmt.Errorf("base_rpm %v must be positive", p.BaseRPM)
	}
	if p.MaxRPM <= 0 {
		return fmt.Errorf("max_rpm %v must be positive", p.MaxRPM)
	}
	if p.JitterPct < 0 || p.JitterPct > 1 {
		return fmt.Errorf("jitter_pct %v must be in [0, 1]", p.JitterPct)
	}
	if p.ReverseProb < 0 || p.ReverseProb > 1 {
		return fmt.Errorf("reverse_prob %v must be in [0, 1]", p.ReverseProb)
	}
	if p.SignalErrProb < 0 || p.SignalErrProb > 1 {
		return fmt.Errorf("signal_error_prob %v must be in [0, 1]", p.SignalErrProb)
	}
	return nil
}

// Encoder generates shaft RPM, the signed running pulse count, the direction
// of rotation and a status word. The status check runs against the raw speed
// so overspeed is reported before the output channel clamps.
type Encoder struct {
	id         string
	interval   time.Duration
	p          EncoderParams
	rng        *rand.Rand
	pulseCount int64
}

func NewEncoder(id string, interval time.Duration, seed int64, p EncoderParams) *Encoder {
	return &Encoder{id: id, interval: interval, p: p, rng: newRand(seed)}
}

func (g *Encoder) ID() string              { return g.id }
func (g *Encoder) Interval() time.Duration { return g.interval }

func (g *Encoder) Columns() []string {
	return []string{"rpm", "pulse_count", "direction", "status"}
}

func (g *Encoder) Ranges() []core.Range {
	return []core.Range{{Min: 0, Max: g.p.MaxRPM}, core.Unbounded}
}

// pulses returns how many edges one sampling interval sees at the given
// speed. Fractional pulses truncate; the counter tracks whole edges only.
func (g *Encoder) pulses(rpm float64) int64 {
	return int64(rpm / 60 * float64(g.p.PPR) * g.interval.Seconds())
}

func (g *Encoder) Generate(elapsed float64) (core.Reading, error) {
	p := g.p

	rpm := p.BaseRPM * (1 + (g.rng.Float64()*2-1)*p.JitterPct)

	status := "NORMAL"
	if rpm > p.MaxRPM {
		status = "OVERSPEED"
	} else if g.rng.Float64() < p.SignalErrProb {
		status = "SIGNAL_ERROR"
	}

	direction := int64(1)
	dirFlag := "FORWARD"
	if g.rng.Float64() < p.ReverseProb {
		direction = -1
		dirFlag = "REVERSE"
	}

	rpm = (core.Range{Min: 0, Max: p.MaxRPM}).Clamp(rpm)
	g.pulseCount += g.pulses(rpm) * direction

	return core.Reading{
		Values: []float64{rpm, float64(g.pulseCount)},
		Flags:  []string{dirFlag, status},
	}, nil
}
