package gen

import (
	"fmt"
	"math"
	"time"

	"plantsim/internal/core"
)

// PressureParams configures a grinding-jar pressure transmitter running a
// repeating four-phase process cycle: linear ramp to nominal, a stable phase
// with sinusoidal dither, an overpressure event, and exponential decay.
type PressureParams struct {
	AmbientBar float64       `yaml:"ambient_bar"`
	NominalBar float64       `yaml:"nominal_bar"`
	RampTime   time.Duration `yaml:"ramp_time"`
	StableTime time.Duration `yaml:"stable_time"`
	SpikeTime  time.Duration `yaml:"spike_time"`
	CoolTime   time.Duration `yaml:"cool_time"`

	DitherAmpBar float64       `yaml:"dither_amp_bar"`
	DitherPeriod time.Duration `yaml:"dither_period"`
	SpikeBaseBar float64       `yaml:"spike_base_bar"`
	SpikeAmpBar  float64       `yaml:"spike_amp_bar"`
	DecayRate    float64       `yaml:"decay_rate"` // 1/s

	Range core.Range `yaml:"range"`
}

func (p PressureParams) Validate() error {
	if !p.Range.Valid() {
		return fmt.Errorf("range: min %v must be below max %v", p.Range.Min, p.Range.Max)
	}
	if p.RampTime <= 0 || p.StableTime <= 0 || p.SpikeTime <= 0 || p.CoolTime <= 0 {
		return fmt.Errorf("all phase durations must be positive")
	}
	if p.DitherPeriod <= 0 {
		return fmt.Errorf("dither_period must be positive")
	}
	if p.DecayRate < 0 {
		return fmt.Errorf("decay_rate must not be negative")
	}
	return nil
}

// PressureCycle generates pressure_bar plus an event flag raised during the
// overpressure phase of each cycle.
type PressureCycle struct {
	id       string
	interval time.Duration
	p        PressureParams
}

func NewPressureCycle(id string, interval time.Duration, p PressureParams) *PressureCycle {
	return &PressureCycle{id: id, interval: interval, p: p}
}

func (g *PressureCycle) ID() string              { return g.id }
func (g *PressureCycle) Interval() time.Duration { return g.interval }
func (g *PressureCycle) Columns() []string       { return []string{"pressure_bar", "event"} }
func (g *PressureCycle) Ranges() []core.Range    { return []core.Range{g.p.Range} }

func (g *PressureCycle) Generate(elapsed float64) (core.Reading, error) {
	p := g.p
	ramp := p.RampTime.Seconds()
	stable := p.StableTime.Seconds()
	spike := p.SpikeTime.Seconds()
	cool := p.CoolTime.Seconds()
	cycle := math.Mod(elapsed, ramp+stable+spike+cool)

	var pressure float64
	event := false
	switch {
	case cycle < ramp:
		pressure = p.AmbientBar + (p.NominalBar-p.AmbientBar)*(cycle/ramp)
	case cycle < ramp+stable:
		t := cycle - ramp
		pressure = p.NominalBar + p.DitherAmpBar*math.Sin(2*math.Pi*t/p.DitherPeriod.Seconds())
	case cycle < ramp+stable+spike:
		t := cycle - ramp - stable
		pressure = p.SpikeBaseBar + p.SpikeAmpBar*math.Sin(math.Pi*t/spike)
		event = true
	default:
		t := cycle - ramp - stable - spike
		pressure = p.SpikeBaseBar * math.Exp(-p.DecayRate*t)
	}

	pressure = p.Range.Clamp(pressure)

	return core.Reading{
		Values: []float64{pressure},
		Flags:  []string{boolFlag(event)},
	}, nil
}
