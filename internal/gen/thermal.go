package gen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"plantsim/internal/core"
)

// ThermalParams configures a temperature probe (RTD/thermocouple class)
// mounted on a motor or grinding jar: a slow linear warm-up with one
// deterministic overheat event followed by linear cooling back toward the
// baseline.
type ThermalParams struct {
	AmbientC      float64       `yaml:"ambient_c"`
	RisePerMin    float64       `yaml:"rise_per_min"`
	EventTrigger  time.Duration `yaml:"event_trigger"`
	EventDuration time.Duration `yaml:"event_duration"`
	EventSpikeC   float64       `yaml:"event_spike_c"`
	CoolPerSec    float64       `yaml:"cool_per_sec"`
	// Accuracy noise: stddev = noise_base + noise_per_deg * |t|.
	// Zero disables noise (deterministic output).
	NoiseBase   float64    `yaml:"noise_base"`
	NoisePerDeg float64    `yaml:"noise_per_deg"`
	Range       core.Range `yaml:"range"`
}

func (p ThermalParams) Validate() error {
	if !p.Range.Valid() {
		return fmt.Errorf("range: min %v must be below max %v", p.Range.Min, p.Range.Max)
	}
	if p.EventTrigger < 0 || p.EventDuration < 0 {
		return fmt.Errorf("event trigger and duration must not be negative")
	}
	if p.NoiseBase < 0 || p.NoisePerDeg < 0 {
		return fmt.Errorf("noise parameters must not be negative")
	}
	if p.CoolPerSec < 0 {
		return fmt.Errorf("cool_per_sec must not be negative")
	}
	return nil
}

// Thermal generates temperature_c plus an event flag marking the overheat
// window.
type Thermal struct {
	id       string
	interval time.Duration
	p        ThermalParams
	rng      *rand.Rand
}

func NewThermal(id string, interval time.Duration, seed int64, p ThermalParams) *Thermal {
	return &Thermal{id: id, interval: interval, p: p, rng: newRand(seed)}
}

func (g *Thermal) ID() string              { return g.id }
func (g *Thermal) Interval() time.Duration { return g.interval }
func (g *Thermal) Columns() []string       { return []string{"temperature_c", "event"} }
func (g *Thermal) Ranges() []core.Range    { return []core.Range{g.p.Range} }

func (g *Thermal) Generate(elapsed float64) (core.Reading, error) {
	p := g.p
	trigger := p.EventTrigger.Seconds()
	duration := p.EventDuration.Seconds()

	baseline := p.AmbientC + p.RisePerMin/60*elapsed
	peak := p.AmbientC + p.RisePerMin/60*trigger + p.EventSpikeC

	var temp float64
	event := false
	switch {
	case duration == 0 || elapsed < trigger:
		temp = baseline
	case elapsed < trigger+duration:
		temp = peak
		event = true
	default:
		// Linear cool-down, never dropping below the running baseline.
		temp = math.Max(peak-p.CoolPerSec*(elapsed-trigger-duration), baseline)
	}

	if sigma := p.NoiseBase + p.NoisePerDeg*math.Abs(temp); sigma > 0 {
		temp += g.rng.NormFloat64() * sigma
	}
	temp = p.Range.Clamp(temp)

	return core.Reading{
		Values: []float64{temp},
		Flags:  []string{boolFlag(event)},
	}, nil
}
