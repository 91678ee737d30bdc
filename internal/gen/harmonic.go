package gen

import (
	"fmt"
	"math"
	"time"

	"plantsim/internal/core"
)

// ChannelParams describes one harmonic channel:
//
//	value = offset + slope*elapsed + amp*sin(2*pi*elapsed/period + phase)
//
// A slope models warm-up ramps (shell temperature); amp/period/phase model
// periodic vibration or acoustic signatures.
type ChannelParams struct {
	Name       string        `yaml:"name"`
	Offset     float64       `yaml:"offset"`
	Slope      float64       `yaml:"slope"` // units per second
	Amp        float64       `yaml:"amp"`
	Period     time.Duration `yaml:"period"`
	Phase      float64       `yaml:"phase"` // radians
	EventSpike float64       `yaml:"event_spike"`
	Range      core.Range    `yaml:"range"`
}

// HarmonicParams configures a multi-channel periodic instrument
// (accelerometer axes, mill-shell vibration, acoustic fill level) with one
// shared deterministic event window.
type HarmonicParams struct {
	Channels      []ChannelParams `yaml:"channels"`
	EventTrigger  time.Duration   `yaml:"event_trigger"`
	EventDuration time.Duration   `yaml:"event_duration"`
}

func (p HarmonicParams) Validate() error {
	if len(p.Channels) == 0 {
		return fmt.Errorf("at least one channel is required")
	}
	for i, c := range p.Channels {
		if c.Name == "" {
			return fmt.Errorf("channel %d: name is required", i)
		}
		if c.Amp != 0 && c.Period <= 0 {
			return fmt.Errorf("channel %q: period must be positive when amp is set", c.Name)
		}
		if !c.Range.Valid() {
			return fmt.Errorf("channel %q: range min %v must be below max %v", c.Name, c.Range.Min, c.Range.Max)
		}
	}
	if p.EventTrigger < 0 || p.EventDuration < 0 {
		return fmt.Errorf("event trigger and duration must not be negative")
	}
	return nil
}

// Harmonic generates one numeric column per configured channel plus an event
// flag for the shared spike window.
type Harmonic struct {
	id       string
	interval time.Duration
	p        HarmonicParams
	columns  []string
	ranges   []core.Range
}

func NewHarmonic(id string, interval time.Duration, p HarmonicParams) *Harmonic {
	g := &Harmonic{id: id, interval: interval, p: p}
	for _, c := range p.Channels {
		g.columns = append(g.columns, c.Name)
		g.ranges = append(g.ranges, c.Range)
	}
	g.columns = append(g.columns, "event")
	return g
}

func (g *Harmonic) ID() string              { return g.id }
func (g *Harmonic) Interval() time.Duration { return g.interval }
func (g *Harmonic) Columns() []string       { return g.columns }
func (g *Harmonic) Ranges() []core.Range    { return g.ranges }

func (g *Harmonic) Generate(elapsed float64) (core.Reading, error) {
	trigger := g.p.EventTrigger.Seconds()
	duration := g.p.EventDuration.Seconds()
	event := duration > 0 && elapsed >= trigger && elapsed < trigger+duration

	values := make([]float64, 0, len(g.p.Channels))
	for _, c := range g.p.Channels {
		v := c.Offset + c.Slope*elapsed
		if c.Amp != 0 {
			v += c.Amp * math.Sin(2*math.Pi*elapsed/c.Period.Seconds()+c.Phase)
		}
		if event {
			v += c.EventSpike
		}
		values = append(values, c.Range.Clamp(v))
	}

	return core.Reading{
		Values: values,
		Flags:  []string{boolFlag(event)},
	}, nil
}
