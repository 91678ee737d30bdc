package gen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"plantsim/internal/core"
)

// TouchSwitchParams configures a belt-misalignment touch switch (TS2V4AI
// class). The switch measures the force a wandering belt edge applies to its
// roller; sustained misalignment heats the contact until a one-shot thermal
// fuse blows and latches the output open.
type TouchSwitchParams struct {
	StartHour       float64 `yaml:"start_hour"`       // simulated hour of day at elapsed zero
	ProductionStart float64 `yaml:"production_start"` // hour, inclusive
	ProductionEnd   float64 `yaml:"production_end"`   // hour, inclusive

	ForceMin     float64 `yaml:"force_min"`      // normal production contact force, N
	ForceMax     float64 `yaml:"force_max"`
	IdleForceMin float64 `yaml:"idle_force_min"` // off-hours residual force, N
	IdleForceMax float64 `yaml:"idle_force_max"`

	MisalignProb     float64 `yaml:"misalign_prob"`      // per tick while producing
	MisalignForceMin float64 `yaml:"misalign_force_min"`
	MisalignForceMax float64 `yaml:"misalign_force_max"`

	AlarmThresholdN float64       `yaml:"alarm_threshold_n"` // force at or above which the switch trips
	FuseBlowAfter   time.Duration `yaml:"fuse_blow_after"`   // continuous alarm before the fuse blows
}

func (p TouchSwitchParams) Validate() error {
	if p.StartHour < 0 || p.StartHour >= 24 {
		return fmt.Errorf("start_hour %v must be in [0, 24)", p.StartHour)
	}
	if p.ProductionStart < 0 || p.ProductionEnd > 24 || p.ProductionStart > p.ProductionEnd {
		return fmt.Errorf("production hours [%v, %v] must be an ordered range within [0, 24]", p.ProductionStart, p.ProductionEnd)
	}
	if p.ForceMin > p.ForceMax || p.IdleForceMin > p.IdleForceMax || p.MisalignForceMin > p.MisalignForceMax {
		return fmt.Errorf("force bands must have min <= max")
	}
	if p.MisalignProb < 0 || p.MisalignProb > 1 {
		return fmt.Errorf("misalign_prob %v must be in [0, 1]", p.MisalignProb)
	}
	if p.AlarmThresholdN <= 0 {
		return fmt.Errorf("alarm_threshold_n %v must be positive", p.AlarmThresholdN)
	}
	if p.FuseBlowAfter <= 0 {
		return fmt.Errorf("fuse_blow_after must be positive")
	}
	return nil
}

func (p TouchSwitchParams) forceRange() core.Range {
	return core.Range{Min: 0, Max: p.MisalignForceMax + 1}
}

// TouchSwitch generates the measured contact force plus the switch's
// alignment, relay, LED and thermal-fuse states. The fuse blows once the
// alarm has held continuously for the configured duration and never resets.
type TouchSwitch struct {
	id         string
	interval   time.Duration
	p          TouchSwitchParams
	rng        *rand.Rand
	alarmSince float64 // elapsed seconds when the current alarm began, -1 when clear
	fuseBlown  bool
}

func NewTouchSwitch(id string, interval time.Duration, seed int64, p TouchSwitchParams) *TouchSwitch {
	return &TouchSwitch{id: id, interval: interval, p: p, rng: newRand(seed), alarmSince: -1}
}

func (g *TouchSwitch) ID() string              { return g.id }
func (g *TouchSwitch) Interval() time.Duration { return g.interval }

func (g *TouchSwitch) Columns() []string {
	return []string{
		"measured_force_n",
		"alignment_status", "relay_status", "led_status",
		"thermal_fuse_blown", "operational_mode", "alerts",
	}
}

func (g *TouchSwitch) Ranges() []core.Range { return []core.Range{g.p.forceRange()} }

func (g *TouchSwitch) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// step advances the thermal-fuse state machine for one tick. Entering alarm
// records its start; leaving alarm clears it; holding alarm for
// fuse_blow_after seconds blows the fuse, which is permanent.
func (g *TouchSwitch) step(elapsed float64, misaligned bool) {
	if g.fuseBlown {
		return
	}
	if !misaligned {
		g.alarmSince = -1
		return
	}
	if g.alarmSince < 0 {
		g.alarmSince = elapsed
	}
	if elapsed-g.alarmSince >= g.p.FuseBlowAfter.Seconds() {
		g.fuseBlown = true
	}
}

func (g *TouchSwitch) Generate(elapsed float64) (core.Reading, error) {
	p := g.p

	hour := math.Mod(p.StartHour+elapsed/3600, 24)
	producing := hour >= p.ProductionStart && hour <= p.ProductionEnd

	var force float64
	switch {
	case producing && g.rng.Float64() < p.MisalignProb:
		force = g.uniform(p.MisalignForceMin, p.MisalignForceMax)
	case producing:
		force = g.uniform(p.ForceMin, p.ForceMax)
	default:
		force = g.uniform(p.IdleForceMin, p.IdleForceMax)
	}
	force = p.forceRange().Clamp(force)

	misaligned := force >= p.AlarmThresholdN
	g.step(elapsed, misaligned)

	// Output truth table: a blown fuse opens the circuit for good; an
	// active misalignment opens it for the duration of the alarm.
	relay, led := true, true
	alert := "NORMAL"
	switch {
	case g.fuseBlown:
		relay, led = false, false
		alert = "THERMAL_FUSE_BLOWN"
	case misaligned:
		relay, led = false, false
		alert = "MISALIGNMENT"
	}

	return core.Reading{
		Values: []float64{force},
		Flags: []string{
			boolFlag(misaligned), boolFlag(relay), boolFlag(led),
			boolFlag(g.fuseBlown), boolFlag(producing), alert,
		},
	}, nil
}
