package gen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"plantsim/internal/core"
)

// LoadCellParams configures a strain-gauge load cell (SGLC7050 class) under
// an impact bed. Load follows a trapezoid over the working day: ramp up to
// the steady production level, hold, ramp down, idle overnight. Material
// drops hit the bed at a fixed cadence, and a slow daily temperature swing
// drifts the mV/V gain.
type LoadCellParams struct {
	CapacityKN float64 `yaml:"capacity_kn"`
	StartHour  float64 `yaml:"start_hour"`  // simulated hour of day at elapsed zero

	RampUpStart   float64 `yaml:"ramp_up_start"`  // hours
	RampUpEnd     float64 `yaml:"ramp_up_end"`
	RampDownStart float64 `yaml:"ramp_down_start"`
	RampDownEnd   float64 `yaml:"ramp_down_end"`
	LoadFactor    float64 `yaml:"load_factor"`    // steady load as a fraction of capacity
	IdleFactor    float64 `yaml:"idle_factor"`
	NoiseStdFrac  float64 `yaml:"noise_std_frac"` // load noise stddev, fraction of capacity

	ImpactInterval time.Duration `yaml:"impact_interval"`
	ImpactDuration time.Duration `yaml:"impact_duration"`
	ImpactMinFrac  float64       `yaml:"impact_min_frac"` // impact load, fraction of capacity
	ImpactMaxFrac  float64       `yaml:"impact_max_frac"`

	RatedOutputMvV float64 `yaml:"rated_output_mv_v"`
	ExcitationV    float64 `yaml:"excitation_v"`
	TempNomC       float64 `yaml:"temp_nom_c"`
	TempSwingC     float64 `yaml:"temp_swing_c"`
	TempEffectPerC float64 `yaml:"temp_effect_per_c"`
}

func (p LoadCellParams) Validate() error {
	if p.CapacityKN <= 0 {
		return fmt.Errorf("capacity_kn %v must be positive", p.CapacityKN)
	}
	if p.StartHour < 0 || p.StartHour >= 24 {
		return fmt.Errorf("start_hour %v must be in [0, 24)", p.StartHour)
	}
	hours := []float64{p.RampUpStart, p.RampUpEnd, p.RampDownStart, p.RampDownEnd}
	for i := 1; i < len(hours); i++ {
		if hours[i] < hours[i-1] {
			return fmt.Errorf("ramp hours %v must not decrease", hours)
		}
	}
	if hours[0] < 0 || hours[3] > 24 {
		return fmt.Errorf("ramp hours %v must lie within [0, 24]", hours)
	}
	if p.LoadFactor <= 0 || p.IdleFactor < 0 {
		return fmt.Errorf("load_factor must be positive and idle_factor non-negative")
	}
	if p.NoiseStdFrac < 0 {
		return fmt.Errorf("noise_std_frac must not be negative")
	}
	if p.ImpactInterval > 0 {
		if p.ImpactDuration <= 0 || p.ImpactDuration >= p.ImpactInterval {
			return fmt.Errorf("impact_duration %v must be positive and shorter than impact_interval %v", p.ImpactDuration, p.ImpactInterval)
		}
		if p.ImpactMinFrac > p.ImpactMaxFrac {
			return fmt.Errorf("impact fraction range must have min <= max")
		}
	}
	if p.RatedOutputMvV <= 0 || p.ExcitationV <= 0 {
		return fmt.Errorf("rated_output_mv_v and excitation_v must be positive")
	}
	return nil
}

// baseOverloadFrac caps the trapezoid load; impacts on top of a saturated
// bed are what trip the OVERLOAD alert.
const baseOverloadFrac = 1.5

func (p LoadCellParams) loadRange() core.Range {
	return core.Range{Min: 0, Max: p.CapacityKN * 2}
}

// LoadCell generates applied load, the bridge output in mV/V, excitation,
// bed temperature, an impact marker and an alert string.
type LoadCell struct {
	id       string
	interval time.Duration
	p        LoadCellParams
	rng      *rand.Rand
}

func NewLoadCell(id string, interval time.Duration, seed int64, p LoadCellParams) *LoadCell {
	return &LoadCell{id: id, interval: interval, p: p, rng: newRand(seed)}
}

func (g *LoadCell) ID() string              { return g.id }
func (g *LoadCell) Interval() time.Duration { return g.interval }

func (g *LoadCell) Columns() []string {
	return []string{
		"applied_load_kn", "mv_per_v", "excitation_v", "temperature_c",
		"impact_event", "alerts",
	}
}

func (g *LoadCell) Ranges() []core.Range {
	p := g.p
	return []core.Range{
		p.loadRange(),
		core.Unbounded,
		{Min: 0, Max: p.ExcitationV},
		{Min: p.TempNomC - p.TempSwingC, Max: p.TempNomC + p.TempSwingC},
	}
}

// baseLoad evaluates the daily trapezoid at the given hour of day.
func (g *LoadCell) baseLoad(hour float64) float64 {
	p := g.p
	steady := p.CapacityKN * p.LoadFactor
	switch {
	case hour >= p.RampUpStart && hour < p.RampUpEnd:
		return steady * (hour - p.RampUpStart) / (p.RampUpEnd - p.RampUpStart)
	case hour >= p.RampUpEnd && hour < p.RampDownStart:
		return steady
	case hour >= p.RampDownStart && hour < p.RampDownEnd:
		return steady * (1 - (hour-p.RampDownStart)/(p.RampDownEnd-p.RampDownStart))
	default:
		return p.CapacityKN * p.IdleFactor
	}
}

func (g *LoadCell) Generate(elapsed float64) (core.Reading, error) {
	p := g.p

	daySeconds := math.Mod(p.StartHour*3600+elapsed, 24*3600)
	hour := daySeconds / 3600

	base := g.baseLoad(hour)
	if p.NoiseStdFrac > 0 {
		base += g.rng.NormFloat64() * p.CapacityKN * p.NoiseStdFrac
	}
	base = (core.Range{Min: 0, Max: p.CapacityKN * baseOverloadFrac}).Clamp(base)

	impact := false
	var impactLoad float64
	if p.ImpactInterval > 0 && math.Mod(daySeconds, p.ImpactInterval.Seconds()) < p.ImpactDuration.Seconds() {
		impact = true
		impactLoad = (p.ImpactMinFrac + g.rng.Float64()*(p.ImpactMaxFrac-p.ImpactMinFrac)) * p.CapacityKN
	}
	total := base + impactLoad

	temp := p.TempNomC + p.TempSwingC*math.Sin(2*math.Pi*daySeconds/(24*3600))

	mvPerV := total / p.CapacityKN * p.RatedOutputMvV
	mvPerV *= 1 + p.TempEffectPerC*(temp-p.TempNomC)

	alert := "NORMAL"
	switch {
	case total > p.CapacityKN*baseOverloadFrac:
		alert = "OVERLOAD"
	case impact:
		alert = "IMPACT"
	}
	total = p.loadRange().Clamp(total)

	return core.Reading{
		Values: []float64{total, mvPerV, p.ExcitationV, temp},
		Flags:  []string{boolFlag(impact), alert},
	}, nil
}
