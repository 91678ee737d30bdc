package gen

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"time"

	"plantsim/internal/core"
)

// Bearing defect frequency bands reported by a smart idler roller.
var defectKinds = []string{"BPFI", "BPFO", "BSF", "FTF"}

// IdlerParams configures a smart idler roller: rotation derived from belt
// speed, bearing temperatures coupled to RPM, vibration summary bands, and
// probabilistic time-boxed bearing-defect events.
type IdlerParams struct {
	BeltSpeedMps     float64 `yaml:"belt_speed_mps"`
	RollerDiameterMM float64 `yaml:"roller_diameter_mm"`

	RPMRange  core.Range `yaml:"rpm_range"`
	TempRange core.Range `yaml:"temp_range"`
	VibRange  core.Range `yaml:"vib_range"`
	BandRange core.Range `yaml:"band_range"`

	TempBaseC  float64 `yaml:"temp_base_c"`  // bearing temp at the low end of rpm_range
	TempPerRPM float64 `yaml:"temp_per_rpm"` // °C per rpm above rpm_range.min
	TempStd    float64 `yaml:"temp_std"`

	VibBaseMin  float64 `yaml:"vib_base_min"` // healthy rms band, g
	VibBaseMax  float64 `yaml:"vib_base_max"`
	BandBaseMin float64 `yaml:"band_base_min"` // healthy defect-frequency band
	BandBaseMax float64 `yaml:"band_base_max"`

	AlertTempC     float64 `yaml:"alert_temp_c"`
	AlertVibRMS    float64 `yaml:"alert_vib_rms"`
	AlertRPMDevPct float64 `yaml:"alert_rpm_dev_pct"`

	Defects InjectorParams `yaml:"defects"`
}

func (p IdlerParams) Validate() error {
	if p.BeltSpeedMps <= 0 {
		return fmt.Errorf("belt_speed_mps %v must be positive", p.BeltSpeedMps)
	}
	if p.RollerDiameterMM <= 0 {
		return fmt.Errorf("roller_diameter_mm %v must be positive", p.RollerDiameterMM)
	}
	for name, r := range map[string]core.Range{
		"rpm_range": p.RPMRange, "temp_range": p.TempRange,
		"vib_range": p.VibRange, "band_range": p.BandRange,
	} {
		if !r.Valid() {
			return fmt.Errorf("%s: min %v must be below max %v", name, r.Min, r.Max)
		}
	}
	if p.VibBaseMin > p.VibBaseMax || p.BandBaseMin > p.BandBaseMax {
		return fmt.Errorf("base bands must have min <= max")
	}
	if p.Defects.Probability < 0 || p.Defects.Probability > 1 {
		return fmt.Errorf("defects.probability %v must be in [0, 1]", p.Defects.Probability)
	}
	if p.Defects.Probability > 0 && p.Defects.Duration <= 0 {
		return fmt.Errorf("defects.duration must be positive when defects are enabled")
	}
	if p.Defects.MinMagnitude > p.Defects.MaxMagnitude {
		return fmt.Errorf("defects magnitude range must have min <= max")
	}
	for _, k := range p.Defects.Kinds {
		if !slices.Contains(defectKinds, k) {
			return fmt.Errorf("defects.kinds: unknown bearing band %q, want one of %v", k, defectKinds)
		}
	}
	return nil
}

// SmartIdler generates rotation count, RPM, bearing temperatures, vibration
// summary bands and an alert string for one instrumented idler roller.
type SmartIdler struct {
	id       string
	interval time.Duration
	p        IdlerParams
	rng      *rand.Rand
	injector *Injector
	rotation float64
	onDefect func(Event)
}

func NewSmartIdler(id string, interval time.Duration, seed int64, p IdlerParams) *SmartIdler {
	rng := newRand(seed)
	inj := p.Defects
	if len(inj.Kinds) == 0 {
		inj.Kinds = defectKinds
	}
	return &SmartIdler{
		id:       id,
		interval: interval,
		p:        p,
		rng:      rng,
		injector: NewInjector(inj, rng),
	}
}

// OnDefect registers a callback invoked when a new defect event triggers.
func (g *SmartIdler) OnDefect(fn func(Event)) { g.onDefect = fn }

func (g *SmartIdler) ID() string              { return g.id }
func (g *SmartIdler) Interval() time.Duration { return g.interval }

func (g *SmartIdler) Columns() []string {
	return []string{
		"rotation_count", "rpm", "temp_left_c", "temp_right_c",
		"vibration_rms_g", "bpfi", "bpfo", "bsf", "ftf",
		"alerts",
	}
}

func (g *SmartIdler) Ranges() []core.Range {
	p := g.p
	return []core.Range{
		core.Unbounded, p.RPMRange, p.TempRange, p.TempRange,
		p.VibRange, p.BandRange, p.BandRange, p.BandRange, p.BandRange,
	}
}

func (g *SmartIdler) expectedRPM() float64 {
	circumference := math.Pi * g.p.RollerDiameterMM / 1000 // meters
	return g.p.BeltSpeedMps * 60 / circumference
}

func (g *SmartIdler) bearingTemp(rpm float64) float64 {
	t := g.p.TempBaseC + g.rng.NormFloat64()*g.p.TempStd
	t += (rpm - g.p.RPMRange.Min) * g.p.TempPerRPM
	return g.p.TempRange.Clamp(t)
}

func (g *SmartIdler) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *SmartIdler) Generate(elapsed float64) (core.Reading, error) {
	p := g.p

	expected := g.expectedRPM()
	rpm := p.RPMRange.Clamp(expected * g.uniform(0.95, 1.05))
	g.rotation += rpm * g.interval.Seconds() / 60

	tempLeft := g.bearingTemp(rpm)
	tempRight := g.bearingTemp(rpm)

	rms := g.uniform(p.VibBaseMin, p.VibBaseMax)
	bands := make(map[string]float64, len(defectKinds))
	for _, k := range defectKinds {
		bands[k] = g.uniform(p.BandBaseMin, p.BandBaseMax)
	}

	if e, ok := g.injector.Step(elapsed); ok && g.onDefect != nil {
		g.onDefect(e)
	}
	if e, ok := g.injector.Active(elapsed); ok {
		bands[e.Kind] *= e.Magnitude
		rms *= 3
	}
	rms = p.VibRange.Clamp(rms)
	for _, k := range defectKinds {
		bands[k] = p.BandRange.Clamp(bands[k])
	}

	var alerts []string
	if tempLeft > p.AlertTempC {
		alerts = append(alerts, "TEMP_LEFT_HIGH")
	}
	if tempRight > p.AlertTempC {
		alerts = append(alerts, "TEMP_RIGHT_HIGH")
	}
	if rms > p.AlertVibRMS {
		alerts = append(alerts, "VIBRATION_HIGH")
	}
	if math.Abs(rpm-expected)/expected*100 > p.AlertRPMDevPct {
		alerts = append(alerts, "RPM_DEVIATION")
	}
	alertCol := "NORMAL"
	if len(alerts) > 0 {
		alertCol = strings.Join(alerts, ";")
	}

	return core.Reading{
		Values: []float64{
			math.Floor(g.rotation), rpm, tempLeft, tempRight,
			rms, bands["BPFI"], bands["BPFO"], bands["BSF"], bands["FTF"],
		},
		Flags: []string{alertCol},
	}, nil
}
