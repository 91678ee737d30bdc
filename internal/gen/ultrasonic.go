package gen

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"plantsim/internal/core"
)

// UltrasonicParams configures an ultrasonic distance sensor (UB800 class)
// with an adjustable evaluation window [A1, A2], a response delay, and a set
// of switching modes that are rotated periodically.
type UltrasonicParams struct {
	A1 float64 `yaml:"a1"` // near window limit, mm
	A2 float64 `yaml:"a2"` // far window limit, mm

	SenseMinMM    float64       `yaml:"sense_min_mm"`
	SenseMaxMM    float64       `yaml:"sense_max_mm"`
	ResponseDelay time.Duration `yaml:"response_delay"`
	Modes         []int         `yaml:"modes"`

	RepeatAccuracyPct float64 `yaml:"repeat_accuracy_pct"` // of reading
	HysteresisPct     float64 `yaml:"hysteresis_pct"`      // of the set distance

	TempMinC    float64 `yaml:"temp_min_c"`
	TempMaxC    float64 `yaml:"temp_max_c"`
	TempRefC    float64 `yaml:"temp_ref_c"`
	TempDriftC  float64 `yaml:"temp_drift_c"`  // random-walk step stddev
	TempInflPct float64 `yaml:"temp_infl_pct"` // of full scale, over the temp span
}

func (p UltrasonicParams) Validate() error {
	if p.SenseMinMM >= p.SenseMaxMM {
		return fmt.Errorf("sense_min_mm %v must be below sense_max_mm %v", p.SenseMinMM, p.SenseMaxMM)
	}
	if p.A1 >= p.A2 {
		return fmt.Errorf("a1 %v must be below a2 %v", p.A1, p.A2)
	}
	if p.TempMinC >= p.TempMaxC {
		return fmt.Errorf("temp_min_c %v must be below temp_max_c %v", p.TempMinC, p.TempMaxC)
	}
	if p.ResponseDelay < 0 {
		return fmt.Errorf("response_delay must not be negative")
	}
	if len(p.Modes) == 0 {
		return fmt.Errorf("at least one mode is required")
	}
	for _, m := range p.Modes {
		if m < 1 || m > 5 {
			return fmt.Errorf("mode %d must be in 1..5", m)
		}
	}
	return nil
}

// modeRotateEvery is the number of rows after which the active switching
// mode advances to the next configured one.
const modeRotateEvery = 100

// Ultrasonic generates the measured distance (after noise, temperature drift
// and response delay), the ambient temperature, the switch output, and the
// active mode.
type Ultrasonic struct {
	id       string
	interval time.Duration
	p        UltrasonicParams
	rng      *rand.Rand

	buffer     []float64 // response-delay ring buffer
	bufNext    int
	bufFilled  int
	lastOutput int
	tempC      float64
	rows       int
	modeIndex  int
}

func NewUltrasonic(id string, interval time.Duration, seed int64, p UltrasonicParams) *Ultrasonic {
	size := 1
	if interval > 0 && p.ResponseDelay > interval {
		size = int(p.ResponseDelay / interval)
	}
	return &Ultrasonic{
		id:       id,
		interval: interval,
		p:        p,
		rng:      newRand(seed),
		buffer:   make([]float64, size),
		tempC:    p.TempRefC,
	}
}

func (g *Ultrasonic) ID() string              { return g.id }
func (g *Ultrasonic) Interval() time.Duration { return g.interval }

func (g *Ultrasonic) Columns() []string {
	return []string{"distance_mm", "temperature_c", "output", "mode"}
}

func (g *Ultrasonic) Ranges() []core.Range {
	return []core.Range{
		{Min: g.p.SenseMinMM, Max: g.p.SenseMaxMM},
		{Min: g.p.TempMinC, Max: g.p.TempMaxC},
	}
}

// delay pushes the latest raw distance and returns the value the sensor
// reports after its response delay: the oldest buffered value once the
// buffer has filled, the newest until then.
func (g *Ultrasonic) delay(raw float64) float64 {
	g.buffer[g.bufNext] = raw
	g.bufNext = (g.bufNext + 1) % len(g.buffer)
	if g.bufFilled < len(g.buffer) {
		g.bufFilled++
		return raw
	}
	return g.buffer[g.bufNext]
}

// evaluate runs the active switching mode against the delayed distance,
// applying the range hysteresis around A1/A2.
func (g *Ultrasonic) evaluate(mode int, d float64) int {
	p := g.p
	h1 := p.HysteresisPct * p.A1
	h2 := p.HysteresisPct * p.A2
	inWindow := d >= p.A1 && d <= p.A2
	inOuter := d >= p.A1-h1 && d <= p.A2+h2

	out := 0
	switch mode {
	case 1: // window, normally open
		if g.lastOutput == 0 {
			if inWindow {
				out = 1
			}
		} else if inOuter {
			out = 1
		}
	case 2: // window, normally closed
		if g.lastOutput == 1 {
			if !inWindow {
				out = 1
			}
		} else if !inOuter {
			out = 1
		}
	case 3: // near threshold at A2
		if g.lastOutput == 0 {
			if d <= p.A2 {
				out = 1
			}
		} else if d <= p.A2+h2 {
			out = 1
		}
	case 4: // far threshold at A1
		if g.lastOutput == 0 {
			if d >= p.A1 {
				out = 1
			}
		} else if d >= p.A1-h1 {
			out = 1
		}
	case 5: // plain threshold, no hysteresis
		if d <= p.A2 {
			out = 1
		}
	}
	return out
}

func (g *Ultrasonic) Generate(elapsed float64) (core.Reading, error) {
	p := g.p
	distRange := core.Range{Min: p.SenseMinMM, Max: p.SenseMaxMM}
	tempRange := core.Range{Min: p.TempMinC, Max: p.TempMaxC}

	noiseScale := p.A2 - p.A1
	if fs := p.SenseMaxMM - p.SenseMinMM; fs < noiseScale {
		noiseScale = fs
	}

	raw := p.SenseMinMM + g.rng.Float64()*(p.SenseMaxMM-p.SenseMinMM)
	raw += g.rng.NormFloat64() * noiseScale / 20
	if g.rng.Float64() < 0.02 {
		raw += (g.rng.Float64()*2 - 1) * noiseScale / 5
	}
	raw += (g.rng.Float64()*2 - 1) * p.RepeatAccuracyPct * raw
	raw = distRange.Clamp(raw)

	// Ambient temperature random walk and the resulting reading drift.
	g.tempC = tempRange.Clamp(g.tempC + g.rng.NormFloat64()*p.TempDriftC)
	perDeg := p.TempInflPct / (p.TempMaxC - p.TempMinC)
	raw = distRange.Clamp(raw + (g.tempC-p.TempRefC)*perDeg*(p.SenseMaxMM-p.SenseMinMM))

	delayed := g.delay(raw)

	mode := p.Modes[g.modeIndex]
	output := g.evaluate(mode, delayed)
	g.lastOutput = output

	g.rows++
	if g.rows%modeRotateEvery == 0 {
		g.modeIndex = (g.modeIndex + 1) % len(p.Modes)
	}

	return core.Reading{
		Values: []float64{delayed, g.tempC},
		Flags:  []string{boolFlag(output == 1), strconv.Itoa(mode)},
	}, nil
}
