package gen

import (
	"fmt"
	"math/rand"
	"time"

	"plantsim/internal/core"
)

// HeatParams configures an infrared transit heat detector watching conveyed
// material for buried hot spots (Patol 5450 class). The sensitivity levels
// of the real unit are simplified to a single temperature threshold.
type HeatParams struct {
	AmbientC        float64 `yaml:"ambient_c"`
	AlarmThresholdC float64 `yaml:"alarm_threshold_c"`
	HotSpotMaxC     float64 `yaml:"hot_spot_max_c"`
	HotSpotProb     float64 `yaml:"hot_spot_prob"` // per tick
	FaultProb       float64 `yaml:"fault_prob"`    // per tick, toggles fault state
	NoiseStd        float64 `yaml:"noise_std"`     // ambient fluctuation stddev
}

func (p HeatParams) Validate() error {
	if p.HotSpotProb < 0 || p.HotSpotProb > 1 {
		return fmt.Errorf("hot_spot_prob %v must be in [0, 1]", p.HotSpotProb)
	}
	if p.FaultProb < 0 || p.FaultProb > 1 {
		return fmt.Errorf("fault_prob %v must be in [0, 1]", p.FaultProb)
	}
	if p.HotSpotMaxC <= p.AlarmThresholdC {
		return fmt.Errorf("hot_spot_max_c %v must exceed alarm_threshold_c %v", p.HotSpotMaxC, p.AlarmThresholdC)
	}
	if p.NoiseStd < 0 {
		return fmt.Errorf("noise_std must not be negative")
	}
	return nil
}

// range covers the ambient fluctuation band up to the hottest simulated spot.
func (p HeatParams) outputRange() core.Range {
	return core.Range{Min: p.AmbientC - 10, Max: p.HotSpotMaxC}
}

// HeatDetect generates the simulated material temperature together with the
// detector's alarm, fault and LED states. The alarm is a memoryless function
// of the current temperature; the fault state toggles and persists.
type HeatDetect struct {
	id       string
	interval time.Duration
	p        HeatParams
	rng      *rand.Rand
	fault    bool
	onAlarm  func(tempC float64) // optional hook for logging hot spots
}

func NewHeatDetect(id string, interval time.Duration, seed int64, p HeatParams) *HeatDetect {
	return &HeatDetect{id: id, interval: interval, p: p, rng: newRand(seed)}
}

// OnHotSpot registers a callback invoked when a hot spot is injected.
func (g *HeatDetect) OnHotSpot(fn func(tempC float64)) { g.onAlarm = fn }

func (g *HeatDetect) ID() string              { return g.id }
func (g *HeatDetect) Interval() time.Duration { return g.interval }

func (g *HeatDetect) Columns() []string {
	return []string{
		"material_temp_c",
		"fire_alarm_state", "fault_state",
		"green_led_normal", "red_led_trip",
	}
}

func (g *HeatDetect) Ranges() []core.Range { return []core.Range{g.p.outputRange()} }

func (g *HeatDetect) Generate(elapsed float64) (core.Reading, error) {
	p := g.p

	var temp float64
	if g.rng.Float64() < p.HotSpotProb {
		temp = p.AlarmThresholdC + g.rng.Float64()*(p.HotSpotMaxC-p.AlarmThresholdC)
		if g.onAlarm != nil {
			g.onAlarm(temp)
		}
	} else {
		temp = p.AmbientC + g.rng.NormFloat64()*p.NoiseStd
		// Normal material stays in a narrow band around ambient.
		temp = (core.Range{Min: p.AmbientC - 10, Max: p.AmbientC + 20}).Clamp(temp)
	}

	if g.rng.Float64() < p.FaultProb {
		g.fault = !g.fault
	}

	alarm := temp >= p.AlarmThresholdC

	// LED truth table: fault suppresses both indicators, alarm lights the
	// red trip LED, normal operation lights the green LED.
	greenLED := !g.fault && !alarm
	redLED := !g.fault && alarm

	temp = p.outputRange().Clamp(temp)

	return core.Reading{
		Values: []float64{temp},
		Flags: []string{
			boolFlag(alarm), boolFlag(g.fault),
			boolFlag(greenLED), boolFlag(redLED),
		},
	}, nil
}
