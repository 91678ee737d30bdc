package gen

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantsim/internal/core"
)

func idlerParams() IdlerParams {
	return IdlerParams{
		BeltSpeedMps:     2.5,
		RollerDiameterMM: 159,
		RPMRange:         core.Range{Min: 0, Max: 600},
		TempRange:        core.Range{Min: -20, Max: 120},
		VibRange:         core.Range{Min: 0, Max: 20},
		BandRange:        core.Range{Min: 0, Max: 10},
		TempBaseC:        35,
		VibBaseMin:       0.4,
		VibBaseMax:       0.6,
		BandBaseMin:      0.05,
		BandBaseMax:      0.15,
		AlertTempC:       80,
		AlertVibRMS:      2.5,
		AlertRPMDevPct:   10,
	}
}

func TestSmartIdler_ExpectedRPM(t *testing.T) {
	g := NewSmartIdler("IDL-01", time.Second, 1, idlerParams())

	// 2.5 m/s over a 159mm roller: 2.5*60 / (pi*0.159) rpm.
	want := 2.5 * 60 / (math.Pi * 0.159)
	assert.InDelta(t, want, g.expectedRPM(), 1e-9)

	r, err := g.Generate(0)
	require.NoError(t, err)
	assert.InDelta(t, want, r.Values[1], want*0.05+1e-9)
}

func TestSmartIdler_RotationAccumulates(t *testing.T) {
	g := NewSmartIdler("IDL-01", time.Second, 1, idlerParams())

	var last float64
	for i := 0; i < 60; i++ {
		r, err := g.Generate(float64(i))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.Values[0], last, "rotation count must not decrease")
		last = r.Values[0]
	}
	// Roughly one count per revolution: ~300 rpm for a minute.
	assert.InDelta(t, 300, last, 30)
}

func TestSmartIdler_Healthy(t *testing.T) {
	g := NewSmartIdler("IDL-01", time.Second, 1, idlerParams())

	for i := 0; i < 200; i++ {
		r, err := g.Generate(float64(i))
		require.NoError(t, err)
		assert.Equal(t, "NORMAL", r.Flags[0], "tick %d", i)
		for col, rng := range g.Ranges() {
			assert.True(t, rng.Contains(r.Values[col]), "tick %d col %d: %v", i, col, r.Values[col])
		}
	}
}

func TestSmartIdler_DefectRaisesBandAndVibration(t *testing.T) {
	p := idlerParams()
	p.BandBaseMin, p.BandBaseMax = 0.1, 0.1
	p.VibBaseMin, p.VibBaseMax = 0.5, 0.5
	p.AlertVibRMS = 1.0
	g := NewSmartIdler("IDL-01", time.Second, 1, p)
	g.injector.inject(Event{Kind: "BPFI", Start: 100, Duration: 60, Magnitude: 10})

	r, err := g.Generate(120)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.Values[5], 1e-9, "bpfi band scaled by the defect magnitude")
	assert.InDelta(t, 0.1, r.Values[6], 1e-9, "bpfo band unaffected")
	assert.InDelta(t, 1.5, r.Values[4], 1e-9, "rms tripled under an active defect")
	assert.Contains(t, strings.Split(r.Flags[0], ";"), "VIBRATION_HIGH")

	// Past the defect window everything returns to the healthy band.
	r, err = g.Generate(160)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, r.Values[5], 1e-9)
	assert.Equal(t, "NORMAL", r.Flags[0])
}

func TestSmartIdler_TemperatureAlert(t *testing.T) {
	p := idlerParams()
	p.TempBaseC = 90 // above the alert threshold
	g := NewSmartIdler("IDL-01", time.Second, 1, p)

	r, err := g.Generate(0)
	require.NoError(t, err)
	alerts := strings.Split(r.Flags[0], ";")
	assert.Contains(t, alerts, "TEMP_LEFT_HIGH")
	assert.Contains(t, alerts, "TEMP_RIGHT_HIGH")
}

func TestSmartIdler_OnDefectHook(t *testing.T) {
	p := idlerParams()
	p.Defects = InjectorParams{
		Probability:  1,
		Duration:     30 * time.Second,
		MinMagnitude: 3,
		MaxMagnitude: 8,
	}
	g := NewSmartIdler("IDL-01", time.Second, 1, p)

	var seen []Event
	g.OnDefect(func(e Event) { seen = append(seen, e) })

	_, err := g.Generate(0)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Contains(t, defectKinds, seen[0].Kind)
}

func TestIdlerParams_Validate(t *testing.T) {
	require.NoError(t, idlerParams().Validate())

	bad := idlerParams()
	bad.BeltSpeedMps = 0
	assert.Error(t, bad.Validate())

	bad = idlerParams()
	bad.RPMRange = core.Range{Min: 5, Max: 5}
	assert.Error(t, bad.Validate())

	bad = idlerParams()
	bad.Defects = InjectorParams{Probability: 0.5}
	assert.Error(t, bad.Validate())
}

func TestIdlerParams_Validate_UnknownDefectKind(t *testing.T) {
	p := idlerParams()
	p.Defects = InjectorParams{
		Probability:  0.1,
		Duration:     time.Minute,
		MinMagnitude: 3,
		MaxMagnitude: 8,
		Kinds:        []string{"BPFI", "XYZ"},
	}
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XYZ")

	p.Defects.Kinds = []string{"BPFO", "FTF"}
	assert.NoError(t, p.Validate())
}
