package gen

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantsim/internal/core"
)

func s20Params() PressureParams {
	return PressureParams{
		AmbientBar:   1,
		NominalBar:   40,
		RampTime:     5 * time.Minute,
		StableTime:   10 * time.Minute,
		SpikeTime:    3 * time.Minute,
		CoolTime:     7 * time.Minute,
		DitherAmpBar: 1,
		DitherPeriod: time.Minute,
		SpikeBaseBar: 250,
		SpikeAmpBar:  80,
		DecayRate:    0.05,
		Range:        core.Range{Min: 0, Max: 1600},
	}
}

func TestPressureCycle_Phases(t *testing.T) {
	g := NewPressureCycle("S20-01", 30*time.Second, s20Params())

	// Ramp: halfway up at half the ramp time.
	r, err := g.Generate(150)
	require.NoError(t, err)
	assert.InDelta(t, 1+(40-1)*0.5, r.Values[0], 1e-9)
	assert.Equal(t, "0", r.Flags[0])

	// Stable: nominal plus a bounded dither.
	r, err = g.Generate(600)
	require.NoError(t, err)
	assert.InDelta(t, 40, r.Values[0], 1.0+1e-9)
	assert.Equal(t, "0", r.Flags[0])

	// Spike phase: event flag raised, pressure well above nominal.
	r, err = g.Generate(16 * 60)
	require.NoError(t, err)
	assert.Equal(t, "1", r.Flags[0])
	assert.Greater(t, r.Values[0], 200.0)

	// Decay phase: exponential fall from the spike base.
	decayStart := (5 + 10 + 3) * 60.0
	r, err = g.Generate(decayStart + 60)
	require.NoError(t, err)
	assert.InDelta(t, 250*math.Exp(-0.05*60), r.Values[0], 1e-9)
	assert.Equal(t, "0", r.Flags[0])
}

func TestPressureCycle_Repeats(t *testing.T) {
	g := NewPressureCycle("S20-01", 30*time.Second, s20Params())
	cycle := (5 + 10 + 3 + 7) * 60.0

	a, err := g.Generate(150)
	require.NoError(t, err)
	b, err := g.Generate(150 + cycle)
	require.NoError(t, err)
	assert.Equal(t, a.Values[0], b.Values[0])
}

func TestPressureCycle_RangeInvariant(t *testing.T) {
	p := s20Params()
	p.Range = core.Range{Min: 0, Max: 100} // tighter than the spike
	g := NewPressureCycle("S20-01", 30*time.Second, p)

	for i := 0; i < 3000; i++ {
		r, err := g.Generate(float64(i))
		require.NoError(t, err)
		assert.True(t, p.Range.Contains(r.Values[0]), "tick %d: %v", i, r.Values[0])
	}
}

func TestPressureParams_Validate(t *testing.T) {
	p := s20Params()
	require.NoError(t, p.Validate())

	bad := p
	bad.RampTime = 0
	assert.Error(t, bad.Validate())

	bad = p
	bad.DitherPeriod = 0
	assert.Error(t, bad.Validate())

	bad = p
	bad.Range = core.Range{Min: 5, Max: 1}
	assert.Error(t, bad.Validate())
}
