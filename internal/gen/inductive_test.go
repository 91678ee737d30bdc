package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nbn40Params() InductiveParams {
	return InductiveParams{
		RatedDistanceMM: 40,
		HysteresisPct:   0.05,
		Switching:       "NO",
		CycleTime:       2 * time.Minute,
	}
}

func TestInductive_HysteresisStateMachine(t *testing.T) {
	g := NewInductive("PROX-01", time.Second, 1, nbn40Params())

	// Approaching: stays off until the target reaches Sn.
	assert.Equal(t, 0, g.step(50))
	assert.Equal(t, 0, g.step(41), "between thresholds while not sensing")
	assert.Equal(t, 1, g.step(40), "turn-on at Sn")
	assert.Equal(t, 1, g.step(10))

	// Retreating: holds through the dead band, releases past Sn*(1+h).
	assert.Equal(t, 1, g.step(41), "between thresholds while sensing")
	assert.Equal(t, 1, g.step(42), "exactly at turn-off still held")
	assert.Equal(t, 0, g.step(42.1), "released past turn-off")
	assert.Equal(t, 0, g.step(41))
}

func TestInductive_NoChatterAcrossSweep(t *testing.T) {
	g := NewInductive("PROX-01", time.Second, 1, nbn40Params())

	// One noiseless triangular sweep: the output must switch exactly twice.
	transitions := 0
	prev := -1
	for i := 0; i < 120; i++ {
		r, err := g.Generate(float64(i))
		require.NoError(t, err)
		out := 0
		if r.Flags[0] == "1" {
			out = 1
		}
		if prev >= 0 && out != prev {
			transitions++
		}
		prev = out
	}
	assert.Equal(t, 2, transitions)
}

func TestInductive_NormallyClosed(t *testing.T) {
	p := nbn40Params()
	p.Switching = "NC"
	g := NewInductive("PROX-01", time.Second, 1, p)

	assert.Equal(t, 1, g.step(50), "NC output high with no target")
	assert.Equal(t, 0, g.step(10), "NC output low when sensing")
}

func TestInductive_ColumnsAndRange(t *testing.T) {
	g := NewInductive("PROX-01", time.Second, 1, nbn40Params())
	assert.Equal(t, []string{"distance_to_target_mm", "output_state", "switching_function"}, g.Columns())

	r, err := g.Generate(37)
	require.NoError(t, err)
	assert.Equal(t, "NO", r.Flags[1])
	assert.True(t, g.Ranges()[0].Contains(r.Values[0]))
}

func TestInductive_RangeInvariantUnderNoise(t *testing.T) {
	p := nbn40Params()
	p.NoiseStd = 20
	g := NewInductive("PROX-01", time.Second, 9, p)

	for i := 0; i < 2000; i++ {
		r, err := g.Generate(float64(i))
		require.NoError(t, err)
		assert.True(t, g.Ranges()[0].Contains(r.Values[0]), "tick %d: %v", i, r.Values[0])
	}
}

func TestInductiveParams_Validate(t *testing.T) {
	require.NoError(t, nbn40Params().Validate())

	bad := nbn40Params()
	bad.Switching = "PNP"
	assert.Error(t, bad.Validate())

	bad = nbn40Params()
	bad.RatedDistanceMM = 0
	assert.Error(t, bad.Validate())

	bad = nbn40Params()
	bad.CycleTime = 0
	assert.Error(t, bad.Validate())
}
