package gen

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ub800Params() UltrasonicParams {
	return UltrasonicParams{
		A1:            600,
		A2:            4000,
		SenseMinMM:    60,
		SenseMaxMM:    6000,
		ResponseDelay: 195 * time.Millisecond,
		Modes:         []int{1, 2, 3, 4, 5},
		HysteresisPct: 0.01,
		TempMinC:      -25,
		TempMaxC:      70,
		TempRefC:      20,
		TempDriftC:    0.1,
		TempInflPct:   0.002,
	}
}

func TestUltrasonic_DelayBuffer(t *testing.T) {
	p := ub800Params()
	p.ResponseDelay = 3 * time.Second
	g := NewUltrasonic("US-01", time.Second, 1, p)
	require.Len(t, g.buffer, 3)

	// Until the buffer fills the latest value passes straight through.
	assert.Equal(t, 100.0, g.delay(100))
	assert.Equal(t, 200.0, g.delay(200))
	assert.Equal(t, 300.0, g.delay(300))

	// Once filled the sensor reports the oldest buffered value.
	assert.Equal(t, 200.0, g.delay(400))
	assert.Equal(t, 300.0, g.delay(500))
}

func TestUltrasonic_DelayShorterThanInterval(t *testing.T) {
	g := NewUltrasonic("US-01", time.Second, 1, ub800Params())
	require.Len(t, g.buffer, 1)
	assert.Equal(t, 100.0, g.delay(100))
	assert.Equal(t, 200.0, g.delay(200))
}

func TestUltrasonic_WindowModeHysteresis(t *testing.T) {
	g := NewUltrasonic("US-01", time.Second, 1, ub800Params())
	// h1 = 6mm around A1, h2 = 40mm around A2.

	g.lastOutput = 0
	assert.Equal(t, 0, g.evaluate(1, 599), "just below the window while off")
	assert.Equal(t, 1, g.evaluate(1, 600), "enters at A1")
	assert.Equal(t, 1, g.evaluate(1, 4000), "far edge inside")
	assert.Equal(t, 0, g.evaluate(1, 4001), "past A2 while off")

	g.lastOutput = 1
	assert.Equal(t, 1, g.evaluate(1, 4030), "held inside the outer band")
	assert.Equal(t, 0, g.evaluate(1, 4041), "released past A2+h2")
}

func TestUltrasonic_ThresholdModes(t *testing.T) {
	g := NewUltrasonic("US-01", time.Second, 1, ub800Params())

	// Mode 3 switches below A2 with hysteresis above it.
	g.lastOutput = 0
	assert.Equal(t, 1, g.evaluate(3, 3999))
	assert.Equal(t, 0, g.evaluate(3, 4020))
	g.lastOutput = 1
	assert.Equal(t, 1, g.evaluate(3, 4020), "held within A2+h2")

	// Mode 4 switches above A1 with hysteresis below it.
	g.lastOutput = 0
	assert.Equal(t, 1, g.evaluate(4, 601))
	assert.Equal(t, 0, g.evaluate(4, 595))
	g.lastOutput = 1
	assert.Equal(t, 1, g.evaluate(4, 595), "held within A1-h1")

	// Mode 5 is a bare comparison with no memory.
	g.lastOutput = 0
	assert.Equal(t, 1, g.evaluate(5, 4000))
	assert.Equal(t, 0, g.evaluate(5, 4000.1))
}

func TestUltrasonic_ModeRotation(t *testing.T) {
	p := ub800Params()
	p.Modes = []int{1, 5}
	g := NewUltrasonic("US-01", time.Second, 1, p)

	for i := 0; i < modeRotateEvery; i++ {
		r, err := g.Generate(float64(i))
		require.NoError(t, err)
		assert.Equal(t, "1", r.Flags[1], "row %d", i)
	}
	r, err := g.Generate(float64(modeRotateEvery))
	require.NoError(t, err)
	assert.Equal(t, "5", r.Flags[1])
}

func TestUltrasonic_ReadingsStayInRange(t *testing.T) {
	g := NewUltrasonic("US-01", time.Second, 11, ub800Params())
	p := ub800Params()

	for i := 0; i < 2000; i++ {
		r, err := g.Generate(float64(i))
		require.NoError(t, err)
		assert.True(t, g.Ranges()[0].Contains(r.Values[0]), "tick %d distance %v", i, r.Values[0])
		assert.True(t, g.Ranges()[1].Contains(r.Values[1]), "tick %d temp %v", i, r.Values[1])

		mode, err := strconv.Atoi(r.Flags[1])
		require.NoError(t, err)
		assert.Contains(t, p.Modes, mode)
	}
}

func TestUltrasonicParams_Validate(t *testing.T) {
	require.NoError(t, ub800Params().Validate())

	bad := ub800Params()
	bad.A1, bad.A2 = 4000, 600
	assert.Error(t, bad.Validate())

	bad = ub800Params()
	bad.Modes = []int{6}
	assert.Error(t, bad.Validate())

	bad = ub800Params()
	bad.Modes = nil
	assert.Error(t, bad.Validate())

	bad = ub800Params()
	bad.ResponseDelay = -time.Second
	assert.Error(t, bad.Validate())
}
