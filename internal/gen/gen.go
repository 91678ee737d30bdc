// Package gen implements the signal generators for the simulated
// instruments. Every generator computes its channels from elapsed simulated
// time using a piecewise formula (baseline, event, recovery), adds noise
// where the datasheet specifies an accuracy figure, and clamps each numeric
// channel to its declared physical range as the final step.
//
// Generators own their random source explicitly; there is no package-level
// RNG state. A seed of 0 selects a time-derived seed.
package gen

import (
	"math/rand"
	"time"
)

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// boolFlag renders a binary state column.
func boolFlag(on bool) string {
	if on {
		return "1"
	}
	return "0"
}
