package gen

import (
	"math/rand"
	"time"
)

// Event is a time-boxed perturbation applied to a baseline signal, simulating
// an abnormal physical occurrence such as a bearing defect.
type Event struct {
	Kind      string
	Start     float64 // elapsed seconds at trigger
	Duration  float64 // seconds
	Magnitude float64 // peak perturbation, generator-specific units
}

// Expired reports whether the event no longer affects readings at the given
// elapsed time. An event starting at T with duration D affects [T, T+D).
func (e Event) Expired(elapsed float64) bool {
	return elapsed >= e.Start+e.Duration
}

// InjectorParams configures probabilistic fault injection.
type InjectorParams struct {
	Probability  float64       `yaml:"probability"`   // trigger chance per tick
	Duration     time.Duration `yaml:"duration"`      // lifetime of one event
	MinMagnitude float64       `yaml:"min_magnitude"` // uniform magnitude range
	MaxMagnitude float64       `yaml:"max_magnitude"`
	Kinds        []string      `yaml:"kinds"` // candidate event kinds
}

// Injector maintains the list of currently active injected events for one
// generator. Not safe for concurrent use; each generator owns its own.
type Injector struct {
	p      InjectorParams
	rng    *rand.Rand
	active []Event
}

func NewInjector(p InjectorParams, rng *rand.Rand) *Injector {
	return &Injector{p: p, rng: rng}
}

// Step draws against the configured probability and, on trigger, records a
// new active event starting at the given elapsed time. The new event, if
// any, is returned so callers can log it.
func (j *Injector) Step(elapsed float64) (Event, bool) {
	if j.p.Probability <= 0 || j.rng.Float64() >= j.p.Probability {
		return Event{}, false
	}
	kind := ""
	if len(j.p.Kinds) > 0 {
		kind = j.p.Kinds[j.rng.Intn(len(j.p.Kinds))]
	}
	e := Event{
		Kind:      kind,
		Start:     elapsed,
		Duration:  j.p.Duration.Seconds(),
		Magnitude: j.p.MinMagnitude + j.rng.Float64()*(j.p.MaxMagnitude-j.p.MinMagnitude),
	}
	j.active = append(j.active, e)
	return e, true
}

// Active drops expired events and returns the strongest currently active
// one. The reading is perturbed by at most one event per tick.
func (j *Injector) Active(elapsed float64) (Event, bool) {
	kept := j.active[:0]
	for _, e := range j.active {
		if !e.Expired(elapsed) {
			kept = append(kept, e)
		}
	}
	j.active = kept

	found := false
	var strongest Event
	for _, e := range j.active {
		if e.Start <= elapsed && (!found || e.Magnitude > strongest.Magnitude) {
			strongest = e
			found = true
		}
	}
	return strongest, found
}

// inject adds a specific event, bypassing the probability draw. Used by tests
// to exercise deterministic windows.
func (j *Injector) inject(e Event) {
	j.active = append(j.active, e)
}
