package core

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("RealClock.Now() returned %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	start := time.Now()
	time.Sleep(10 * time.Millisecond)
	elapsed := clock.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("RealClock.Since() returned %v, expected >= 10ms", elapsed)
	}
}

func TestFakeClock_Advance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("FakeClock.Now() returned %v, expected %v", clock.Now(), start)
	}

	clock.Advance(1 * time.Hour)
	expected := start.Add(1 * time.Hour)

	if !clock.Now().Equal(expected) {
		t.Errorf("after Advance(1h), Now() returned %v, expected %v", clock.Now(), expected)
	}
}

func TestFakeClock_Since(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)

	if clock.Since(start) != 0 {
		t.Errorf("FakeClock.Since(start) = %v, expected 0", clock.Since(start))
	}

	clock.Advance(5 * time.Minute)
	if clock.Since(start) != 5*time.Minute {
		t.Errorf("after Advance(5m), Since(start) = %v, expected 5m", clock.Since(start))
	}
}
