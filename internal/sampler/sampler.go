// Package sampler runs the paced tick loop that appends one CSV row per
// sample to a sensor's output file.
package sampler

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"plantsim/internal/core"
)

// Loop drives one generator, appending its readings to one CSV file. The
// signal shape is a function of the row count (elapsed = rows * interval)
// while row timestamps come from the clock, so a paused or slow run never
// distorts the waveform.
type Loop struct {
	Gen         core.Generator
	Path        string
	Clock       core.Clock    // nil means the real clock
	RunDuration time.Duration // zero means run until canceled
	Log         logrus.FieldLogger
	Counter     *atomic.Int64 // optional shared row counter

	rows int64
}

// Rows returns the number of rows written so far. Safe to call after Run
// returns; not synchronized against a running loop.
func (l *Loop) Rows() int64 { return l.rows }

// Run appends rows until the context is canceled, the configured run
// duration elapses, or an error occurs. Cancellation and duration cutoff are
// clean returns; every written row is flushed before the next tick starts.
func (l *Loop) Run(ctx context.Context) error {
	clock := l.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	log := l.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("sensor", l.Gen.ID())

	if dir := filepath.Dir(l.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sensor %s: creating output dir: %w", l.Gen.ID(), err)
		}
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("sensor %s: opening output file: %w", l.Gen.ID(), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	columns := l.Gen.Columns()

	// Header exactly once per file: only when the file is new or empty, so
	// re-runs append without repeating it.
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("sensor %s: stat output file: %w", l.Gen.ID(), err)
	}
	if info.Size() == 0 {
		header := append([]string{"timestamp", "sensor_id"}, columns...)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("sensor %s: writing header: %w", l.Gen.ID(), err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("sensor %s: writing header: %w", l.Gen.ID(), err)
		}
	}

	interval := l.Gen.Interval()
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	start := clock.Now()
	log.WithField("file", l.Path).Info("sampling started")

	for {
		select {
		case <-ctx.Done():
			log.WithField("rows", l.rows).Info("sampling stopped")
			return nil
		default:
		}
		if l.RunDuration > 0 && clock.Since(start) >= l.RunDuration {
			log.WithField("rows", l.rows).Info("run duration reached")
			return nil
		}

		elapsed := float64(l.rows) * interval.Seconds()
		reading, err := l.Gen.Generate(elapsed)
		if err != nil {
			return fmt.Errorf("sensor %s: generating row %d: %w", l.Gen.ID(), l.rows, err)
		}
		if got := len(reading.Values) + len(reading.Flags); got != len(columns) {
			return fmt.Errorf("sensor %s: reading has %d fields, want %d", l.Gen.ID(), got, len(columns))
		}

		row := make([]string, 0, 2+len(columns))
		row = append(row, clock.Now().UTC().Format(time.RFC3339Nano), l.Gen.ID())
		for _, v := range reading.Values {
			row = append(row, formatValue(v))
		}
		row = append(row, reading.Flags...)

		if err := w.Write(row); err != nil {
			return fmt.Errorf("sensor %s: writing row %d: %w", l.Gen.ID(), l.rows, err)
		}
		// One durable row per tick; csv.Writer buffers until Flush.
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("sensor %s: flushing row %d: %w", l.Gen.ID(), l.rows, err)
		}
		l.rows++
		if l.Counter != nil {
			l.Counter.Add(1)
		}

		// The limiter is the loop's only yield point: the first Wait returns
		// immediately, each subsequent one paces to the sampling interval.
		if err := limiter.Wait(ctx); err != nil {
			log.WithField("rows", l.rows).Info("sampling stopped")
			return nil
		}
	}
}

// formatValue renders a numeric channel with four decimal places of
// precision and no trailing zeros.
func formatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
