// Package orchestrator starts and supervises one sampling loop per enabled
// sensor.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"plantsim/internal/config"
	"plantsim/internal/sampler"
)

type runner interface {
	Run(ctx context.Context) error
}

// Orchestrator owns the worker goroutines of one simulation run. Workers are
// isolated from each other: a failing or panicking sensor is logged and its
// siblings keep producing rows.
type Orchestrator struct {
	cfg    *config.Config
	log    logrus.FieldLogger
	wg     sync.WaitGroup
	rows   atomic.Int64
	active atomic.Int32
}

func New(cfg *config.Config, log logrus.FieldLogger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{cfg: cfg, log: log}
}

// Rows returns the shared row counter, incremented by every sampling loop.
func (o *Orchestrator) Rows() *atomic.Int64 { return &o.rows }

// ActiveSensors returns the number of workers currently running.
func (o *Orchestrator) ActiveSensors() int { return int(o.active.Load()) }

// Run starts one goroutine per enabled sensor and blocks until all of them
// have finished. A sensor whose configuration fails to build is logged and
// skipped; Run errors only when nothing could be started.
func (o *Orchestrator) Run(ctx context.Context) error {
	enabled := o.cfg.Enabled()
	if len(enabled) == 0 {
		return fmt.Errorf("no sensors enabled")
	}

	started := 0
	for _, s := range enabled {
		gen, err := s.Build()
		if err != nil {
			o.log.WithField("sensor", s.ID).WithError(err).Error("skipping sensor")
			continue
		}
		loop := &sampler.Loop{
			Gen:         gen,
			Path:        filepath.Join(o.cfg.OutputDir, s.FileName()),
			RunDuration: s.RunDuration,
			Log:         o.log,
			Counter:     &o.rows,
		}
		o.spawn(ctx, s.ID, loop)
		started++
	}
	if started == 0 {
		return fmt.Errorf("no sensors could be started")
	}
	o.log.WithField("sensors", started).Info("simulation started")

	o.wg.Wait()
	o.log.WithField("rows", o.rows.Load()).Info("simulation finished")
	return nil
}

func (o *Orchestrator) spawn(ctx context.Context, id string, r runner) {
	o.wg.Add(1)
	o.active.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.active.Add(-1)
		defer o.recoverPanic(id)
		if err := r.Run(ctx); err != nil {
			o.log.WithField("sensor", id).WithError(err).Error("sensor stopped")
		}
	}()
}

// recoverPanic keeps a panicking worker from taking down its siblings.
func (o *Orchestrator) recoverPanic(id string) {
	if r := recover(); r != nil {
		o.log.WithField("sensor", id).Errorf("sensor panicked: %v", r)
	}
}
