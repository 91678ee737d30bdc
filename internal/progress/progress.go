// Package progress prints a periodic one-line status of a running
// simulation to stderr.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Progress periodically reports the total row count and overall row rate
// from a shared counter. A quiet Progress does nothing.
type Progress struct {
	startTime time.Time
	rows      *atomic.Int64
	sensors   func() int // active sensor count, may be nil
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
}

func New(rows *atomic.Int64, sensors func() int, quiet bool) *Progress {
	return &Progress{
		rows:    rows,
		sensors: sensors,
		quiet:   quiet,
		output:  os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(1 * time.Second)
	go p.run()
}

func (p *Progress) run() {
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	elapsed := time.Since(p.startTime).Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	rows := p.rows.Load()
	rate := 0.0
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(rows) / s
	}
	active := 0
	if p.sensors != nil {
		active = p.sensors()
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K[%02d:%02d] Sensors: %d | Rows: %d | Rows/s: %.1f",
		mins, secs, active, rows, rate)
	p.mu.Unlock()
}

func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K")
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K"+format+"\n", args...)
	p.mu.Unlock()
}
