package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker writes a single updating progress line for a reindex run.
type ProgressTracker struct {
	mu             sync.Mutex
	w              io.Writer
	label          string
	total          int
	done           int
	reportInterval int
	lastReported   int
	startedAt      time.Time
	running        bool
}

// NewProgressTracker creates a tracker for total chunks of the named material.
// A line is written whenever at least reportInterval chunks completed since
// the last one.
func NewProgressTracker(w io.Writer, label string, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		w:              w,
		label:          label,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startedAt = time.Now()
	p.running = true
	p.done = 0
	p.lastReported = 0
}

// Add records n more completed chunks.
func (p *ProgressTracker) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.done = min(p.done+n, p.total)
	if p.done-p.lastReported >= p.reportInterval {
		p.writeLine()
		p.lastReported = p.done
	}
}

// Done returns the number of chunks recorded so far.
func (p *ProgressTracker) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finish writes the final line and stops the tracker.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.done = p.total
	p.writeLine()
	fmt.Fprintln(p.w)
	p.running = false
}

// Elapsed returns the time since Start, or 0 before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		return 0
	}
	return time.Since(p.startedAt)
}

// writeLine must be called with the lock held.
func (p *ProgressTracker) writeLine() {
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	rate := 0.0
	if secs := time.Since(p.startedAt).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	fmt.Fprintf(p.w, "\r%s: %d/%d chunks (%.1f%%) - %.1f chunks/s", p.label, p.done, p.total, pct, rate)
}
