package catalog

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of triggers into single runs of fn.
//
// Trigger cancels any scheduled run that has not started and schedules a new
// one after the delay. While fn is executing, further triggers set a single
// pending slot; fn runs once more right after the current run returns. fn
// reads whatever state it needs when it runs, so the latest state wins.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu        sync.Mutex
	idle      *sync.Cond
	timer     *time.Timer
	seq       uint64
	scheduled bool
	running   bool
	pending   bool
	stopped   bool
}

// NewDebouncer returns a Debouncer that runs fn after delay of quiescence.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	d := &Debouncer{delay: delay, fn: fn}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger schedules a run, replacing any scheduled run that has not started.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.running {
		d.pending = true
		return
	}
	d.cancelLocked()
	d.seq++
	seq := d.seq
	d.scheduled = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush runs fn now instead of waiting for the delay, and returns once the
// debouncer is idle. If fn is already running, Flush waits for it and for
// the follow-up run.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.cancelLocked()
	if d.running {
		d.pending = true
		for d.running || d.pending {
			d.idle.Wait()
		}
		return
	}
	d.runLocked()
}

// Wait blocks until no run is scheduled, executing or pending.
func (d *Debouncer) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.scheduled || d.running || d.pending {
		d.idle.Wait()
	}
}

// Stop cancels any scheduled run and refuses further triggers. A run in
// progress completes.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	d.cancelLocked()
	d.idle.Broadcast()
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || !d.scheduled || seq != d.seq {
		return
	}
	d.scheduled = false
	d.timer = nil
	if d.running {
		d.pending = true
		return
	}
	d.runLocked()
}

// runLocked runs fn with the lock released, then drains the pending slot.
func (d *Debouncer) runLocked() {
	for {
		d.running = true
		d.mu.Unlock()
		d.fn()
		d.mu.Lock()
		d.running = false
		if !d.pending || d.stopped {
			d.pending = false
			break
		}
		d.pending = false
	}
	d.idle.Broadcast()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.scheduled {
		d.scheduled = false
		d.idle.Broadcast()
	}
	d.seq++
}
