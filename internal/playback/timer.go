package playback

import (
	"errors"
	"sync"
	"time"
)

// Timer errors
var (
	ErrTimerStarted  = errors.New("timer already started")
	ErrTimerDuration = errors.New("timer duration must be positive")
)

// Timer drives the progress clock for a single story. It is single-use: one
// Start, at most one completion signal, one Stop. The controller creates a
// fresh Timer on every story entry and stops the previous one first.
type Timer struct {
	interval   time.Duration
	onComplete func()

	mu       sync.Mutex
	duration time.Duration
	startRef time.Time
	elapsed  time.Duration
	started  bool
	paused   bool
	stopped  bool
	fired    bool

	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
}

// NewTimer creates a timer polling at the given interval. onComplete is
// invoked exactly once, from the tick goroutine, when progress reaches 100%.
func NewTimer(interval time.Duration, onComplete func()) *Timer {
	return &Timer{
		interval:   interval,
		onComplete: onComplete,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins ticking toward the given duration. resumeElapsed shifts the
// clock's start reference so a resumed story never restarts from zero.
func (t *Timer) Start(duration, resumeElapsed time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return ErrTimerStarted
	}
	if duration <= 0 {
		return ErrTimerDuration
	}

	t.started = true
	t.duration = duration
	t.elapsed = clampDuration(resumeElapsed, duration)
	t.startRef = time.Now().Add(-t.elapsed)
	t.ticker = time.NewTicker(t.interval)

	go t.run()
	return nil
}

// run is the tick loop. The done channel closes as soon as ticking has
// ceased, before any completion callback runs, so Stop never deadlocks
// against a callback that is itself re-entering the controller.
func (t *Timer) run() {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.stopChan:
			close(t.done)
			return
		case <-t.ticker.C:
			if t.advance() {
				close(t.done)
				t.onComplete()
				return
			}
		}
	}
}

// advance recomputes elapsed time and reports whether the story completed
func (t *Timer) advance() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.paused || t.stopped || t.fired {
		return false
	}

	t.elapsed = time.Since(t.startRef)
	if t.elapsed >= t.duration {
		t.elapsed = t.duration
		t.fired = true
		return true
	}
	return false
}

// Pause freezes the clock at the current wall-clock elapsed value and
// returns it
func (t *Timer) Pause() time.Duration {
	return t.PauseAt(-1)
}

// PauseAt freezes the clock at the given elapsed value. A negative value
// captures the wall-clock elapsed instead; video callers pass the playback
// position so the progress bar stays continuous across pause/resume.
func (t *Timer) PauseAt(elapsed time.Duration) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.stopped || t.fired {
		return t.elapsed
	}
	if !t.paused {
		if elapsed < 0 {
			elapsed = time.Since(t.startRef)
		}
		t.elapsed = clampDuration(elapsed, t.duration)
		t.paused = true
	}
	return t.elapsed
}

// Resume restarts the clock from the elapsed value captured at pause
func (t *Timer) Resume() {
	t.ResumeFrom(-1)
}

// ResumeFrom restarts the clock from the given elapsed value, or from the
// captured pause value when negative
func (t *Timer) ResumeFrom(elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.stopped || t.fired || !t.paused {
		return
	}
	if elapsed >= 0 {
		t.elapsed = clampDuration(elapsed, t.duration)
	}
	t.startRef = time.Now().Add(-t.elapsed)
	t.paused = false
}

// Stop halts the tick loop synchronously: once Stop returns, no further
// tick executes. A completion signal already past its tick may still be in
// flight; callers discard it with a generation check.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.started {
		t.stopped = true
		t.mu.Unlock()
		return
	}
	if t.stopped || t.fired {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.stopped = true
	t.mu.Unlock()

	close(t.stopChan)
	<-t.done
}

// Progress returns the current progress percentage together with the
// elapsed and total durations. Progress is non-decreasing while the timer
// runs and never exceeds 100.
func (t *Timer) Progress() (percent float64, elapsed, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed = t.elapsed
	if t.started && !t.paused && !t.stopped && !t.fired {
		elapsed = clampDuration(time.Since(t.startRef), t.duration)
	}

	if t.duration > 0 {
		percent = float64(elapsed) / float64(t.duration) * 100
		if percent > 100 {
			percent = 100
		}
	}
	return percent, elapsed, t.duration
}

// clampDuration bounds d to the [0, max] range
func clampDuration(d, max time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > max {
		return max
	}
	return d
}
