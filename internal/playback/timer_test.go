package playback

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_CompletesExactlyOnce(t *testing.T) {
	var completions int32
	timer := NewTimer(2*time.Millisecond, func() {
		atomic.AddInt32(&completions, 1)
	})

	err := timer.Start(30*time.Millisecond, 0)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&completions) == 1
	}, time.Second, 5*time.Millisecond)

	// No further completions after the first one fired
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&completions))

	percent, elapsed, duration := timer.Progress()
	assert.Equal(t, 100.0, percent)
	assert.Equal(t, 30*time.Millisecond, elapsed)
	assert.Equal(t, 30*time.Millisecond, duration)
}

func TestTimer_StartTwice(t *testing.T) {
	timer := NewTimer(5*time.Millisecond, func() {})

	err := timer.Start(time.Second, 0)
	require.NoError(t, err)
	defer timer.Stop()

	err = timer.Start(time.Second, 0)
	assert.ErrorIs(t, err, ErrTimerStarted)
}

func TestTimer_NonPositiveDuration(t *testing.T) {
	timer := NewTimer(5*time.Millisecond, func() {})

	err := timer.Start(0, 0)
	assert.ErrorIs(t, err, ErrTimerDuration)

	err = timer.Start(-time.Second, 0)
	assert.ErrorIs(t, err, ErrTimerDuration)
}

func TestTimer_ProgressMonotonic(t *testing.T) {
	timer := NewTimer(2*time.Millisecond, func() {})

	err := timer.Start(100*time.Millisecond, 0)
	require.NoError(t, err)
	defer timer.Stop()

	var last float64
	for i := 0; i < 20; i++ {
		percent, _, _ := timer.Progress()
		assert.GreaterOrEqual(t, percent, last)
		assert.LessOrEqual(t, percent, 100.0)
		last = percent
		time.Sleep(3 * time.Millisecond)
	}
}

func TestTimer_PauseFreezesClock(t *testing.T) {
	timer := NewTimer(2*time.Millisecond, func() {})

	err := timer.Start(time.Second, 0)
	require.NoError(t, err)
	defer timer.Stop()

	time.Sleep(20 * time.Millisecond)
	frozen := timer.Pause()
	assert.Greater(t, frozen, time.Duration(0))

	time.Sleep(30 * time.Millisecond)
	_, elapsed, _ := timer.Progress()
	assert.Equal(t, frozen, elapsed)
}

func TestTimer_PauseAtCapturesReportedPosition(t *testing.T) {
	timer := NewTimer(2*time.Millisecond, func() {})

	err := timer.Start(time.Second, 0)
	require.NoError(t, err)
	defer timer.Stop()

	frozen := timer.PauseAt(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, frozen)

	_, elapsed, _ := timer.Progress()
	assert.Equal(t, 250*time.Millisecond, elapsed)
}

func TestTimer_ResumeNeverRestartsFromZero(t *testing.T) {
	timer := NewTimer(2*time.Millisecond, func() {})

	err := timer.Start(time.Second, 0)
	require.NoError(t, err)
	defer timer.Stop()

	timer.PauseAt(100 * time.Millisecond)
	timer.Resume()

	_, elapsed, _ := timer.Progress()
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestTimer_ResumeFromOverridesElapsed(t *testing.T) {
	timer := NewTimer(2*time.Millisecond, func() {})

	err := timer.Start(time.Second, 0)
	require.NoError(t, err)
	defer timer.Stop()

	timer.Pause()
	timer.ResumeFrom(400 * time.Millisecond)

	_, elapsed, _ := timer.Progress()
	assert.GreaterOrEqual(t, elapsed, 400*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestTimer_ResumeElapsedClampedToDuration(t *testing.T) {
	var completions int32
	timer := NewTimer(2*time.Millisecond, func() {
		atomic.AddInt32(&completions, 1)
	})

	// Resuming beyond the duration clamps and completes on the next tick
	err := timer.Start(50*time.Millisecond, 80*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&completions) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTimer_StopIsSynchronous(t *testing.T) {
	var completions int32
	timer := NewTimer(2*time.Millisecond, func() {
		atomic.AddInt32(&completions, 1)
	})

	err := timer.Start(30*time.Millisecond, 0)
	require.NoError(t, err)

	timer.Stop()
	fired := atomic.LoadInt32(&completions)

	// Once Stop returns, no further tick may fire the callback
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, fired, atomic.LoadInt32(&completions))
}

func TestTimer_StopAfterCompletion(t *testing.T) {
	var completions int32
	timer := NewTimer(2*time.Millisecond, func() {
		atomic.AddInt32(&completions, 1)
	})

	err := timer.Start(10*time.Millisecond, 0)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&completions) == 1
	}, time.Second, 5*time.Millisecond)

	// Stop after the completion already fired must not hang
	timer.Stop()
}

func TestTimer_PauseAfterCompletionIsNoop(t *testing.T) {
	var completions int32
	timer := NewTimer(2*time.Millisecond, func() {
		atomic.AddInt32(&completions, 1)
	})

	err := timer.Start(10*time.Millisecond, 0)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&completions) == 1
	}, time.Second, 5*time.Millisecond)

	elapsed := timer.Pause()
	assert.Equal(t, 10*time.Millisecond, elapsed)
}
