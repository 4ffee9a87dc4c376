package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glancelabs/glance/internal/config"
	"github.com/glancelabs/glance/internal/logger"
	"github.com/glancelabs/glance/internal/models"
	"github.com/google/uuid"
)

// Controller owns one viewer's player session: the current position, the
// playback mode, and the single hot progress timer. All input surfaces
// (auto-advance, manual navigation, swipes, pause toggles, media events,
// deletion) funnel through it under one lock, so a stale timer completion
// can never race a manual navigation into skipping a story.
type Controller struct {
	id       uuid.UUID
	viewerID uuid.UUID
	cfg      config.PlaybackConfig
	policy   DurationPolicy
	source   Source
	tracker  *ViewTracker
	swipes   SwipeRecognizer

	mu         sync.Mutex
	snapshot   Snapshot
	pos        Position
	state      PlayerState
	muted      bool
	timer      *Timer
	timerGen   uint64
	lastToggle time.Time
	lastAccess time.Time
	done       chan struct{}
}

// NewController opens a player session for a viewer: it fetches the
// timeline snapshot, validates the optional starting position, records the
// view of the starting story, and begins playback.
func NewController(ctx context.Context, id uuid.UUID, cfg config.PlaybackConfig, source Source, viewerID uuid.UUID, start *Position) (*Controller, error) {
	groups, err := source.Timeline(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline snapshot: %w", err)
	}

	snap := Snapshot(groups)
	if snap.Empty() {
		return nil, ErrEmptyTimeline
	}

	pos := Position{}
	if start != nil {
		if !snap.Contains(*start) {
			return nil, ErrInvalidPosition
		}
		pos = *start
	}

	c := &Controller{
		id:       id,
		viewerID: viewerID,
		cfg:      cfg,
		policy: DurationPolicy{
			Image:    cfg.ImageDuration,
			MaxVideo: cfg.MaxVideoDuration,
		},
		source:     source,
		tracker:    NewViewTracker(source, viewerID),
		swipes:     NewSwipeRecognizer(cfg.SwipeThreshold),
		snapshot:   snap,
		pos:        pos,
		state:      StateTransitioning,
		muted:      cfg.InitialMuted,
		lastAccess: time.Now().UTC(),
		done:       make(chan struct{}),
	}

	c.mu.Lock()
	c.enterStoryLocked()
	c.mu.Unlock()

	logger.Log.Info().
		Str("session_id", id.String()).
		Str("viewer_id", viewerID.String()).
		Int("author_index", pos.Author).
		Int("story_index", pos.Story).
		Msg("Player session opened")

	return c, nil
}

// ID returns the session identifier
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// ViewerID returns the viewer this session belongs to
func (c *Controller) ViewerID() uuid.UUID {
	return c.viewerID
}

// Done returns a channel closed when the session reaches its terminal
// state, signaling the surrounding collaborator to dismiss the view
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether the session has reached its terminal state
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateClosed
}

// IdleDuration returns the time since the session last received input
func (c *Controller) IdleDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastAccess)
}

// Next advances to the following story. At the last story of the last
// author the session closes (terminal). Ignored while transitioning.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.touchLocked()
	if c.state == StateTransitioning {
		return nil
	}

	c.advanceLocked()
	return nil
}

// Prev retreats to the preceding story. At the very first story this is a
// no-op (boundary). Ignored while transitioning.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.touchLocked()
	if c.state == StateTransitioning {
		return nil
	}

	prev, ok := Prev(c.pos, c.snapshot)
	if !ok {
		return nil
	}
	c.pos = prev
	c.enterStoryLocked()
	return nil
}

// TogglePause flips between playing and paused. Toggles arriving within
// the debounce window of the previous accepted toggle are dropped, so an
// accidental double tap cannot flap the state. videoPosition is the
// client-reported playback position for video stories; pass a negative
// value when unknown and the wall clock is captured instead.
func (c *Controller) TogglePause(videoPosition time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.touchLocked()
	if c.state == StateTransitioning {
		return nil
	}

	now := time.Now()
	if !c.lastToggle.IsZero() && now.Sub(c.lastToggle) < c.cfg.ToggleDebounce {
		return nil
	}
	c.lastToggle = now

	switch c.state {
	case StatePlaying:
		if c.timer != nil {
			c.timer.PauseAt(videoPosition)
		}
		c.state = StatePaused
	case StatePaused:
		if c.timer != nil {
			c.timer.ResumeFrom(videoPosition)
		}
		c.state = StatePlaying
	}
	return nil
}

// Swipe feeds a completed drag gesture's net vertical displacement into
// the recognizer: a downward swipe maps to Next, an upward one to Prev.
func (c *Controller) Swipe(deltaY float64) error {
	switch c.swipes.Recognize(deltaY) {
	case SwipeNext:
		return c.Next()
	case SwipePrev:
		return c.Prev()
	default:
		return nil
	}
}

// MediaReady unblocks the timer for a video story once its duration is
// known. Calls outside the transitioning window, or for image stories,
// are ignored.
func (c *Controller) MediaReady(reported time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.touchLocked()
	if c.state != StateTransitioning {
		return nil
	}

	story, ok := c.snapshot.At(c.pos)
	if !ok || story.MediaType != models.MediaTypeVideo {
		return nil
	}

	if reported <= 0 && story.DurationMs > 0 {
		// Upload-time metadata stands in when the player reports nothing.
		reported = time.Duration(story.DurationMs) * time.Millisecond
	}

	c.startTimerLocked(c.policy.ForVideo(reported))
	c.state = StatePlaying
	return nil
}

// MediaError handles a media load failure. It is not fatal: a video that
// never reported its duration falls back to the default and the timer is
// unblocked; for an already playing story the tick loop keeps running and
// the failure is only the renderer's concern.
func (c *Controller) MediaError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.touchLocked()
	if c.state != StateTransitioning {
		return nil
	}

	logger.Log.Warn().
		Str("session_id", c.id.String()).
		Int("author_index", c.pos.Author).
		Int("story_index", c.pos.Story).
		Msg("Media failed to load, falling back to default duration")

	c.startTimerLocked(c.policy.ForVideo(0))
	c.state = StatePlaying
	return nil
}

// DeleteCurrent deletes the story under the cursor, refetches the
// timeline, and reconciles the position against the shrunken snapshot. A
// failed delete leaves position and snapshot untouched and surfaces the
// error; playback is not paused while the request is in flight.
func (c *Controller) DeleteCurrent(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.touchLocked()
	story, ok := c.snapshot.At(c.pos)
	c.mu.Unlock()
	if !ok {
		return ErrInvalidPosition
	}

	if err := c.source.Delete(ctx, story.ID, c.viewerID); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}

	groups, err := c.source.Timeline(ctx, c.viewerID)
	if err != nil {
		return fmt.Errorf("failed to refetch timeline after delete: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil
	}

	c.snapshot = Snapshot(groups)
	newPos, ok := Reconcile(c.pos, c.snapshot)
	if !ok {
		logger.Log.Info().
			Str("session_id", c.id.String()).
			Msg("Timeline empty after delete, closing player session")
		c.closeLocked()
		return nil
	}

	c.pos = newPos
	c.enterStoryLocked()
	return nil
}

// LoadViewers fetches the viewer list of a story on demand (owner only)
func (c *Controller) LoadViewers(ctx context.Context, storyID uuid.UUID) ([]*models.StoryView, error) {
	return c.tracker.LoadViewers(ctx, storyID)
}

// SetMuted updates the session's mute preference
func (c *Controller) SetMuted(muted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.touchLocked()
	c.muted = muted
	return nil
}

// State returns an observable snapshot of the session for rendering
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		SessionID: c.id,
		Position:  c.pos,
		Mode:      c.state,
		Muted:     c.muted,
	}

	if c.timer != nil {
		percent, elapsed, duration := c.timer.Progress()
		st.ProgressPercent = percent
		st.ElapsedMs = elapsed.Milliseconds()
		st.DurationMs = duration.Milliseconds()
	}

	if c.state != StateClosed {
		if story, ok := c.snapshot.At(c.pos); ok {
			st.Story = &story
		}
	}
	return st
}

// Close tears the session down synchronously: the timer is stopped, no
// tick runs after return, and the done channel is closed
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}
	c.closeLocked()

	logger.Log.Info().
		Str("session_id", c.id.String()).
		Msg("Player session closed")
}

// advanceLocked moves forward one story or closes at the terminal position
func (c *Controller) advanceLocked() {
	next, ok := Next(c.pos, c.snapshot)
	if !ok {
		c.closeLocked()
		return
	}
	c.pos = next
	c.enterStoryLocked()
}

// enterStoryLocked runs the story-entry side effects for the current
// position: stop the previous timer, record the view, reset progress, and
// either start ticking (images) or wait for media readiness (video).
func (c *Controller) enterStoryLocked() {
	c.stopTimerLocked()

	story, ok := c.snapshot.At(c.pos)
	if !ok {
		c.closeLocked()
		return
	}

	c.tracker.RecordViewIfNeeded(story)
	c.state = StateTransitioning

	if story.MediaType == models.MediaTypeImage {
		// Images need no preparation; the fixed-duration clock starts now.
		c.startTimerLocked(c.policy.ForImage())
		c.state = StatePlaying
		return
	}
	// Video stays in transitioning until MediaReady or MediaError unblocks
	// the timer, so a wrong duration can never complete a story early.
}

// startTimerLocked replaces the hot timer. The generation counter tags the
// completion callback; a signal from a superseded timer is discarded.
func (c *Controller) startTimerLocked(duration time.Duration) {
	c.timerGen++
	gen := c.timerGen

	t := NewTimer(c.cfg.TickInterval, func() {
		c.onTimerComplete(gen)
	})
	if err := t.Start(duration, 0); err != nil {
		logger.Log.Error().
			Err(err).
			Str("session_id", c.id.String()).
			Dur("duration", duration).
			Msg("Failed to start progress timer")
		return
	}
	c.timer = t
}

// stopTimerLocked stops the hot timer synchronously before a new one may start
func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// onTimerComplete is the timer's completion callback: auto-advance, unless
// the signal is stale (superseded timer) or the session is no longer playing
func (c *Controller) onTimerComplete(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying || gen != c.timerGen {
		return
	}
	c.advanceLocked()
}

// closeLocked enters the terminal state and releases the timer
func (c *Controller) closeLocked() {
	c.stopTimerLocked()
	c.state = StateClosed
	close(c.done)
}

// touchLocked marks the session as recently used for idle cleanup
func (c *Controller) touchLocked() {
	c.lastAccess = time.Now().UTC()
}
