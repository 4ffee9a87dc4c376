// Package playback implements the ephemeral story player: a timer-driven
// state machine that walks an ordered snapshot of author groups, advancing
// automatically when a story's progress completes and accepting manual
// navigation, pause toggles, swipe gestures, and deletion of the current
// story. Exactly one progress timer is hot per session at any time.
package playback

import (
	"context"
	"errors"

	"github.com/glancelabs/glance/internal/models"
	"github.com/glancelabs/glance/internal/stories"
	"github.com/google/uuid"
)

// PlayerState represents the current state of a player session
type PlayerState string

// Player state constants
const (
	// StatePlaying means the progress timer is ticking
	StatePlaying PlayerState = "playing"
	// StatePaused means the clock is frozen at its captured elapsed value
	StatePaused PlayerState = "paused"
	// StateTransitioning is the brief non-interactive window entered on
	// every position change while the next story's media is prepared
	StateTransitioning PlayerState = "transitioning"
	// StateClosed is terminal: the session released its timer and resources
	StateClosed PlayerState = "closed"
)

// Common errors
var (
	// ErrClosed indicates the player session has reached its terminal state
	ErrClosed = errors.New("player session is closed")
	// ErrEmptyTimeline indicates there are no stories to play
	ErrEmptyTimeline = errors.New("timeline snapshot is empty")
	// ErrInvalidPosition indicates a starting position outside the snapshot
	ErrInvalidPosition = errors.New("position outside snapshot bounds")
	// ErrSessionNotFound indicates no player session exists for the ID
	ErrSessionNotFound = errors.New("player session not found")
	// ErrManagerStopped indicates the player manager has been stopped
	ErrManagerStopped = errors.New("player manager has been stopped")
)

// String returns the string representation of the player state
func (s PlayerState) String() string {
	return string(s)
}

// IsValid checks if the player state is a known valid value
func (s PlayerState) IsValid() bool {
	switch s {
	case StatePlaying, StatePaused, StateTransitioning, StateClosed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a transition from current state to newState is valid
func (s PlayerState) CanTransitionTo(newState PlayerState) bool {
	if newState == StateClosed {
		// Any state may close: timer completion at the end of the
		// timeline, reconciliation of an emptied snapshot, or teardown.
		return s != StateClosed
	}
	switch s {
	case StatePlaying:
		return newState == StatePaused || newState == StateTransitioning
	case StatePaused:
		return newState == StatePlaying || newState == StateTransitioning
	case StateTransitioning:
		return newState == StatePlaying
	case StateClosed:
		return false
	default:
		return false
	}
}

// Position is a pointer into the snapshot: which author group, which story
type Position struct {
	Author int `json:"author_index"`
	Story  int `json:"story_index"`
}

// Snapshot is the full ordered collection of author groups fetched from the
// story service at a point in time. The engine treats it as immutable until
// explicitly refetched after a deletion.
type Snapshot []stories.AuthorGroup

// Empty reports whether the snapshot holds no playable stories
func (s Snapshot) Empty() bool {
	for _, g := range s {
		if len(g.Stories) > 0 {
			return false
		}
	}
	return true
}

// Contains reports whether the position points at a story in the snapshot
func (s Snapshot) Contains(pos Position) bool {
	if pos.Author < 0 || pos.Author >= len(s) {
		return false
	}
	return pos.Story >= 0 && pos.Story < len(s[pos.Author].Stories)
}

// At returns the story at the position
func (s Snapshot) At(pos Position) (stories.Item, bool) {
	if !s.Contains(pos) {
		return stories.Item{}, false
	}
	return s[pos.Author].Stories[pos.Story], true
}

// State is the observable output of a player session, enough to render the
// progress bar and the current story
type State struct {
	SessionID       uuid.UUID     `json:"session_id"`
	Position        Position      `json:"position"`
	Mode            PlayerState   `json:"mode"`
	ProgressPercent float64       `json:"progress_percent"`
	ElapsedMs       int64         `json:"elapsed_ms"`
	DurationMs      int64         `json:"duration_ms"`
	Muted           bool          `json:"muted"`
	Story           *stories.Item `json:"story,omitempty"`
}

// Source is the story service contract the player consumes. Transport and
// persistence live behind it; the engine only reads snapshots and issues
// view/delete mutations.
type Source interface {
	Timeline(ctx context.Context, viewerID uuid.UUID) ([]stories.AuthorGroup, error)
	MarkViewed(ctx context.Context, storyID, viewerID uuid.UUID) error
	Viewers(ctx context.Context, storyID, requesterID uuid.UUID) ([]*models.StoryView, error)
	Delete(ctx context.Context, storyID, requesterID uuid.UUID) error
}
