package playback

import (
	"context"
	"sync"
	"time"

	"github.com/glancelabs/glance/internal/logger"
	"github.com/glancelabs/glance/internal/models"
	"github.com/glancelabs/glance/internal/stories"
	"github.com/google/uuid"
)

const markViewedTimeout = 5 * time.Second

// ViewTracker deduplicates view notifications for one player session. A
// story produces at most one markViewed call per session no matter how
// often the viewer navigates back to it, and viewers never notify their
// own stories.
type ViewTracker struct {
	source   Source
	viewerID uuid.UUID

	mu   sync.Mutex
	seen map[uuid.UUID]bool
}

// NewViewTracker creates a view tracker for a viewer's session
func NewViewTracker(source Source, viewerID uuid.UUID) *ViewTracker {
	return &ViewTracker{
		source:   source,
		viewerID: viewerID,
		seen:     make(map[uuid.UUID]bool),
	}
}

// RecordViewIfNeeded notifies the story service that the viewer has seen
// the story, at most once per session. The call is fire-and-forget: a
// failed notification is logged and swallowed, never retried, and never
// blocks playback.
func (t *ViewTracker) RecordViewIfNeeded(story stories.Item) {
	if story.AuthorID == t.viewerID {
		return
	}

	t.mu.Lock()
	if t.seen[story.ID] {
		t.mu.Unlock()
		return
	}
	t.seen[story.ID] = true
	t.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), markViewedTimeout)
		defer cancel()

		if err := t.source.MarkViewed(ctx, story.ID, t.viewerID); err != nil {
			// A missed view increment is not user-visible.
			logger.Log.Warn().
				Err(err).
				Str("story_id", story.ID.String()).
				Str("viewer_id", t.viewerID.String()).
				Msg("Failed to record story view")
		}
	}()
}

// LoadViewers fetches the viewer list for a story on demand. The story
// service enforces that only the owner may ask and filters out a reflected
// entry for the owner. Errors surface to the caller; any previously
// displayed list stays in place upstream.
func (t *ViewTracker) LoadViewers(ctx context.Context, storyID uuid.UUID) ([]*models.StoryView, error) {
	return t.source.Viewers(ctx, storyID, t.viewerID)
}

// Seen reports whether this session has already recorded a view for the story
func (t *ViewTracker) Seen(storyID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[storyID]
}
