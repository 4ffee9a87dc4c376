package playback

import (
	"context"
	"sync"
	"time"

	"github.com/glancelabs/glance/internal/config"
	"github.com/glancelabs/glance/internal/models"
	"github.com/glancelabs/glance/internal/stories"
	"github.com/google/uuid"
)

// testPlaybackConfig returns a config with durations short enough for tests
// but long enough that assertions observe a stable playing state
func testPlaybackConfig() config.PlaybackConfig {
	return config.PlaybackConfig{
		ImageDuration:          500 * time.Millisecond,
		MaxVideoDuration:       2 * time.Second,
		TickInterval:           5 * time.Millisecond,
		ToggleDebounce:         60 * time.Millisecond,
		SwipeThreshold:         50.0,
		InitialMuted:           false,
		SessionIdleTimeout:     time.Minute,
		SessionCleanupInterval: 20 * time.Millisecond,
	}
}

// fakeSource is an in-memory Source implementation with call counters
type fakeSource struct {
	mu          sync.Mutex
	groups      []stories.AuthorGroup
	timelineErr error
	markErr     error
	deleteErr   error
	viewersList []*models.StoryView
	viewersErr  error
	markCalls   map[uuid.UUID]int
	deleteCalls []uuid.UUID
}

func newFakeSource(groups ...stories.AuthorGroup) *fakeSource {
	return &fakeSource{
		groups:    groups,
		markCalls: make(map[uuid.UUID]int),
	}
}

func (f *fakeSource) Timeline(_ context.Context, _ uuid.UUID) ([]stories.AuthorGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timelineErr != nil {
		return nil, f.timelineErr
	}
	out := make([]stories.AuthorGroup, len(f.groups))
	copy(out, f.groups)
	return out, nil
}

func (f *fakeSource) MarkViewed(_ context.Context, storyID, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls[storyID]++
	return f.markErr
}

func (f *fakeSource) Viewers(_ context.Context, _, _ uuid.UUID) ([]*models.StoryView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewersErr != nil {
		return nil, f.viewersErr
	}
	return f.viewersList, nil
}

func (f *fakeSource) Delete(_ context.Context, storyID, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleteCalls = append(f.deleteCalls, storyID)
	return nil
}

func (f *fakeSource) setGroups(groups ...stories.AuthorGroup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = groups
}

func (f *fakeSource) markCount(storyID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markCalls[storyID]
}

func (f *fakeSource) deleted() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uuid.UUID, len(f.deleteCalls))
	copy(out, f.deleteCalls)
	return out
}

// newTestGroup builds an author group with one story per media type given
func newTestGroup(authorID uuid.UUID, mediaTypes ...models.MediaType) stories.AuthorGroup {
	group := stories.AuthorGroup{
		Author:      stories.UserRef{ID: authorID, Username: "user-" + authorID.String()[:8]},
		HasUnviewed: true,
	}
	for i, mt := range mediaTypes {
		group.Stories = append(group.Stories, stories.Item{
			ID:        uuid.New(),
			AuthorID:  authorID,
			MediaType: mt,
			MediaURL:  "https://cdn.example.com/media/" + uuid.NewString(),
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Minute),
		})
	}
	return group
}
