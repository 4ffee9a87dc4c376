package playback

import (
	"context"
	"testing"
	"time"

	"github.com/glancelabs/glance/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpenAndGet(t *testing.T) {
	source := newFakeSource(newTestGroup(uuid.New(), models.MediaTypeImage))
	manager := NewManager(source, testPlaybackConfig())

	c, err := manager.Open(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	defer manager.Stop()

	assert.Equal(t, 1, manager.Count())

	got, ok := manager.Get(c.ID())
	assert.True(t, ok)
	assert.Same(t, c, got)

	_, ok = manager.Get(uuid.New())
	assert.False(t, ok)
}

func TestManager_OpenEmptyTimeline(t *testing.T) {
	manager := NewManager(newFakeSource(), testPlaybackConfig())

	_, err := manager.Open(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrEmptyTimeline)
	assert.Equal(t, 0, manager.Count())
}

func TestManager_Close(t *testing.T) {
	source := newFakeSource(newTestGroup(uuid.New(), models.MediaTypeImage))
	manager := NewManager(source, testPlaybackConfig())
	defer manager.Stop()

	c, err := manager.Open(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	err = manager.Close(c.ID())
	require.NoError(t, err)
	assert.True(t, c.Closed())
	assert.Equal(t, 0, manager.Count())

	err = manager.Close(c.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_StopClosesLiveSessions(t *testing.T) {
	source := newFakeSource(newTestGroup(uuid.New(), models.MediaTypeImage))
	manager := NewManager(source, testPlaybackConfig())
	require.NoError(t, manager.Start())

	c1, err := manager.Open(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	c2, err := manager.Open(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	manager.Stop()

	assert.True(t, c1.Closed())
	assert.True(t, c2.Closed())
	assert.Equal(t, 0, manager.Count())

	_, err = manager.Open(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrManagerStopped)
}

func TestManager_StopIsIdempotent(t *testing.T) {
	manager := NewManager(newFakeSource(), testPlaybackConfig())
	require.NoError(t, manager.Start())

	manager.Stop()
	manager.Stop()
}

func TestManager_CleanupRemovesClosedSessions(t *testing.T) {
	source := newFakeSource(newTestGroup(uuid.New(), models.MediaTypeImage))
	manager := NewManager(source, testPlaybackConfig())
	require.NoError(t, manager.Start())
	defer manager.Stop()

	c, err := manager.Open(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	// The session closes itself; the background sweep removes it
	c.Close()

	assert.Eventually(t, func() bool {
		return manager.Count() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestManager_CleanupClosesIdleSessions(t *testing.T) {
	cfg := testPlaybackConfig()
	cfg.SessionIdleTimeout = 40 * time.Millisecond

	source := newFakeSource(newTestGroup(uuid.New(), models.MediaTypeImage))
	manager := NewManager(source, cfg)
	require.NoError(t, manager.Start())
	defer manager.Stop()

	c, err := manager.Open(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return manager.Count() == 0
	}, time.Second, 10*time.Millisecond)
	assert.True(t, c.Closed())
}
