package playback

import (
	"context"
	"sync"
	"time"

	"github.com/glancelabs/glance/internal/config"
	"github.com/glancelabs/glance/internal/logger"
	"github.com/google/uuid"
)

// Manager owns all live player sessions. It opens sessions against fresh
// timeline snapshots, hands out controllers by session ID, and runs a
// background sweep that closes sessions that went terminal or idle.
type Manager struct {
	source        Source
	cfg           config.PlaybackConfig
	sessions      map[uuid.UUID]*Controller
	cleanupTicker *time.Ticker
	stopChan      chan struct{}
	cleanupDone   chan struct{}
	mu            sync.RWMutex
	stopped       bool
}

// NewManager creates a new player session manager
func NewManager(source Source, cfg config.PlaybackConfig) *Manager {
	return &Manager{
		source:      source,
		cfg:         cfg,
		sessions:    make(map[uuid.UUID]*Controller),
		stopChan:    make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Start launches the background cleanup loop
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}

	m.cleanupTicker = time.NewTicker(m.cfg.SessionCleanupInterval)
	go m.runCleanupLoop()

	logger.Log.Info().
		Dur("cleanup_interval", m.cfg.SessionCleanupInterval).
		Dur("idle_timeout", m.cfg.SessionIdleTimeout).
		Msg("Player manager started")

	return nil
}

// Stop shuts the manager down: the cleanup loop exits and every live
// session is closed
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	started := m.cleanupTicker != nil
	m.mu.Unlock()

	close(m.stopChan)
	if started {
		<-m.cleanupDone
		m.cleanupTicker.Stop()
	}

	m.mu.Lock()
	sessions := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		sessions = append(sessions, c)
	}
	m.sessions = make(map[uuid.UUID]*Controller)
	m.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}

	logger.Log.Info().
		Int("closed_sessions", len(sessions)).
		Msg("Player manager stopped")
}

// Open creates a new player session for a viewer from a fresh timeline
// snapshot, optionally at a starting position
func (m *Manager) Open(ctx context.Context, viewerID uuid.UUID, start *Position) (*Controller, error) {
	m.mu.RLock()
	if m.stopped {
		m.mu.RUnlock()
		return nil, ErrManagerStopped
	}
	m.mu.RUnlock()

	id := uuid.New()
	controller, err := NewController(ctx, id, m.cfg, m.source, viewerID, start)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		controller.Close()
		return nil, ErrManagerStopped
	}
	m.sessions[id] = controller
	m.mu.Unlock()

	return controller, nil
}

// Get retrieves a live session by ID
func (m *Manager) Get(id uuid.UUID) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	return c, ok
}

// Close closes a session and removes it from the manager
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	c, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	c.Close()
	return nil
}

// Count returns the number of tracked sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// runCleanupLoop sweeps terminal and idle sessions on a fixed interval
func (m *Manager) runCleanupLoop() {
	defer close(m.cleanupDone)

	logger.Log.Debug().Msg("Player cleanup loop started")

	for {
		select {
		case <-m.stopChan:
			logger.Log.Debug().Msg("Player cleanup loop stopping")
			return
		case <-m.cleanupTicker.C:
			m.performCleanup()
		}
	}
}

// performCleanup removes sessions that closed themselves and closes
// sessions idle past the timeout
func (m *Manager) performCleanup() {
	m.mu.Lock()
	var stale []*Controller
	for id, c := range m.sessions {
		if c.Closed() || c.IdleDuration() > m.cfg.SessionIdleTimeout {
			delete(m.sessions, id)
			stale = append(stale, c)
		}
	}
	remaining := len(m.sessions)
	m.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}

	if len(stale) > 0 {
		logger.Log.Info().
			Int("removed_sessions", len(stale)).
			Int("active_sessions", remaining).
			Msg("Player cleanup cycle completed")
	}
}
