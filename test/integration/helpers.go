//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glancelabs/glance/internal/api"
	"github.com/glancelabs/glance/internal/config"
	"github.com/glancelabs/glance/internal/db"
	"github.com/glancelabs/glance/internal/logger"
	"github.com/glancelabs/glance/internal/media"
	"github.com/glancelabs/glance/internal/models"
	"github.com/glancelabs/glance/internal/playback"
	"github.com/glancelabs/glance/internal/stories"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a test database with migrations applied
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories, func()) {
	t.Helper()

	logger.Init("error", false)

	database, err := db.New(filepath.Join(t.TempDir(), "integration.db"))
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err, "Failed to get SQL DB")

	// Resolve the migrations directory relative to this file so tests work
	// regardless of working directory
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	testDir := filepath.Dir(filename)                     // test/integration
	rootDir := filepath.Dir(filepath.Dir(testDir))        // repo root
	migrationsPath := "file://" + filepath.Join(rootDir, "migrations")

	err = db.RunMigrations(sqlDB, migrationsPath)
	require.NoError(t, err, "Failed to run migrations")

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return database, repos, cleanup
}

// testPlaybackConfig keeps playback slow enough for HTTP-level assertions
func testPlaybackConfig() config.PlaybackConfig {
	return config.PlaybackConfig{
		ImageDuration:          time.Minute,
		MaxVideoDuration:       2 * time.Minute,
		TickInterval:           10 * time.Millisecond,
		ToggleDebounce:         0,
		SwipeThreshold:         50.0,
		SessionIdleTimeout:     time.Minute,
		SessionCleanupInterval: time.Second,
	}
}

// setupTestApp wires the full API surface the way the server does
func setupTestApp(t *testing.T) (*gin.Engine, *stories.Service, *db.Repositories, func()) {
	t.Helper()

	database, repos, dbCleanup := setupTestDB(t)

	detector := media.NewDetector(
		[]string{"jpg", "jpeg", "png", "gif", "webp"},
		[]string{"mp4", "webm", "mov"},
	)
	service := stories.NewService(repos, detector, 24*time.Hour)
	manager := playback.NewManager(service, testPlaybackConfig())
	require.NoError(t, manager.Start())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	api.SetupHealthRoutes(apiGroup, database)
	api.SetupStoryRoutes(apiGroup, service)
	api.SetupPlayerRoutes(apiGroup, manager)

	cleanup := func() {
		manager.Stop()
		dbCleanup()
	}

	return router, service, repos, cleanup
}

// createTestUser inserts a user
func createTestUser(t *testing.T, repos *db.Repositories, username string) *models.User {
	t.Helper()
	user := models.NewUser(username)
	require.NoError(t, repos.Users.Create(context.Background(), user))
	return user
}

// doJSON performs a request with an optional JSON body and viewer header
func doJSON(router *gin.Engine, method, path string, body interface{}, viewer string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if viewer != "" {
		req.Header.Set(api.ViewerHeader, viewer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorded response body into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// mustStatus asserts the response code and fails loudly with the body
func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "unexpected status, body: %s", w.Body.String())
}
