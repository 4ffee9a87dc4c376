// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glancelabs/glance/internal/api"
	"github.com/glancelabs/glance/internal/config"
	"github.com/glancelabs/glance/internal/db"
	"github.com/glancelabs/glance/internal/logger"
	"github.com/glancelabs/glance/internal/media"
	"github.com/glancelabs/glance/internal/middleware"
	"github.com/glancelabs/glance/internal/playback"
	"github.com/glancelabs/glance/internal/stories"
)

// Server represents the HTTP server
type Server struct {
	config        *config.Config
	db            *db.DB
	repos         *db.Repositories
	storyService  *stories.Service
	playerManager *playback.Manager
	router        *gin.Engine
	server        *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	detector := media.NewDetector(cfg.Stories.SupportedImageFormats, cfg.Stories.SupportedVideoFormats)
	storyService := stories.NewService(repos, detector, cfg.Stories.TTL)
	playerManager := playback.NewManager(storyService, cfg.Playback)

	return &Server{
		config:        cfg,
		db:            database,
		repos:         repos,
		storyService:  storyService,
		playerManager: playerManager,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())
	s.router.Use(cors.Default())

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db)
	api.SetupStoryRoutes(apiGroup, s.storyService)
	api.SetupPlayerRoutes(apiGroup, s.playerManager)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	if err := s.playerManager.Start(); err != nil {
		return fmt.Errorf("failed to start player manager: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.playerManager != nil {
		s.playerManager.Stop()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	return nil
}
