package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glancelabs/glance/internal/logger"
	"github.com/glancelabs/glance/internal/playback"
	"github.com/glancelabs/glance/internal/stories"
)

// Input commands accepted by the player session endpoint
const (
	CommandNext       = "next"
	CommandPrev       = "prev"
	CommandToggle     = "toggle"
	CommandSwipe      = "swipe"
	CommandMediaReady = "media_ready"
	CommandMediaError = "media_error"
	CommandMute       = "mute"
	CommandUnmute     = "unmute"
)

// OpenSessionRequest represents a request to open a player session
type OpenSessionRequest struct {
	StartAuthorIndex *int `json:"start_author_index,omitempty"`
	StartStoryIndex  *int `json:"start_story_index,omitempty"`
}

// SessionInputRequest represents a navigation or media input command
type SessionInputRequest struct {
	Command string `json:"command" binding:"required"`
	// DeltaY is the net vertical displacement of a swipe gesture
	DeltaY *float64 `json:"delta_y,omitempty"`
	// DurationMs is the media duration reported with media_ready
	DurationMs *int64 `json:"duration_ms,omitempty"`
	// PositionMs is the video playback position reported with toggle
	PositionMs *int64 `json:"position_ms,omitempty"`
}

// SessionResponse wraps the observable player state
type SessionResponse struct {
	State playback.State `json:"state"`
}

// PlayerHandler handles player session API requests
type PlayerHandler struct {
	manager *playback.Manager
}

// NewPlayerHandler creates a new player handler instance
func NewPlayerHandler(manager *playback.Manager) *PlayerHandler {
	return &PlayerHandler{manager: manager}
}

// OpenSession handles POST /api/player/sessions
func (h *PlayerHandler) OpenSession(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	var start *playback.Position
	if req.StartAuthorIndex != nil || req.StartStoryIndex != nil {
		pos := playback.Position{}
		if req.StartAuthorIndex != nil {
			pos.Author = *req.StartAuthorIndex
		}
		if req.StartStoryIndex != nil {
			pos.Story = *req.StartStoryIndex
		}
		start = &pos
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	controller, err := h.manager.Open(ctx, viewer, start)
	if err != nil {
		if errors.Is(err, playback.ErrEmptyTimeline) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "empty_timeline",
				Message: "There are no stories to play",
			})
			return
		}
		if errors.Is(err, playback.ErrInvalidPosition) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_position",
				Message: "Starting position is outside the timeline",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("viewer_id", viewer.String()).
			Msg("Failed to open player session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to open player session",
		})
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{State: controller.State()})
}

// GetSession handles GET /api/player/sessions/:id
func (h *PlayerHandler) GetSession(c *gin.Context) {
	controller, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{State: controller.State()})
}

// Input handles POST /api/player/sessions/:id/input
func (h *PlayerHandler) Input(c *gin.Context) {
	controller, ok := h.session(c)
	if !ok {
		return
	}

	var req SessionInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	var err error
	switch req.Command {
	case CommandNext:
		err = controller.Next()
	case CommandPrev:
		err = controller.Prev()
	case CommandToggle:
		position := time.Duration(-1)
		if req.PositionMs != nil {
			position = time.Duration(*req.PositionMs) * time.Millisecond
		}
		err = controller.TogglePause(position)
	case CommandSwipe:
		if req.DeltaY == nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: "swipe requires delta_y",
			})
			return
		}
		err = controller.Swipe(*req.DeltaY)
	case CommandMediaReady:
		reported := time.Duration(0)
		if req.DurationMs != nil {
			reported = time.Duration(*req.DurationMs) * time.Millisecond
		}
		err = controller.MediaReady(reported)
	case CommandMediaError:
		err = controller.MediaError()
	case CommandMute:
		err = controller.SetMuted(true)
	case CommandUnmute:
		err = controller.SetMuted(false)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_command",
			Message: "Unknown command: " + req.Command,
		})
		return
	}

	if err != nil {
		if errors.Is(err, playback.ErrClosed) {
			c.JSON(http.StatusGone, ErrorResponse{
				Error:   "session_closed",
				Message: "Player session has ended",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("command", req.Command).
			Msg("Player input failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Player input failed",
		})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{State: controller.State()})
}

// DeleteCurrentStory handles DELETE /api/player/sessions/:id/story
func (h *PlayerHandler) DeleteCurrentStory(c *gin.Context) {
	controller, ok := h.session(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := controller.DeleteCurrent(ctx); err != nil {
		if errors.Is(err, playback.ErrClosed) {
			c.JSON(http.StatusGone, ErrorResponse{
				Error:   "session_closed",
				Message: "Player session has ended",
			})
			return
		}
		if errors.Is(err, stories.ErrNotOwner) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "not_owner",
				Message: "Only the story owner may delete it",
			})
			return
		}
		if errors.Is(err, stories.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "story_not_found",
				Message: "Story does not exist or has expired",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Msg("Failed to delete current story")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete story",
		})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{State: controller.State()})
}

// CloseSession handles DELETE /api/player/sessions/:id
func (h *PlayerHandler) CloseSession(c *gin.Context) {
	controller, ok := h.session(c)
	if !ok {
		return
	}

	if err := h.manager.Close(controller.ID()); err != nil && !errors.Is(err, playback.ErrSessionNotFound) {
		logger.Log.Error().
			Err(err).
			Str("session_id", controller.ID().String()).
			Msg("Failed to close player session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to close session",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// session resolves the session from the path and checks the caller owns it
func (h *PlayerHandler) session(c *gin.Context) (*playback.Controller, bool) {
	viewer, ok := viewerID(c)
	if !ok {
		return nil, false
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return nil, false
	}

	controller, ok := h.manager.Get(id)
	if !ok || controller.ViewerID() != viewer {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "session_not_found",
			Message: "Player session does not exist",
		})
		return nil, false
	}
	return controller, true
}

// SetupPlayerRoutes registers player session routes
func SetupPlayerRoutes(apiGroup *gin.RouterGroup, manager *playback.Manager) {
	handler := NewPlayerHandler(manager)

	playerGroup := apiGroup.Group("/player/sessions")
	playerGroup.POST("", handler.OpenSession)
	playerGroup.GET("/:id", handler.GetSession)
	playerGroup.POST("/:id/input", handler.Input)
	playerGroup.DELETE("/:id/story", handler.DeleteCurrentStory)
	playerGroup.DELETE("/:id", handler.CloseSession)
}
