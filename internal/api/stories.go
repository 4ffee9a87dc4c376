package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glancelabs/glance/internal/logger"
	"github.com/glancelabs/glance/internal/models"
	"github.com/glancelabs/glance/internal/stories"
)

// Request/Response DTOs

// CreateStoryRequest represents a request to post a new story
type CreateStoryRequest struct {
	MediaURL   string  `json:"media_url" binding:"required"`
	Caption    *string `json:"caption,omitempty"`
	DurationMs int64   `json:"duration_ms,omitempty"`
}

// StoryResponse represents a story in API responses
type StoryResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	MediaType  string    `json:"media_type"`
	MediaURL   string    `json:"media_url"`
	Caption    *string   `json:"caption,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
	ViewCount  int       `json:"view_count"`
}

// TimelineResponse represents the viewer's timeline of author groups
type TimelineResponse struct {
	Authors []stories.AuthorGroup `json:"authors"`
}

// OwnStoriesResponse represents the owner's story management view
type OwnStoriesResponse struct {
	Stories []*StoryResponse `json:"stories"`
}

// ViewerEntryResponse represents one viewer of a story
type ViewerEntryResponse struct {
	ViewerID string    `json:"viewer_id"`
	Username string    `json:"username"`
	ViewedAt time.Time `json:"viewed_at"`
}

// ViewersResponse represents a story's viewer list
type ViewersResponse struct {
	Viewers []*ViewerEntryResponse `json:"viewers"`
}

// StoryHandler handles story-related API requests
type StoryHandler struct {
	service *stories.Service
}

// NewStoryHandler creates a new story handler instance
func NewStoryHandler(service *stories.Service) *StoryHandler {
	return &StoryHandler{service: service}
}

// toStoryResponse converts a story model to API response format
func toStoryResponse(s *models.Story) *StoryResponse {
	return &StoryResponse{
		ID:         s.ID.String(),
		AuthorID:   s.AuthorID.String(),
		MediaType:  string(s.MediaType),
		MediaURL:   s.MediaURL,
		Caption:    s.Caption,
		DurationMs: s.DurationMs,
		CreatedAt:  s.CreatedAt,
		ViewCount:  len(s.Views),
	}
}

// toViewerEntryResponse converts a view record to API response format
func toViewerEntryResponse(v *models.StoryView) *ViewerEntryResponse {
	entry := &ViewerEntryResponse{
		ViewerID: v.ViewerID.String(),
		ViewedAt: v.ViewedAt,
	}
	if v.Viewer != nil {
		entry.Username = v.Viewer.Username
	}
	return entry
}

// CreateStory handles POST /api/stories
func (h *StoryHandler) CreateStory(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}

	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	story, err := h.service.Create(ctx, viewer, req.MediaURL, req.Caption, req.DurationMs)
	if err != nil {
		if errors.Is(err, stories.ErrInvalidMedia) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_media",
				Message: "Media URL is invalid or its format is unsupported",
			})
			return
		}
		if errors.Is(err, stories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "user_not_found",
				Message: "Author does not exist",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("viewer_id", viewer.String()).
			Msg("Failed to create story")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create story",
		})
		return
	}

	c.JSON(http.StatusCreated, toStoryResponse(story))
}

// GetTimeline handles GET /api/stories/timeline
func (h *StoryHandler) GetTimeline(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	groups, err := h.service.Timeline(ctx, viewer)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("viewer_id", viewer.String()).
			Msg("Failed to build timeline")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to build timeline",
		})
		return
	}

	c.JSON(http.StatusOK, TimelineResponse{Authors: groups})
}

// GetOwnStories handles GET /api/stories/mine
func (h *StoryHandler) GetOwnStories(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.OwnStories(ctx, viewer)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("viewer_id", viewer.String()).
			Msg("Failed to list own stories")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list stories",
		})
		return
	}

	resp := OwnStoriesResponse{Stories: make([]*StoryResponse, 0, len(list))}
	for _, s := range list {
		resp.Stories = append(resp.Stories, toStoryResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

// MarkViewed handles POST /api/stories/:id/view
func (h *StoryHandler) MarkViewed(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	storyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.MarkViewed(ctx, storyID, viewer); err != nil {
		if errors.Is(err, stories.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "story_not_found",
				Message: "Story does not exist or has expired",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("story_id", storyID.String()).
			Msg("Failed to mark story viewed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to mark story viewed",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetViewers handles GET /api/stories/:id/viewers
func (h *StoryHandler) GetViewers(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	storyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	views, err := h.service.Viewers(ctx, storyID, viewer)
	if err != nil {
		if errors.Is(err, stories.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "story_not_found",
				Message: "Story does not exist or has expired",
			})
			return
		}
		if errors.Is(err, stories.ErrNotOwner) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "not_owner",
				Message: "Only the story owner may list viewers",
			})
			return
		}
		logger.Log.Error().
			Err(err).
			Str("story_id", storyID.String()).
			Msg("Failed to load story viewers")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load viewers",
		})
		return
	}

	resp := ViewersResponse{Viewers: make([]*ViewerEntryResponse, 0, len(views))}
	for _, v := range views {
		resp.Viewers = append(resp.Viewers, toViewerEntryResponse(v))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteStory handles DELETE /api/stories/:id
func (h *StoryHandler) DeleteStory(c *gin.Context) {
	viewer, ok := viewerID(c)
	if !ok {
		return
	}
	storyID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, storyID, viewer); err != nil {
		if errors.Is(err, stories.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "story_not_found",
				Message: "Story does not exist or has expired",
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
		logger.Log.Error().
			Err(err).
			Str("story_id", storyID.String()).
			Msg("Failed to delete story")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete story",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// SetupStoryRoutes registers story routes
func SetupStoryRoutes(apiGroup *gin.RouterGroup, service *stories.Service) {
	handler := NewStoryHandler(service)

	storyGroup := apiGroup.Group("/stories")
	storyGroup.POST("", handler.CreateStory)
	storyGroup.GET("/timeline", handler.GetTimeline)
	storyGroup.GET("/mine", handler.GetOwnStories)
	storyGroup.POST("/:id/view", handler.MarkViewed)
	storyGroup.GET("/:id/viewers", handler.GetViewers)
	storyGroup.DELETE("/:id", handler.DeleteStory)
}
