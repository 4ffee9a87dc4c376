// Package api provides HTTP handlers and DTOs for the story and player
// endpoints. Viewer identity arrives in the X-Viewer-ID header; session and
// authentication management are external collaborators.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ViewerHeader carries the authenticated viewer's ID, set by the fronting
// auth layer
const ViewerHeader = "X-Viewer-ID"

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// viewerID extracts and validates the viewer ID header. On failure it
// writes the error response and returns false.
func viewerID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(ViewerHeader)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_viewer",
			Message: "X-Viewer-ID header is required",
		})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_viewer",
			Message: "X-Viewer-ID must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID extracts and validates a UUID path parameter. On failure it
// writes the error response and returns false.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: name + " must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}
