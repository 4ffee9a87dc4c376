// Package stories provides the story timeline: posting, expiry, grouping by
// author, view tracking, and owner-only operations. The playback engine
// consumes the read model defined here as an immutable snapshot.
package stories

import (
	"time"

	"github.com/glancelabs/glance/internal/models"
	"github.com/google/uuid"
)

// UserRef is a lightweight reference to a story author or viewer
type UserRef struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

// Item is a single story as seen by the timeline and the playback engine.
// DurationMs is the upload-time media duration where known; zero means
// unknown and playback falls back to its default duration.
type Item struct {
	ID         uuid.UUID        `json:"id"`
	AuthorID   uuid.UUID        `json:"author_id"`
	MediaType  models.MediaType `json:"media_type"`
	MediaURL   string           `json:"media_url"`
	Caption    *string          `json:"caption,omitempty"`
	DurationMs int64            `json:"duration_ms"`
	CreatedAt  time.Time        `json:"created_at"`
	Viewed     bool             `json:"viewed"`
}

// AuthorGroup is the ordered set of a single author's non-expired stories
type AuthorGroup struct {
	Author      UserRef `json:"author"`
	Stories     []Item  `json:"stories"`
	HasUnviewed bool    `json:"has_unviewed"`
}

// userRef builds a UserRef from a user model, tolerating a missing preload
func userRef(id uuid.UUID, u *models.User) UserRef {
	ref := UserRef{ID: id}
	if u != nil {
		ref.Username = u.Username
		ref.AvatarURL = u.AvatarURL
	}
	return ref
}

// toItem converts a story model to its timeline read model
func toItem(s *models.Story, viewed bool) Item {
	return Item{
		ID:         s.ID,
		AuthorID:   s.AuthorID,
		MediaType:  s.MediaType,
		MediaURL:   s.MediaURL,
		Caption:    s.Caption,
		DurationMs: s.DurationMs,
		CreatedAt:  s.CreatedAt,
		Viewed:     viewed,
	}
}
