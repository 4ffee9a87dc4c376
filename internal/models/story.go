package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaType identifies the kind of media a story carries
type MediaType string

// Media type constants
const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// IsValid checks if the media type is a known valid value
func (m MediaType) IsValid() bool {
	switch m {
	case MediaTypeImage, MediaTypeVideo:
		return true
	default:
		return false
	}
}

// Story represents a single ephemeral media item with a 24-hour lifetime
type Story struct {
	ID       uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	AuthorID uuid.UUID `json:"author_id" gorm:"type:text;not null;index;column:author_id" validate:"required"`
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`

	MediaType MediaType `json:"media_type" gorm:"type:text;not null;column:media_type" validate:"required"`
	MediaURL  string    `json:"media_url" gorm:"type:text;not null;column:media_url" validate:"required"`
	Caption   *string   `json:"caption,omitempty" gorm:"type:text;column:caption"`

	// DurationMs is the media duration reported at upload time, if known.
	// Zero means unknown; the playback engine applies its fallback policy.
	DurationMs int64 `json:"duration_ms" gorm:"type:integer;not null;default:0;column:duration_ms"`

	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;index;column:created_at"`

	Views []StoryView `json:"views,omitempty" gorm:"foreignKey:StoryID"`
}

// NewStory creates a new Story with generated UUID and timestamp
func NewStory(authorID uuid.UUID, mediaType MediaType, mediaURL string) *Story {
	return &Story{
		ID:        uuid.New(),
		AuthorID:  authorID,
		MediaType: mediaType,
		MediaURL:  mediaURL,
		CreatedAt: time.Now().UTC(),
	}
}

// ExpiresAt returns the moment this story drops out of the timeline
func (s *Story) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}
