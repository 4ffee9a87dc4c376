package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryView records that a viewer has seen a story.
// At most one row exists per (story, viewer) pair; the owner never
// appears as a viewer of their own story.
type StoryView struct {
	ID       uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	StoryID  uuid.UUID `json:"story_id" gorm:"type:text;not null;uniqueIndex:idx_story_viewer;column:story_id" validate:"required"`
	ViewerID uuid.UUID `json:"viewer_id" gorm:"type:text;not null;uniqueIndex:idx_story_viewer;column:viewer_id" validate:"required"`
	Viewer   *User     `json:"viewer,omitempty" gorm:"foreignKey:ViewerID"`
	ViewedAt time.Time `json:"viewed_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:viewed_at"`
}

// NewStoryView creates a new StoryView with generated UUID and timestamp
func NewStoryView(storyID, viewerID uuid.UUID) *StoryView {
	return &StoryView{
		ID:       uuid.New(),
		StoryID:  storyID,
		ViewerID: viewerID,
		ViewedAt: time.Now().UTC(),
	}
}
