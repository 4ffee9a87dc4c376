package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can post and view stories
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	Username  string    `json:"username" gorm:"type:text;not null;uniqueIndex;column:username" validate:"required"`
	AvatarURL *string   `json:"avatar_url,omitempty" gorm:"type:text;column:avatar_url"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewUser creates a new User with generated UUID and timestamp
func NewUser(username string) *User {
	return &User{
		ID:        uuid.New(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
}
