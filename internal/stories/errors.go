package stories

import "errors"

// Common errors
var (
	// ErrStoryNotFound indicates the requested story does not exist or has expired
	ErrStoryNotFound = errors.New("story not found")
	// ErrUserNotFound indicates the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")
	// ErrNotOwner indicates the requester does not own the story
	ErrNotOwner = errors.New("requester is not the story owner")
	// ErrInvalidMedia indicates the media URL is invalid or unsupported
	ErrInvalidMedia = errors.New("invalid story media")
)
