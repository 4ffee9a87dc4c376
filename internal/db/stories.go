package db

import (
	"context"
	"fmt"
	"time"

	"github.com/glancelabs/glance/internal/models"
	"github.com/google/uuid"
)

// StoryRepository handles database operations for stories
type StoryRepository struct {
	db *DB
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(db *DB) *StoryRepository {
	return &StoryRepository{db: db}
}

// Create inserts a new story into the database
func (r *StoryRepository) Create(ctx context.Context, story *models.Story) error {
	result := r.db.WithContext(ctx).Create(story)
	if result.Error != nil {
		return fmt.Errorf("failed to create story: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a story by its UUID with the author preloaded
func (r *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	var story models.Story
	result := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id.String()).
		First(&story)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &story, nil
}

// ListActive retrieves all stories created after the cutoff, ordered so
// stories of the same author are contiguous and each author's stories run
// oldest first. Expiry is enforced here: callers never see stories past TTL.
func (r *StoryRepository) ListActive(ctx context.Context, cutoff time.Time) ([]*models.Story, error) {
	var stories []*models.Story
	result := r.db.WithContext(ctx).
		Preload("Author").
		Where("created_at > ?", cutoff).
		Order("author_id ASC, created_at ASC, id ASC").
		Find(&stories)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list active stories: %w", MapGormError(result.Error))
	}
	return stories, nil
}

// ListByAuthor retrieves an author's stories created after the cutoff, oldest first
func (r *StoryRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, cutoff time.Time) ([]*models.Story, error) {
	var stories []*models.Story
	result := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Views").
		Where("author_id = ? AND created_at > ?", authorID.String(), cutoff).
		Order("created_at ASC, id ASC").
		Find(&stories)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list stories by author: %w", MapGormError(result.Error))
	}
	return stories, nil
}

// Delete removes a story and its view records
func (r *StoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// View rows go first; SQLite foreign keys are enforced on this connection.
	if err := r.db.WithContext(ctx).
		Where("story_id = ?", id.String()).
		Delete(&models.StoryView{}).Error; err != nil {
		return fmt.Errorf("failed to delete story views: %w", MapGormError(err))
	}

	result := r.db.WithContext(ctx).
		Where("id = ?", id.String()).
		Delete(&models.Story{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete story: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
