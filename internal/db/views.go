package db

import (
	"context"
	"fmt"

	"github.com/glancelabs/glance/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// ViewRepository handles database operations for story view records
type ViewRepository struct {
	db *DB
}

// NewViewRepository creates a new view repository
func NewViewRepository(db *DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Record inserts a view record for a (story, viewer) pair.
// The insert is idempotent: a second view of the same story by the same
// viewer is silently ignored, keeping at most one row per pair.
func (r *ViewRepository) Record(ctx context.Context, view *models.StoryView) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "story_id"}, {Name: "viewer_id"}},
			DoNothing: true,
		}).
		Create(view)
	if result.Error != nil {
		return fmt.Errorf("failed to record story view: %w", MapGormError(result.Error))
	}
	return nil
}

// ListForStory retrieves all view records for a story with viewers preloaded,
// in the order they were recorded
func (r *ViewRepository) ListForStory(ctx context.Context, storyID uuid.UUID) ([]*models.StoryView, error) {
	var views []*models.StoryView
	result := r.db.WithContext(ctx).
		Preload("Viewer").
		Where("story_id = ?", storyID.String()).
		Order("viewed_at ASC, id ASC").
		Find(&views)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list story views: %w", MapGormError(result.Error))
	}
	return views, nil
}

// ViewedStoryIDs returns the subset of storyIDs the viewer has already seen
func (r *ViewRepository) ViewedStoryIDs(ctx context.Context, viewerID uuid.UUID, storyIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	seen := make(map[uuid.UUID]bool, len(storyIDs))
	if len(storyIDs) == 0 {
		return seen, nil
	}

	ids := make([]string, 0, len(storyIDs))
	for _, id := range storyIDs {
		ids = append(ids, id.String())
	}

	var views []*models.StoryView
	result := r.db.WithContext(ctx).
		Where("viewer_id = ? AND story_id IN ?", viewerID.String(), ids).
		Find(&views)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query viewed stories: %w", MapGormError(result.Error))
	}

	for _, v := range views {
		seen[v.StoryID] = true
	}
	return seen, nil
}
