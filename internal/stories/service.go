package stories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/glancelabs/glance/internal/db"
	"github.com/glancelabs/glance/internal/logger"
	"github.com/glancelabs/glance/internal/media"
	"github.com/glancelabs/glance/internal/models"
	"github.com/google/uuid"
)

// Service handles business logic for story operations
type Service struct {
	repos    *db.Repositories
	detector *media.Detector
	ttl      time.Duration
}

// NewService creates a new story service instance
func NewService(repos *db.Repositories, detector *media.Detector, ttl time.Duration) *Service {
	return &Service{
		repos:    repos,
		detector: detector,
		ttl:      ttl,
	}
}

// cutoff returns the expiry boundary: stories created at or before it are gone
func (s *Service) cutoff() time.Time {
	return time.Now().UTC().Add(-s.ttl)
}

// Create posts a new story for the author after validating the media URL
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, mediaURL string, caption *string, durationMs int64) (*models.Story, error) {
	mediaType, err := s.detector.Detect(mediaURL)
	if err != nil {
		logger.Log.Warn().
			Str("media_url", mediaURL).
			Msg("Story creation failed: unsupported media")
		return nil, fmt.Errorf("%w: %s", ErrInvalidMedia, mediaURL)
	}

	if _, err := s.repos.Users.GetByID(ctx, authorID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load author: %w", err)
	}

	story := models.NewStory(authorID, mediaType, mediaURL)
	story.Caption = caption
	if mediaType == models.MediaTypeVideo && durationMs > 0 {
		story.DurationMs = durationMs
	}

	if err := s.repos.Stories.Create(ctx, story); err != nil {
		logger.Log.Error().
			Err(err).
			Str("author_id", authorID.String()).
			Msg("Failed to create story in database")
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	logger.Log.Info().
		Str("story_id", story.ID.String()).
		Str("author_id", authorID.String()).
		Str("media_type", string(mediaType)).
		Msg("Story created")

	return story, nil
}

// Timeline builds the ordered snapshot of author groups for a viewer.
// Expired stories are filtered by the query, never by the caller. Groups
// with unviewed stories come first, then groups by newest story; ties
// break on author ID so the ordering is stable across refetches.
func (s *Service) Timeline(ctx context.Context, viewerID uuid.UUID) ([]AuthorGroup, error) {
	active, err := s.repos.Stories.ListActive(ctx, s.cutoff())
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to load active stories")
		return nil, fmt.Errorf("failed to build timeline: %w", err)
	}

	if len(active) == 0 {
		return []AuthorGroup{}, nil
	}

	ids := make([]uuid.UUID, 0, len(active))
	for _, st := range active {
		ids = append(ids, st.ID)
	}
	seen, err := s.repos.Views.ViewedStoryIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline: %w", err)
	}

	// The query keeps each author's stories contiguous and oldest first.
	var groups []AuthorGroup
	byAuthor := make(map[uuid.UUID]int)
	for _, st := range active {
		idx, ok := byAuthor[st.AuthorID]
		if !ok {
			idx = len(groups)
			byAuthor[st.AuthorID] = idx
			groups = append(groups, AuthorGroup{
				Author: userRef(st.AuthorID, st.Author),
			})
		}
		viewed := seen[st.ID]
		groups[idx].Stories = append(groups[idx].Stories, toItem(st, viewed))
		if !viewed && st.AuthorID != viewerID {
			groups[idx].HasUnviewed = true
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].HasUnviewed != groups[j].HasUnviewed {
			return groups[i].HasUnviewed
		}
		ni := newestCreatedAt(groups[i].Stories)
		nj := newestCreatedAt(groups[j].Stories)
		if !ni.Equal(nj) {
			return ni.After(nj)
		}
		return groups[i].Author.ID.String() < groups[j].Author.ID.String()
	})

	logger.Log.Debug().
		Int("authors", len(groups)).
		Int("stories", len(active)).
		Str("viewer_id", viewerID.String()).
		Msg("Timeline snapshot built")

	return groups, nil
}

// newestCreatedAt returns the creation time of the most recent story in the list
func newestCreatedAt(items []Item) time.Time {
	var newest time.Time
	for _, it := range items {
		if it.CreatedAt.After(newest) {
			newest = it.CreatedAt
		}
	}
	return newest
}

// OwnStories retrieves the owner's non-expired stories for the management view
func (s *Service) OwnStories(ctx context.Context, ownerID uuid.UUID) ([]*models.Story, error) {
	list, err := s.repos.Stories.ListByAuthor(ctx, ownerID, s.cutoff())
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("owner_id", ownerID.String()).
			Msg("Failed to list own stories")
		return nil, fmt.Errorf("failed to list own stories: %w", err)
	}
	return list, nil
}

// MarkViewed records that a viewer has seen a story. The call is a no-op
// when the viewer is the story's author, and idempotent otherwise.
func (s *Service) MarkViewed(ctx context.Context, storyID, viewerID uuid.UUID) error {
	story, err := s.getActive(ctx, storyID)
	if err != nil {
		return err
	}

	if story.AuthorID == viewerID {
		// Owners never appear in their own viewer list.
		return nil
	}

	if err := s.repos.Views.Record(ctx, models.NewStoryView(storyID, viewerID)); err != nil {
		logger.Log.Error().
			Err(err).
			Str("story_id", storyID.String()).
			Str("viewer_id", viewerID.String()).
			Msg("Failed to record story view")
		return fmt.Errorf("failed to mark story viewed: %w", err)
	}

	return nil
}

// Viewers retrieves the viewer list for a story. Only the story's owner may
// call this; a reflected entry for the owner (inconsistent server state) is
// filtered out before return.
func (s *Service) Viewers(ctx context.Context, storyID, requesterID uuid.UUID) ([]*models.StoryView, error) {
	story, err := s.getActive(ctx, storyID)
	if err != nil {
		return nil, err
	}

	if story.AuthorID != requesterID {
		return nil, ErrNotOwner
	}

	views, err := s.repos.Views.ListForStory(ctx, storyID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("story_id", storyID.String()).
			Msg("Failed to load story viewers")
		return nil, fmt.Errorf("failed to load viewers: %w", err)
	}

	filtered := make([]*models.StoryView, 0, len(views))
	for _, v := range views {
		if v.ViewerID == requesterID {
			continue
		}
		filtered = append(filtered, v)
	}

	return filtered, nil
}

// Delete removes a story. Only the story's owner may delete it.
func (s *Service) Delete(ctx context.Context, storyID, requesterID uuid.UUID) error {
	story, err := s.getActive(ctx, storyID)
	if err != nil {
		return err
	}

	if story.AuthorID != requesterID {
		return ErrNotOwner
	}

	if err := s.repos.Stories.Delete(ctx, storyID); err != nil {
		if db.IsNotFound(err) {
			return ErrStoryNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("story_id", storyID.String()).
			Msg("Failed to delete story")
		return fmt.Errorf("failed to delete story: %w", err)
	}

	logger.Log.Info().
		Str("story_id", storyID.String()).
		Str("owner_id", requesterID.String()).
		Msg("Story deleted")

	return nil
}

// getActive loads a story and treats expired ones as missing
func (s *Service) getActive(ctx context.Context, storyID uuid.UUID) (*models.Story, error) {
	story, err := s.repos.Stories.GetByID(ctx, storyID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	if !story.CreatedAt.After(s.cutoff()) {
		return nil, ErrStoryNotFound
	}
	return story, nil
}

// IsNotFound reports whether the error is a missing-story or missing-user error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStoryNotFound) || errors.Is(err, ErrUserNotFound)
}
