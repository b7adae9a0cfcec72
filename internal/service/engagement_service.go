package service

import (
	"context"
	"time"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
	"learnlink_backend/pkg/logger"

	"go.uber.org/zap"
)

// EngagementService handles likes, ratings, bookmarks and reading progress.
type EngagementService struct {
	Likes     LikeStore
	Resources ResourceStore
	Histories ReadingHistoryStore
	Activity  ActivityStore
}

func NewEngagementService(likes LikeStore, resources ResourceStore, histories ReadingHistoryStore, activity ActivityStore) *EngagementService {
	return &EngagementService{
		Likes:     likes,
		Resources: resources,
		Histories: histories,
		Activity:  activity,
	}
}

// ToggleLike flips the caller's like on the target and returns the new state
// plus the denormalized count. The store does the insert/delete and counter
// move atomically, so a double submit nets out to the pre-toggle state.
func (s *EngagementService) ToggleLike(ctx context.Context, userID uint, targetType model.LikeTarget, targetID uint) (liked bool, count int, err error) {
	if !targetType.Valid() {
		return false, 0, util.Validationf("unknown like target %q", targetType)
	}

	liked, count, err = s.Likes.Toggle(userID, targetType, targetID)
	if err != nil {
		return false, 0, err
	}

	if liked && targetType == model.TargetResource {
		resource, ferr := s.Resources.FindByID(targetID)
		if ferr == nil {
			if lerr := s.Activity.Log(&model.UserActivityLog{
				UserID:       userID,
				ActivityType: model.ActivityLike,
				TargetTitle:  resource.Title,
				ResourceID:   &resource.ID,
				ActivityDate: time.Now(),
			}); lerr != nil {
				logger.Log.Warn("activity log failed", zap.Error(lerr))
			}
		}
	}

	return liked, count, nil
}

// Rate records a 1-5 star rating and folds it into the running mean.
// A user may rate the same resource again; each submission counts.
func (s *EngagementService) Rate(ctx context.Context, userID uint, resourceID uint, rating int) (mean float64, ratingCount int, err error) {
	if rating < 1 || rating > 5 {
		return 0, 0, util.Validationf("rating must be between 1 and 5")
	}

	resource, err := s.Resources.FindByID(resourceID)
	if err != nil {
		return 0, 0, err
	}

	mean = (resource.Rating*float64(resource.RatingCount) + float64(rating)) / float64(resource.RatingCount+1)
	ratingCount = resource.RatingCount + 1

	if err := s.Resources.UpdateRating(resourceID, mean, ratingCount); err != nil {
		return 0, 0, err
	}
	return mean, ratingCount, nil
}

// ToggleBookmark flips the saved flag on the caller's reading-history row,
// creating the row on first use.
func (s *EngagementService) ToggleBookmark(ctx context.Context, userID, resourceID uint) (saved bool, err error) {
	if _, err := s.Resources.FindByID(resourceID); err != nil {
		return false, err
	}

	history, err := s.Histories.Find(userID, resourceID)
	if util.IsNotFound(err) {
		history = &model.ReadingHistory{
			UserID:       userID,
			ResourceID:   resourceID,
			IsBookmarked: true,
			LastAccessed: time.Now(),
		}
		if err := s.Histories.Save(history); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	history.IsBookmarked = !history.IsBookmarked
	if err := s.Histories.Save(history); err != nil {
		return false, err
	}
	return history.IsBookmarked, nil
}

// RecordView bumps the view counter and touches the caller's reading history.
// Viewing never regresses a Completed row back to In Progress.
func (s *EngagementService) RecordView(ctx context.Context, userID, resourceID uint) error {
	resource, err := s.Resources.FindByID(resourceID)
	if err != nil {
		return err
	}

	if err := s.Resources.IncrementView(resourceID); err != nil {
		logger.Log.Warn("view count update failed", zap.Uint("resourceId", resourceID), zap.Error(err))
	}

	if userID != 0 {
		if err := s.touchHistory(userID, resourceID); err != nil {
			return err
		}
		if err := s.Activity.Log(&model.UserActivityLog{
			UserID:       userID,
			ActivityType: model.ActivityView,
			TargetTitle:  resource.Title,
			ResourceID:   &resource.ID,
			ActivityDate: time.Now(),
		}); err != nil {
			logger.Log.Warn("activity log failed", zap.Error(err))
		}
	}
	return nil
}

// UpdateProgress sets an explicit progress percentage. Hitting 100 marks the
// row Completed and stamps the completion date once; the stamp survives
// later edits back below 100.
func (s *EngagementService) UpdateProgress(ctx context.Context, userID, resourceID uint, percent int) (*model.ReadingHistory, error) {
	if percent < 0 || percent > 100 {
		return nil, util.Validationf("progress must be between 0 and 100")
	}
	if _, err := s.Resources.FindByID(resourceID); err != nil {
		return nil, err
	}

	history, err := s.Histories.Find(userID, resourceID)
	if util.IsNotFound(err) {
		history = &model.ReadingHistory{UserID: userID, ResourceID: resourceID}
	} else if err != nil {
		return nil, err
	}

	history.ProgressPercent = percent
	history.LastAccessed = time.Now()
	switch {
	case percent >= 100:
		history.ProgressStatus = model.ProgressCompleted
		if history.CompletedDate == nil {
			now := time.Now()
			history.CompletedDate = &now
		}
	case percent > 0:
		history.ProgressStatus = model.ProgressInProgress
	default:
		history.ProgressStatus = model.ProgressNotStarted
	}

	if err := s.Histories.Save(history); err != nil {
		return nil, err
	}
	return history, nil
}

// ListHistory returns the caller's reading history, optionally only
// bookmarked rows.
func (s *EngagementService) ListHistory(ctx context.Context, userID uint, bookmarkedOnly bool) ([]model.ReadingHistory, error) {
	return s.Histories.ListByUser(userID, bookmarkedOnly)
}

// IsLiked reports whether the caller currently likes the target.
func (s *EngagementService) IsLiked(ctx context.Context, userID uint, targetType model.LikeTarget, targetID uint) (bool, error) {
	if !targetType.Valid() {
		return false, util.Validationf("unknown like target %q", targetType)
	}
	return s.Likes.IsLiked(userID, targetType, targetID)
}

func (s *EngagementService) touchHistory(userID, resourceID uint) error {
	history, err := s.Histories.Find(userID, resourceID)
	if util.IsNotFound(err) {
		history = &model.ReadingHistory{
			UserID:         userID,
			ResourceID:     resourceID,
			ProgressStatus: model.ProgressInProgress,
		}
	} else if err != nil {
		return err
	}

	if history.ProgressStatus != model.ProgressCompleted {
		history.ProgressStatus = model.ProgressInProgress
	}
	history.LastAccessed = time.Now()
	return s.Histories.Save(history)
}
