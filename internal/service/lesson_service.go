package service

import (
	"context"
	"fmt"
	"strings"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
	"learnlink_backend/pkg/logger"

	"go.uber.org/zap"
)

// LessonService manages the "lessons learned" posts users attach to
// published resources.
type LessonService struct {
	Lessons   LessonStore
	Resources ResourceStore
	Likes     LikeStore
	Notify    *NotificationService
}

func NewLessonService(lessons LessonStore, resources ResourceStore, likes LikeStore, notify *NotificationService) *LessonService {
	return &LessonService{Lessons: lessons, Resources: resources, Likes: likes, Notify: notify}
}

// LessonView is a lesson decorated with the caller's like state.
type LessonView struct {
	model.Lesson
	Liked bool `json:"liked"`
}

// LessonStats are the aggregates shown above the lesson board.
type LessonStats struct {
	TotalLessons int64 `json:"totalLessons"`
	TotalLikes   int64 `json:"totalLikes"`
	Contributors int64 `json:"contributors"`
}

type LessonInput struct {
	ResourceID uint   `json:"resourceId" binding:"required"`
	Title      string `json:"title" binding:"required,max=100"`
	Content    string `json:"content" binding:"required,max=2000"`
	Category   string `json:"category"`
	Tags       string `json:"tags"`
}

// Create posts a lesson against a published resource and tells the
// resource's uploader about it.
func (s *LessonService) Create(ctx context.Context, userID uint, input LessonInput) (*model.Lesson, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, util.Validationf("title and content are required")
	}

	resource, err := s.Resources.FindByID(input.ResourceID)
	if err != nil {
		return nil, err
	}
	if resource.Status != model.StatusPublished {
		return nil, util.Validationf("lessons can only be shared on published resources")
	}

	lesson := &model.Lesson{
		ResourceID: resource.ID,
		UserID:     userID,
		Title:      strings.TrimSpace(input.Title),
		Content:    input.Content,
		Category:   input.Category,
		Tags:       input.Tags,
	}
	if err := s.Lessons.Create(lesson); err != nil {
		return nil, err
	}

	if s.Notify != nil && resource.UploaderID != userID {
		link := fmt.Sprintf("/lessons/%d", lesson.ID)
		if err := s.Notify.Notify(ctx, &model.Notification{
			UserID:     resource.UploaderID,
			Title:      "New Lesson Learned",
			Message:    fmt.Sprintf("A lesson was shared on your resource '%s'.", resource.Title),
			Type:       model.NotifySystem,
			Icon:       "bi-lightbulb-fill",
			IconBg:     "#fef3c7",
			Link:       &link,
			ResourceID: &resource.ID,
		}); err != nil {
			logger.Log.Warn("lesson notification failed", zap.Uint("lessonId", lesson.ID), zap.Error(err))
		}
	}
	return lesson, nil
}

// Get returns one lesson with the caller's like state. An anonymous caller
// (userID 0) always sees liked=false.
func (s *LessonService) Get(ctx context.Context, userID, id uint) (*LessonView, error) {
	lesson, err := s.Lessons.FindByID(id)
	if err != nil {
		return nil, err
	}
	view := &LessonView{Lesson: *lesson}
	if userID != 0 {
		if view.Liked, err = s.Likes.IsLiked(userID, model.TargetLesson, id); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// List pages through lessons, optionally filtered by category or a
// title/content search, marking the ones the caller has liked.
func (s *LessonService) List(ctx context.Context, userID uint, category, search string, page, pageSize int) ([]LessonView, int64, error) {
	lessons, total, err := s.Lessons.List(category, search, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	liked, err := s.likedSet(userID)
	if err != nil {
		return nil, 0, err
	}

	views := make([]LessonView, 0, len(lessons))
	for _, lesson := range lessons {
		views = append(views, LessonView{Lesson: lesson, Liked: liked[lesson.ID]})
	}
	return views, total, nil
}

// Stats returns the lesson board aggregates.
func (s *LessonService) Stats(ctx context.Context) (*LessonStats, error) {
	total, likes, contributors, err := s.Lessons.Stats()
	if err != nil {
		return nil, err
	}
	return &LessonStats{TotalLessons: total, TotalLikes: likes, Contributors: contributors}, nil
}

func (s *LessonService) likedSet(userID uint) (map[uint]bool, error) {
	if userID == 0 {
		return nil, nil
	}
	ids, err := s.Likes.ListLikedTargetIDs(userID, model.TargetLesson)
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Update edits a lesson. Only the author or a moderator may edit.
func (s *LessonService) Update(ctx context.Context, actorID uint, actorRole model.UserRole, id uint, title, content, category, tags *string) (*model.Lesson, error) {
	lesson, err := s.Lessons.FindByID(id)
	if err != nil {
		return nil, err
	}
	if lesson.UserID != actorID && !isModerator(actorRole) {
		return nil, util.ErrPermissionDenied
	}

	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, util.Validationf("title is required")
		}
		lesson.Title = strings.TrimSpace(*title)
	}
	if content != nil {
		lesson.Content = *content
	}
	if category != nil {
		lesson.Category = *category
	}
	if tags != nil {
		lesson.Tags = *tags
	}

	if err := s.Lessons.Save(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Delete removes a lesson. Only the author or a moderator may delete.
func (s *LessonService) Delete(ctx context.Context, actorID uint, actorRole model.UserRole, id uint) error {
	lesson, err := s.Lessons.FindByID(id)
	if err != nil {
		return err
	}
	if lesson.UserID != actorID && !isModerator(actorRole) {
		return util.ErrPermissionDenied
	}
	return s.Lessons.Delete(id)
}
