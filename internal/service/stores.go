package service

import (
	"learnlink_backend/internal/model"
)

// ResourceFilter narrows resource listings. Zero values mean "any".
type ResourceFilter struct {
	Search     string
	Subject    string
	GradeLevel string
	Type       string
	Quarter    string
	Status     model.ResourceStatus
	UploaderID uint
	Page       int
	PageSize   int
}

// ResourceStore is the persistence surface of the resource lifecycle.
// The *WithSideEffects methods run the mutation, activity log and
// notification writes in one transaction.
type ResourceStore interface {
	FindByID(id uint) (*model.Resource, error)
	ListByIDs(ids []uint) ([]model.Resource, error)
	List(filter ResourceFilter) ([]model.Resource, int64, error)
	CreateWithSideEffects(res *model.Resource, log *model.UserActivityLog, notifs []*model.Notification) error
	SaveWithSideEffects(res *model.Resource, log *model.UserActivityLog, notifs []*model.Notification) error
	UpdateRating(id uint, rating float64, ratingCount int) error
	IncrementView(id uint) error
	IncrementDownload(id uint) error
	// DeleteCascade removes the resources and every dependent row
	// (reading history, activity logs, notifications, recommendations)
	// in a single transaction, then records the delete logs.
	DeleteCascade(ids []uint, logs []*model.UserActivityLog) error
}

// LikeStore toggles polymorphic likes. Toggle must be atomic: the like row
// insert/delete and the denormalized counter move together, and the counter
// never drops below zero.
type LikeStore interface {
	Toggle(userID uint, targetType model.LikeTarget, targetID uint) (liked bool, count int, err error)
	IsLiked(userID uint, targetType model.LikeTarget, targetID uint) (bool, error)
	ListLikedTargetIDs(userID uint, targetType model.LikeTarget) ([]uint, error)
}

// ReadingHistoryStore tracks per-user progress rows, one per (user, resource).
type ReadingHistoryStore interface {
	Find(userID, resourceID uint) (*model.ReadingHistory, error)
	Save(history *model.ReadingHistory) error
	ListByUser(userID uint, bookmarkedOnly bool) ([]model.ReadingHistory, error)
	CountCompleted(userID uint) (int64, error)
}

// NotificationStore persists notifications and answers unread counts.
type NotificationStore interface {
	Create(notif *model.Notification) error
	ListRecent(userID uint, limit int) ([]model.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(userID, notifID uint) error
	MarkAllRead(userID uint) error
}

type LessonStore interface {
	FindByID(id uint) (*model.Lesson, error)
	Create(lesson *model.Lesson) error
	Save(lesson *model.Lesson) error
	Delete(id uint) error
	List(category, search string, page, pageSize int) ([]model.Lesson, int64, error)
	ListByUser(userID uint) ([]model.Lesson, error)
	// Stats returns the lesson board aggregates: total lessons, summed
	// like counts and distinct contributing users.
	Stats() (total, likes, contributors int64, err error)
}

type DiscussionStore interface {
	FindByID(id uint) (*model.Discussion, error)
	Create(discussion *model.Discussion) error
	Save(discussion *model.Discussion) error
	// Delete removes the discussion and its posts in one transaction.
	Delete(id uint) error
	List(category, search string, page, pageSize int) ([]model.Discussion, int64, error)
	ListByUser(userID uint) ([]model.Discussion, error)
	// AllTags returns the raw comma-separated tags column of every thread.
	AllTags() ([]string, error)
	FindPost(id uint) (*model.DiscussionPost, error)
	CreatePost(post *model.DiscussionPost) error
	DeletePost(id uint) error
}

type UserStore interface {
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Create(user *model.User) error
	Save(user *model.User) error
	Delete(id uint) error
	List(role model.UserRole, search string, page, pageSize int) ([]model.User, int64, error)
	ListModerators() ([]model.User, error)
}

type ActivityStore interface {
	Log(log *model.UserActivityLog) error
	ListByUser(userID uint, limit int) ([]model.UserActivityLog, error)
	ListRecent(limit int) ([]model.UserActivityLog, error)
	CountByTypeSince(activityType string, since int) (map[string]int64, error)
}

type RecommendationStore interface {
	Replace(userID uint, recs []model.Recommendation) error
	ListByUser(userID uint) ([]model.Recommendation, error)
}

// StatsStore answers the aggregate queries behind dashboards and reports.
type StatsStore interface {
	CountResourcesByStatus() (map[model.ResourceStatus]int64, error)
	CountUsersByRole() (map[model.UserRole]int64, error)
	TopRated(limit int) ([]model.Resource, error)
	MostViewed(limit int) ([]model.Resource, error)
	MostDownloaded(limit int) ([]model.Resource, error)
	UploadsBySubject() (map[string]int64, error)
}
