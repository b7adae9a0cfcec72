package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"
	"learnlink_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const unreadCacheTTL = 5 * time.Minute

// NotificationView is a notification decorated for the notification bell.
type NotificationView struct {
	model.Notification
	TimeAgo string `json:"timeAgo"`
}

// NotificationService persists in-app notifications and caches per-user
// unread counts in Redis. A nil Redis client degrades to database counts.
type NotificationService struct {
	Notifications NotificationStore
	Redis         *redis.Client
}

func NewNotificationService(notifications NotificationStore, redisClient *redis.Client) *NotificationService {
	return &NotificationService{Notifications: notifications, Redis: redisClient}
}

// Notify creates one notification and drops the recipient's cached count.
func (s *NotificationService) Notify(ctx context.Context, notif *model.Notification) error {
	if notif.UserID == 0 {
		return util.Validationf("notification needs a recipient")
	}
	if notif.Icon == "" {
		notif.Icon = "bi-bell"
	}
	if notif.IconBg == "" {
		notif.IconBg = "#dbeafe"
	}
	if err := s.Notifications.Create(notif); err != nil {
		return err
	}
	s.InvalidateUnread(notif.UserID)
	return nil
}

// NotifySystem fans a system announcement out to the given users.
func (s *NotificationService) NotifySystem(ctx context.Context, userIDs []uint, title, message string) error {
	for _, userID := range userIDs {
		err := s.Notify(ctx, &model.Notification{
			UserID:  userID,
			Title:   title,
			Message: message,
			Type:    model.NotifySystem,
			Icon:    "bi-lightbulb-fill",
			IconBg:  "#fef3c7",
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ListRecent returns the newest notifications with display-ready timestamps.
func (s *NotificationService) ListRecent(ctx context.Context, userID uint, limit int) ([]NotificationView, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	notifs, err := s.Notifications.ListRecent(userID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]NotificationView, 0, len(notifs))
	for _, n := range notifs {
		views = append(views, NotificationView{
			Notification: n,
			TimeAgo:      util.TimeAgo(n.CreatedAt),
		})
	}
	return views, nil
}

// CountUnread answers from Redis when possible, falling back to the store
// and repopulating the cache.
func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	key := unreadKey(userID)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			if count, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return count, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("unread cache read failed", zap.Uint("userId", userID), zap.Error(err))
		}
	}

	count, err := s.Notifications.CountUnread(userID)
	if err != nil {
		return 0, err
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, key, count, unreadCacheTTL).Err(); err != nil {
			logger.Log.Warn("unread cache write failed", zap.Uint("userId", userID), zap.Error(err))
		}
	}
	return count, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notifID uint) error {
	if err := s.Notifications.MarkRead(userID, notifID); err != nil {
		return err
	}
	s.InvalidateUnread(userID)
	return nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.Notifications.MarkAllRead(userID); err != nil {
		return err
	}
	s.InvalidateUnread(userID)
	return nil
}

// InvalidateUnread drops the cached unread count so the next read refreshes
// it from the store.
func (s *NotificationService) InvalidateUnread(userID uint) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Redis.Del(ctx, unreadKey(userID)).Err(); err != nil {
		logger.Log.Warn("unread cache invalidation failed", zap.Uint("userId", userID), zap.Error(err))
	}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("notify:unread:%d", userID)
}
