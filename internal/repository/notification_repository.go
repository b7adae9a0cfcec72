package repository

import (
	"learnlink_backend/internal/model"

	"gorm.io/gorm"
)

// NotificationRepository is the MySQL-backed service.NotificationStore.
type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(notif *model.Notification) error {
	return r.DB.Create(notif).Error
}

func (r *NotificationRepository) ListRecent(userID uint, limit int) ([]model.Notification, error) {
	var notifs []model.Notification
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifs).Error
	return notifs, err
}

func (r *NotificationRepository) CountUnread(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&total).Error
	return total, err
}

// MarkRead scopes by user so nobody can mark someone else's notification.
func (r *NotificationRepository) MarkRead(userID, notifID uint) error {
	result := r.DB.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notifID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(userID uint) error {
	return r.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
