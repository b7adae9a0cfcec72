package repository

import (
	"time"

	"learnlink_backend/internal/model"

	"gorm.io/gorm"
)

// ActivityRepository is the MySQL-backed service.ActivityStore.
type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Log(log *model.UserActivityLog) error {
	if log.ActivityDate.IsZero() {
		log.ActivityDate = time.Now()
	}
	return r.DB.Create(log).Error
}

func (r *ActivityRepository) ListByUser(userID uint, limit int) ([]model.UserActivityLog, error) {
	var logs []model.UserActivityLog
	err := r.DB.Where("user_id = ?", userID).
		Order("activity_date DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *ActivityRepository) ListRecent(limit int) ([]model.UserActivityLog, error) {
	var logs []model.UserActivityLog
	err := r.DB.Preload("User").
		Order("activity_date DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *ActivityRepository) CountByTypeSince(activityType string, sinceDays int) (map[string]int64, error) {
	since := time.Now().AddDate(0, 0, -sinceDays)
	rows := []struct {
		ActivityType string
		Total        int64
	}{}
	err := r.DB.Model(&model.UserActivityLog{}).
		Select("activity_type, COUNT(*) AS total").
		Where("activity_date >= ?", since).
		Group("activity_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ActivityType] = row.Total
	}
	if activityType != "" {
		return map[string]int64{activityType: counts[activityType]}, nil
	}
	return counts, nil
}
