package repository

import (
	"learnlink_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadingHistoryRepository is the MySQL-backed service.ReadingHistoryStore.
type ReadingHistoryRepository struct {
	DB *gorm.DB
}

func NewReadingHistoryRepository(db *gorm.DB) *ReadingHistoryRepository {
	return &ReadingHistoryRepository{DB: db}
}

func (r *ReadingHistoryRepository) Find(userID, resourceID uint) (*model.ReadingHistory, error) {
	var history model.ReadingHistory
	err := r.DB.Where("user_id = ? AND resource_id = ?", userID, resourceID).
		First(&history).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// Save upserts on the (user, resource) unique index so concurrent first
// touches collapse into one row.
func (r *ReadingHistoryRepository) Save(history *model.ReadingHistory) error {
	if history.ID != 0 {
		return r.DB.Save(history).Error
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "resource_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"progress_status", "progress_percent", "is_bookmarked", "last_accessed", "completed_date",
		}),
	}).Create(history).Error
}

func (r *ReadingHistoryRepository) ListByUser(userID uint, bookmarkedOnly bool) ([]model.ReadingHistory, error) {
	query := r.DB.Preload("Resource").Preload("Resource.Uploader").
		Where("user_id = ?", userID)
	if bookmarkedOnly {
		query = query.Where("is_bookmarked = ?", true)
	}

	var histories []model.ReadingHistory
	err := query.Order("last_accessed DESC").Find(&histories).Error
	return histories, err
}

func (r *ReadingHistoryRepository) CountCompleted(userID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.ReadingHistory{}).
		Where("user_id = ? AND progress_status = ?", userID, model.ProgressCompleted).
		Count(&total).Error
	return total, err
}
