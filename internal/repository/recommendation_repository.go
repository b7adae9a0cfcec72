package repository

import (
	"learnlink_backend/internal/model"

	"gorm.io/gorm"
)

// RecommendationRepository is the MySQL-backed service.RecommendationStore.
type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

// Replace swaps the user's recommendation set atomically.
func (r *RecommendationRepository) Replace(userID uint, recs []model.Recommendation) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.Recommendation{}).Error; err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		return tx.Create(&recs).Error
	})
}

func (r *RecommendationRepository) ListByUser(userID uint) ([]model.Recommendation, error) {
	var recs []model.Recommendation
	err := r.DB.Preload("Resource").Preload("Resource.Uploader").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}
