package repository

import (
	"learnlink_backend/internal/model"

	"gorm.io/gorm"
)

// LessonRepository is the MySQL-backed service.LessonStore.
type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Preload("User").Preload("Resource").First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) Save(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id = ?", model.TargetLesson, id).
			Delete(&model.Like{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Lesson{}, id).Error
	})
}

func (r *LessonRepository) ListByUser(userID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Preload("Resource").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) Stats() (total, likes, contributors int64, err error) {
	if err = r.DB.Model(&model.Lesson{}).Count(&total).Error; err != nil {
		return
	}
	if err = r.DB.Model(&model.Lesson{}).
		Select("COALESCE(SUM(like_count), 0)").
		Scan(&likes).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.Lesson{}).Distinct("user_id").Count(&contributors).Error
	return
}

func (r *LessonRepository) List(category, search string, page, pageSize int) ([]model.Lesson, int64, error) {
	query := r.DB.Model(&model.Lesson{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	var lessons []model.Lesson
	err := query.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&lessons).Error
	return lessons, total, err
}
