package repository

import (
	"learnlink_backend/internal/model"

	"gorm.io/gorm"
)

// StatsRepository answers the aggregate queries behind dashboards and
// reports; it is the MySQL-backed service.StatsStore.
type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

func (r *StatsRepository) CountResourcesByStatus() (map[model.ResourceStatus]int64, error) {
	rows := []struct {
		Status model.ResourceStatus
		Total  int64
	}{}
	err := r.DB.Model(&model.Resource{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ResourceStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *StatsRepository) CountUsersByRole() (map[model.UserRole]int64, error) {
	rows := []struct {
		Role  model.UserRole
		Total int64
	}{}
	err := r.DB.Model(&model.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.UserRole]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

func (r *StatsRepository) TopRated(limit int) ([]model.Resource, error) {
	return r.publishedOrdered("rating DESC, rating_count DESC", limit)
}

func (r *StatsRepository) MostViewed(limit int) ([]model.Resource, error) {
	return r.publishedOrdered("view_count DESC", limit)
}

func (r *StatsRepository) MostDownloaded(limit int) ([]model.Resource, error) {
	return r.publishedOrdered("download_count DESC", limit)
}

func (r *StatsRepository) UploadsBySubject() (map[string]int64, error) {
	rows := []struct {
		Subject string
		Total   int64
	}{}
	err := r.DB.Model(&model.Resource{}).
		Select("subject, COUNT(*) AS total").
		Where("status = ?", model.StatusPublished).
		Group("subject").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Subject] = row.Total
	}
	return counts, nil
}

func (r *StatsRepository) publishedOrdered(order string, limit int) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.Preload("Uploader").
		Where("status = ?", model.StatusPublished).
		Order(order).
		Limit(limit).
		Find(&resources).Error
	return resources, err
}
