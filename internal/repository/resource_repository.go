package repository

import (
	"learnlink_backend/internal/model"
	"learnlink_backend/internal/service"

	"gorm.io/gorm"
)

// ResourceRepository is the MySQL-backed service.ResourceStore.
type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) FindByID(id uint) (*model.Resource, error) {
	var resource model.Resource
	if err := r.DB.Preload("Uploader").First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *ResourceRepository) ListByIDs(ids []uint) ([]model.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var resources []model.Resource
	err := r.DB.Preload("Uploader").Where("id IN ?", ids).Find(&resources).Error
	return resources, err
}

func (r *ResourceRepository) List(filter service.ResourceFilter) ([]model.Resource, int64, error) {
	query := r.DB.Model(&model.Resource{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.GradeLevel != "" {
		query = query.Where("grade_level = ?", filter.GradeLevel)
	}
	if filter.Type != "" {
		query = query.Where("resource_type = ?", filter.Type)
	}
	if filter.Quarter != "" {
		query = query.Where("quarter = ?", filter.Quarter)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UploaderID != 0 {
		query = query.Where("uploader_id = ?", filter.UploaderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var resources []model.Resource
	err := query.Preload("Uploader").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&resources).Error
	return resources, total, err
}

func (r *ResourceRepository) CreateWithSideEffects(res *model.Resource, log *model.UserActivityLog, notifs []*model.Notification) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(res).Error; err != nil {
			return err
		}
		log.ResourceID = &res.ID
		for _, n := range notifs {
			if n.ResourceID == nil {
				n.ResourceID = &res.ID
			}
		}
		return writeSideEffects(tx, log, notifs)
	})
}

func (r *ResourceRepository) SaveWithSideEffects(res *model.Resource, log *model.UserActivityLog, notifs []*model.Notification) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(res).Error; err != nil {
			return err
		}
		return writeSideEffects(tx, log, notifs)
	})
}

func (r *ResourceRepository) UpdateRating(id uint, rating float64, ratingCount int) error {
	return r.DB.Model(&model.Resource{}).Where("id = ?", id).
		Updates(map[string]interface{}{"rating": rating, "rating_count": ratingCount}).Error
}

func (r *ResourceRepository) IncrementView(id uint) error {
	return r.DB.Model(&model.Resource{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *ResourceRepository) IncrementDownload(id uint) error {
	return r.DB.Model(&model.Resource{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}

// DeleteCascade removes resources and every dependent row in one
// transaction. Dependents go first so a mid-way failure rolls everything
// back instead of leaving dangling references.
func (r *ResourceRepository) DeleteCascade(ids []uint, logs []*model.UserActivityLog) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id IN ?", ids).Delete(&model.ReadingHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id IN ?", ids).Delete(&model.UserActivityLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id IN ?", ids).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id IN ?", ids).Delete(&model.Recommendation{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("id IN ?", ids).Delete(&model.Resource{}).Error; err != nil {
			return err
		}
		for _, log := range logs {
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSideEffects(tx *gorm.DB, log *model.UserActivityLog, notifs []*model.Notification) error {
	if log != nil {
		if err := tx.Create(log).Error; err != nil {
			return err
		}
	}
	for _, n := range notifs {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
