package repository

import (
	"learnlink_backend/internal/model"

	"gorm.io/gorm"
)

// DiscussionRepository is the MySQL-backed service.DiscussionStore.
type DiscussionRepository struct {
	DB *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) *DiscussionRepository {
	return &DiscussionRepository{DB: db}
}

func (r *DiscussionRepository) FindByID(id uint) (*model.Discussion, error) {
	var discussion model.Discussion
	err := r.DB.Preload("User").
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("discussion_posts.created_at ASC")
		}).
		Preload("Posts.User").
		First(&discussion, id).Error
	if err != nil {
		return nil, err
	}
	return &discussion, nil
}

func (r *DiscussionRepository) Create(discussion *model.Discussion) error {
	return r.DB.Create(discussion).Error
}

func (r *DiscussionRepository) Save(discussion *model.Discussion) error {
	return r.DB.Omit("Posts", "User").Save(discussion).Error
}

// Delete removes the thread, its posts and the likes on both in one
// transaction.
func (r *DiscussionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&model.DiscussionPost{}).
			Where("discussion_id = ?", id).
			Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", model.TargetReply, postIDs).
				Delete(&model.Like{}).Error; err != nil {
				return err
			}
			if err := tx.Where("discussion_id = ?", id).Delete(&model.DiscussionPost{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_type = ? AND target_id = ?", model.TargetDiscussion, id).
			Delete(&model.Like{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Discussion{}, id).Error
	})
}

func (r *DiscussionRepository) List(category, search string, page, pageSize int) ([]model.Discussion, int64, error) {
	query := r.DB.Model(&model.Discussion{})
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
	var discussions []model.Discussion
	err := query.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&discussions).Error
	return discussions, total, err
}

func (r *DiscussionRepository) ListByUser(userID uint) ([]model.Discussion, error) {
	var discussions []model.Discussion
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&discussions).Error
	return discussions, err
}

func (r *DiscussionRepository) AllTags() ([]string, error) {
	var tags []string
	err := r.DB.Model(&model.Discussion{}).
		Where("tags <> ''").
		Pluck("tags", &tags).Error
	return tags, err
}

func (r *DiscussionRepository) FindPost(id uint) (*model.DiscussionPost, error) {
	var post model.DiscussionPost
	if err := r.DB.Preload("User").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *DiscussionRepository) CreatePost(post *model.DiscussionPost) error {
	return r.DB.Create(post).Error
}

func (r *DiscussionRepository) DeletePost(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id = ?", model.TargetReply, id).
			Delete(&model.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.DiscussionPost{}, id).Error
	})
}
