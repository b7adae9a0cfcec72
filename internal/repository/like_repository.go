package repository

import (
	"errors"

	"learnlink_backend/internal/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// LikeRepository is the MySQL-backed service.LikeStore. The toggle runs in
// a transaction so the like row and the denormalized counter always move
// together; the composite unique index on (user, target kind, target id)
// resolves concurrent toggles.
type LikeRepository struct {
	DB *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{DB: db}
}

// counter table and column per like target
func likeCounterTable(target model.LikeTarget) string {
	switch target {
	case model.TargetResource:
		return "resources"
	case model.TargetLesson:
		return "lessons"
	case model.TargetDiscussion:
		return "discussions"
	case model.TargetReply:
		return "discussion_posts"
	}
	return ""
}

func (r *LikeRepository) Toggle(userID uint, targetType model.LikeTarget, targetID uint) (bool, int, error) {
	table := likeCounterTable(targetType)
	if table == "" {
		return false, 0, gorm.ErrRecordNotFound
	}

	var liked bool
	var count int
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Table(table).Where("id = ?", targetID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}

		var like model.Like
		err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			First(&like).Error
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			if err := tx.Table(table).Where("id = ?", targetID).
				UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			like = model.Like{UserID: userID, TargetType: targetType, TargetID: targetID}
			if err := tx.Create(&like).Error; err != nil {
				// A concurrent toggle won the insert race. Treat this call as
				// the un-like half of the pair instead of failing the request.
				// MySQL keeps the transaction usable after a 1062.
				if !isDuplicateKey(err) {
					return err
				}
				if err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
					Delete(&model.Like{}).Error; err != nil {
					return err
				}
				if err := tx.Table(table).Where("id = ?", targetID).
					UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).Error; err != nil {
					return err
				}
				liked = false
				break
			}
			if err := tx.Table(table).Where("id = ?", targetID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
				return err
			}
			liked = true
		default:
			return err
		}

		return tx.Table(table).Select("like_count").Where("id = ?", targetID).Scan(&count).Error
	})
	return liked, count, err
}

// isDuplicateKey reports whether err is a unique-constraint violation, either
// as gorm's translated sentinel or as the raw MySQL 1062 driver error.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (r *LikeRepository) IsLiked(userID uint, targetType model.LikeTarget, targetID uint) (bool, error) {
	var total int64
	err := r.DB.Model(&model.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Count(&total).Error
	return total > 0, err
}

func (r *LikeRepository) ListLikedTargetIDs(userID uint, targetType model.LikeTarget) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Like{}).
		Where("user_id = ? AND target_type = ?", userID, targetType).
		Pluck("target_id", &ids).Error
	return ids, err
}
