package model

import (
	"time"
)

// LikeTarget is the polymorphic subject of a Like.
type LikeTarget string

const (
	TargetResource   LikeTarget = "resource"
	TargetLesson     LikeTarget = "lesson"
	TargetDiscussion LikeTarget = "discussion"
	TargetReply      LikeTarget = "reply"
)

func (t LikeTarget) Valid() bool {
	switch t {
	case TargetResource, TargetLesson, TargetDiscussion, TargetReply:
		return true
	}
	return false
}

// Like is a per-user engagement record. The composite unique index keeps
// at most one row per (user, target kind, target id); toggling races on
// concurrent requests resolve on the constraint, not on a read-then-write.
type Like struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time  `json:"createdAt"`
	UserID     uint       `gorm:"uniqueIndex:idx_user_target;type:bigint unsigned" json:"userId"`
	TargetType LikeTarget `gorm:"uniqueIndex:idx_user_target;size:20" json:"targetType"`
	TargetID   uint       `gorm:"uniqueIndex:idx_user_target;type:bigint unsigned" json:"targetId"`
}

func (Like) TableName() string {
	return "likes"
}
