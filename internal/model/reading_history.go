package model

import (
	"time"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "Not Started"
	ProgressInProgress ProgressStatus = "In Progress"
	ProgressCompleted  ProgressStatus = "Completed"
)

// ReadingHistory tracks one user's progress through one resource.
// One row per (user, resource); upserted on views, saves and progress updates.
type ReadingHistory struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint           `gorm:"uniqueIndex:idx_user_resource;type:bigint unsigned" json:"userId"`
	ResourceID      uint           `gorm:"uniqueIndex:idx_user_resource;type:bigint unsigned" json:"resourceId"`
	Resource        Resource       `gorm:"foreignKey:ResourceID" json:"resource"`
	ProgressStatus  ProgressStatus `gorm:"size:20;default:'Not Started'" json:"progressStatus"`
	ProgressPercent int            `gorm:"default:0" json:"progressPercent"`
	IsBookmarked    bool           `gorm:"default:false" json:"isBookmarked"`
	LastAccessed    time.Time      `json:"lastAccessed"`
	CompletedDate   *time.Time     `json:"completedDate,omitempty"`
}

func (ReadingHistory) TableName() string {
	return "reading_histories"
}
