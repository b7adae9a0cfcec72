package model

import (
	"time"
)

const (
	RecommendTopRated = "top_rated"
	RecommendTrending = "trending"
)

// Recommendation links a user to a resource surfaced by the rule-based
// recommendation queries. Rows are cleaned up when the resource is deleted.
type Recommendation struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt          time.Time `json:"createdAt"`
	UserID             uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	ResourceID         uint      `gorm:"index;type:bigint unsigned" json:"resourceId"`
	Resource           Resource  `gorm:"foreignKey:ResourceID" json:"resource"`
	RecommendationType string    `gorm:"size:30" json:"recommendationType"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
