package model

import (
	"time"
)

type Discussion struct {
	BaseModel
	UserID   uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Title    string `gorm:"size:100;not null" json:"title"`
	Content  string `gorm:"size:2000" json:"content"`
	Category string `gorm:"size:50" json:"category"`
	Type     string `gorm:"size:30;default:'Question'" json:"type"` // Question, Resource, Study Group, Idea
	Tags     string `gorm:"size:500" json:"tags"`                   // comma-separated
	Status   string `gorm:"size:20;default:'Open'" json:"status"`
	// At most one best answer per discussion; a single field instead of a
	// per-post flag so two posts can never both be marked.
	BestAnswerPostID *uint           `gorm:"type:bigint unsigned" json:"bestAnswerPostId,omitempty"`
	ViewCount        int             `gorm:"default:0" json:"viewCount"`
	LikeCount        int             `gorm:"default:0" json:"likeCount"`
	Posts            []DiscussionPost `gorm:"foreignKey:DiscussionID" json:"posts,omitempty"`
}

func (Discussion) TableName() string {
	return "discussions"
}

// DiscussionPost is a reply inside a discussion thread.
type DiscussionPost struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	DiscussionID uint      `gorm:"index;type:bigint unsigned" json:"discussionId"`
	UserID       uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	User         User      `gorm:"foreignKey:UserID" json:"user"`
	Content      string    `gorm:"size:2000;not null" json:"content"`
	LikeCount    int       `gorm:"default:0" json:"likeCount"`
}

func (DiscussionPost) TableName() string {
	return "discussion_posts"
}
