package model

// Lesson is a "lesson learned" post a user shares about a resource.
type Lesson struct {
	BaseModel
	ResourceID   uint     `gorm:"index;type:bigint unsigned" json:"resourceId"`
	Resource     Resource `gorm:"foreignKey:ResourceID" json:"resource"`
	UserID       uint     `gorm:"index;type:bigint unsigned" json:"userId"`
	User         User     `gorm:"foreignKey:UserID" json:"user"`
	Title        string   `gorm:"size:100" json:"title"`
	Content      string   `gorm:"size:2000" json:"content"`
	Category     string   `gorm:"size:50" json:"category"`
	Tags         string   `gorm:"size:500" json:"tags"` // comma-separated
	LikeCount    int      `gorm:"default:0" json:"likeCount"`
	CommentCount int      `gorm:"default:0" json:"commentCount"`
}

func (Lesson) TableName() string {
	return "lessons"
}
