package model

type ResourceStatus string

const (
	StatusDraft     ResourceStatus = "Draft"
	StatusPending   ResourceStatus = "Pending"
	StatusPublished ResourceStatus = "Published"
	StatusRejected  ResourceStatus = "Rejected"
)

// Resource is an uploaded teaching material going through the
// Draft -> Pending -> Published/Rejected moderation lifecycle.
// swagger:model Resource
type Resource struct {
	BaseModel
	Title        string         `gorm:"size:100;not null" json:"title"`
	Description  string         `gorm:"size:500" json:"description"`
	Subject      string         `gorm:"size:50" json:"subject"`
	GradeLevel   string         `gorm:"size:30" json:"gradeLevel"`
	ResourceType string         `gorm:"size:30" json:"resourceType"`
	Quarter      string         `gorm:"size:50" json:"quarter"`
	FileKey      string         `gorm:"size:100" json:"-"` // opaque storage key, e.g. "ll/<uuid>.pdf"
	FileFormat   string         `gorm:"size:20" json:"fileFormat"`
	FileSize     int64          `gorm:"default:0" json:"fileSize"`
	UploaderID   uint           `gorm:"index;type:bigint unsigned" json:"uploaderId"`
	Uploader     User           `gorm:"foreignKey:UploaderID" json:"uploader"`
	Status       ResourceStatus `gorm:"size:20;default:'Draft';index" json:"status"`
	// Set while Rejected, cleared on approval.
	RejectionReason *string `gorm:"size:500" json:"rejectionReason,omitempty"`
	ViewCount       int     `gorm:"default:0" json:"viewCount"`
	DownloadCount   int     `gorm:"default:0" json:"downloadCount"`
	LikeCount       int     `gorm:"default:0" json:"likeCount"`
	Rating          float64 `gorm:"default:0" json:"rating"` // running mean
	RatingCount     int     `gorm:"default:0" json:"ratingCount"`
}

func (Resource) TableName() string {
	return "resources"
}
