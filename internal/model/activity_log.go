package model

import (
	"time"
)

const (
	ActivityUpload     = "Upload"
	ActivityEdit       = "Edit"
	ActivityView       = "View"
	ActivityDownload   = "Download"
	ActivityApprove    = "Approve"
	ActivityReject     = "Reject"
	ActivityDelete     = "Delete"
	ActivityLike       = "Like"
	ActivityDiscussion = "Discussion"
	ActivityLogin      = "Login"
	ActivityRegister   = "Register"
	ActivityDeleteUser = "Delete User"
)

// UserActivityLog is an append-only audit trail entry.
type UserActivityLog struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	User         User      `gorm:"foreignKey:UserID" json:"user"`
	ActivityType string    `gorm:"size:50" json:"activityType"`
	TargetTitle  string    `gorm:"size:200" json:"targetTitle"`
	ResourceID   *uint     `gorm:"index;type:bigint unsigned" json:"resourceId,omitempty"`
	ActivityDate time.Time `gorm:"index" json:"activityDate"`
}

func (UserActivityLog) TableName() string {
	return "user_activity_logs"
}
