package model

import (
	"time"
)

type NotificationType string

const (
	NotifyApproved NotificationType = "Approved"
	NotifyRejected NotificationType = "Rejected"
	NotifyUpload   NotificationType = "Upload"
	NotifySystem   NotificationType = "System"
)

// Notification is an in-app message created as a side effect of lifecycle
// and engagement events. Only IsRead is ever mutated after creation.
type Notification struct {
	ID         uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time        `json:"createdAt"`
	UserID     uint             `gorm:"index;type:bigint unsigned" json:"userId"`
	Title      string           `gorm:"size:100;not null" json:"title"`
	Message    string           `gorm:"size:500" json:"message"`
	Type       NotificationType `gorm:"size:30" json:"type"`
	Icon       string           `gorm:"size:50;default:'bi-bell'" json:"icon"`
	IconBg     string           `gorm:"size:20;default:'#dbeafe'" json:"iconBg"`
	Link       *string          `gorm:"size:500" json:"link,omitempty"`
	ResourceID *uint            `gorm:"index;type:bigint unsigned" json:"resourceId,omitempty"`
	IsRead     bool             `gorm:"default:false" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
