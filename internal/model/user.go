package model

import (
	"time"
)

type UserRole string

const (
	SuperAdmin  UserRole = "super_admin"
	Manager     UserRole = "manager"
	Contributor UserRole = "contributor"
	Student     UserRole = "student"
)

type UserStatus string

const (
	UserActive    UserStatus = "Active"
	UserInactive  UserStatus = "Inactive"
	UserSuspended UserStatus = "Suspended"
)

// swagger:model User
type User struct {
	BaseModel
	Name             string     `gorm:"size:100;not null" json:"name"`
	Email            string     `gorm:"size:100;unique;not null" json:"email"`
	Password         string     `gorm:"size:100;not null" json:"-"`
	Role             UserRole   `gorm:"type:enum('super_admin','manager','contributor','student');default:'student'" json:"role"`
	Status           UserStatus `gorm:"size:20;default:'Active'" json:"status"`
	Initials         string     `gorm:"size:5" json:"initials"`
	AvatarColor      string     `gorm:"size:200" json:"avatarColor"`
	GradeOrPosition  string     `gorm:"size:100" json:"gradeOrPosition"`
	SuspensionReason *string    `gorm:"size:500" json:"suspensionReason,omitempty"`
	SuspensionDate   *time.Time `json:"suspensionDate,omitempty"`
	LastLogin        time.Time  `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

// IsModerator reports whether the role may approve or reject resources.
func (u *User) IsModerator() bool {
	return u.Role == SuperAdmin || u.Role == Manager
}
