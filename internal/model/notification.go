package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationTypeFriendRequest  = "friend_request"
	NotificationTypeFriendAccepted = "friend_accepted"
	NotificationTypeMessage        = "message"
	NotificationTypeGroupMessage   = "group_message"
	NotificationTypeGroupBlog      = "group_blog"
	NotificationTypeRouteShared    = "route_shared"
	NotificationTypeBlogComment    = "blog_comment"
	NotificationTypeSystem         = "system"
)

// Notification target types
const (
	NotificationTargetUser  = "user"
	NotificationTargetGroup = "group"
	NotificationTargetRoute = "route"
	NotificationTargetBlog  = "blog"
)

type Notification struct {
	ID         string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Type       string         `gorm:"type:varchar(30);not null" json:"type"`
	Title      string         `gorm:"type:varchar(255);not null" json:"title"`
	Message    string         `gorm:"type:text;not null" json:"message"`
	TargetType *string        `gorm:"type:varchar(20)" json:"target_type,omitempty"`
	TargetID   *string        `gorm:"type:uuid" json:"target_id,omitempty"`
	IsRead     bool           `gorm:"default:false;index" json:"is_read"`
	ReadAt     *time.Time     `json:"read_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}
