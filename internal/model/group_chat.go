package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupChatMessage is a chat message scoped to one activity group
type GroupChatMessage struct {
	ID        string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GroupID   string         `gorm:"type:uuid;not null;index" json:"group_id"`
	SenderID  string         `gorm:"type:uuid;not null;index" json:"sender_id"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Group  ActivityGroup `gorm:"foreignKey:GroupID;references:ID" json:"group,omitempty"`
	Sender User          `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`
}

// BeforeCreate hook
func (m *GroupChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (GroupChatMessage) TableName() string {
	return "group_chat_messages"
}

// GroupBlog is a blog post scoped to one activity group
type GroupBlog struct {
	ID        string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GroupID   string         `gorm:"type:uuid;not null;index" json:"group_id"`
	AuthorID  string         `gorm:"type:uuid;not null;index" json:"author_id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	ImageURL  *string        `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Group  ActivityGroup `gorm:"foreignKey:GroupID;references:ID" json:"group,omitempty"`
	Author User          `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

// BeforeCreate hook
func (b *GroupBlog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (GroupBlog) TableName() string {
	return "group_blogs"
}
