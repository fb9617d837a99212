package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteBlog is a site-wide blog post visible to every signed-in user
type SiteBlog struct {
	ID        string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AuthorID  string         `gorm:"type:uuid;not null;index" json:"author_id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	ImageURL  *string        `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Author   User          `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Comments []BlogComment `gorm:"foreignKey:BlogID" json:"comments,omitempty"`

	CommentCount int64 `gorm:"-" json:"comment_count"` // Virtual field, calculated
}

// BeforeCreate hook
func (b *SiteBlog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (SiteBlog) TableName() string {
	return "site_blogs"
}

// BlogComment is a comment on a site blog post
type BlogComment struct {
	ID        string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BlogID    string         `gorm:"type:uuid;not null;index" json:"blog_id"`
	AuthorID  string         `gorm:"type:uuid;not null;index" json:"author_id"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

// BeforeCreate hook
func (c *BlogComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (BlogComment) TableName() string {
	return "blog_comments"
}
