package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PublicID     string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"public_id"`
	FullName     string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         string         `gorm:"type:varchar(20);default:'user'" json:"role"` // user, admin
	Bio          *string        `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL    *string        `gorm:"type:text" json:"avatar_url,omitempty"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time     `json:"last_login,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook to generate UUID and public ID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.PublicID == "" {
		u.PublicID = "usr_" + uuid.New().String()[:8]
	}
	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
