package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityGroup is a themed travel group (hiking, camping, road trips, ...)
type ActivityGroup struct {
	ID          string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Icon        string         `gorm:"type:varchar(100);not null" json:"icon"`
	Color       string         `gorm:"type:varchar(20);not null" json:"color"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	Category    string         `gorm:"type:varchar(50);default:'general'" json:"category"`
	MaxMembers  *int           `json:"max_members,omitempty"` // nil = unlimited
	IsPrivate   bool           `gorm:"default:false" json:"is_private"`
	CreatorID   string         `gorm:"type:uuid;not null;index" json:"creator_id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Creator User `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`

	MemberCount int64 `gorm:"-" json:"member_count"` // Virtual field, calculated
	IsMember    bool  `gorm:"-" json:"is_member"`    // Virtual field, relative to the caller
}

// BeforeCreate hook to generate UUID
func (g *ActivityGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (ActivityGroup) TableName() string {
	return "activity_groups"
}

// GroupCategoryAll is the search sentinel meaning "no category filter"
const GroupCategoryAll = "ALL"

// GroupMember is the membership row between a user and an activity group
type GroupMember struct {
	ID       string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GroupID  string    `gorm:"type:uuid;not null;index:idx_group_user,unique" json:"group_id"`
	UserID   string    `gorm:"type:uuid;not null;index:idx_group_user,unique" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// Relationships
	Group ActivityGroup `gorm:"foreignKey:GroupID;references:ID" json:"group,omitempty"`
	User  User          `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (GroupMember) TableName() string {
	return "group_members"
}
