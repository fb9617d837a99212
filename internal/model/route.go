package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Route is a saved travel route with its waypoints stored as a JSON document
type Route struct {
	ID          string         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID     string         `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	Waypoints   string         `gorm:"type:jsonb;not null" json:"waypoints"` // JSON array of {lat,lng,label}
	DistanceM   *float64       `json:"distance_m,omitempty"`
	DurationS   *float64       `json:"duration_s,omitempty"`
	IsPublic    bool           `gorm:"default:false" json:"is_public"`
	ShareToken  *string        `gorm:"type:varchar(64);uniqueIndex" json:"share_token,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Owner      User   `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	SharedWith []User `gorm:"many2many:route_shares;" json:"shared_with,omitempty"`
}

// BeforeCreate hook
func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Route) TableName() string {
	return "routes"
}
