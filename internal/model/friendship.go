package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Friendship struct {
	ID         string     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SenderID   string     `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID string     `gorm:"type:uuid;not null;index" json:"receiver_id"`
	// Ordered copy of the pair so the database can enforce at most one row
	// per unordered pair regardless of request direction.
	PairLow    string     `gorm:"type:uuid;not null;uniqueIndex:idx_friendship_pair" json:"-"`
	PairHigh   string     `gorm:"type:uuid;not null;uniqueIndex:idx_friendship_pair" json:"-"`
	Status     string     `gorm:"type:varchar(20);default:'pending';not null" json:"status"` // pending, accepted, rejected, blocked
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Sender   User `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID" json:"receiver,omitempty"`
}

// BeforeCreate hook to generate UUID and the ordered pair columns
func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.PairLow, f.PairHigh = orderPair(f.SenderID, f.ReceiverID)
	return nil
}

// BeforeSave keeps the pair columns in sync when block rewrites the direction
func (f *Friendship) BeforeSave(tx *gorm.DB) error {
	if f.SenderID != "" && f.ReceiverID != "" {
		f.PairLow, f.PairHigh = orderPair(f.SenderID, f.ReceiverID)
	}
	return nil
}

func orderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// TableName specifies the table name
func (Friendship) TableName() string {
	return "friendships"
}

// Friendship status constants
const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
	FriendshipStatusRejected = "rejected"
	FriendshipStatusBlocked  = "blocked"
	FriendshipStatusNone     = "none"
)
