package repository

import (
	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type GroupChatRepository interface {
	Create(message *model.GroupChatMessage) error
	FindByID(id string) (*model.GroupChatMessage, error)
	FindByGroupID(groupID string, offset, limit int) ([]*model.GroupChatMessage, error)
	Delete(id string) error
}

type groupChatRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

func NewGroupChatRepository(db *gorm.DB, redis *util.RedisClient) GroupChatRepository {
	return &groupChatRepository{
		db:    db,
		redis: redis,
	}
}

// Create stores a group chat message
func (r *groupChatRepository) Create(message *model.GroupChatMessage) error {
	return r.db.Create(message).Error
}

// FindByID finds a message by ID
func (r *groupChatRepository) FindByID(id string) (*model.GroupChatMessage, error) {
	var message model.GroupChatMessage
	err := r.db.Preload("Sender").Where("id = ?", id).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindByGroupID returns a group's messages, newest first
func (r *groupChatRepository) FindByGroupID(groupID string, offset, limit int) ([]*model.GroupChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []*model.GroupChatMessage
	err := r.db.Preload("Sender").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Delete soft-deletes a message
func (r *groupChatRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.GroupChatMessage{}).Error
}
