package repository

import (
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *model.DirectMessage) error
	FindByID(id string) (*model.DirectMessage, error)
	FindConversation(userA, userB string, offset, limit int) ([]*model.DirectMessage, error)
	FindConversationPartnerIDs(userID string) ([]string, error)
	FindLastMessageBetween(userA, userB string) (*model.DirectMessage, error)
	MarkConversationRead(receiverID, senderID string) error
	CountUnread(userID string) (int64, error)
	CountUnreadFrom(receiverID, senderID string) (int64, error)
	Delete(id string) error
	DeleteConversation(userA, userB string) error
	DeleteAllForUser(userID string) error
}

type messageRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const messageUnreadCachePrefix = "message:unread:"

func NewMessageRepository(db *gorm.DB, redis *util.RedisClient) MessageRepository {
	return &messageRepository{
		db:    db,
		redis: redis,
	}
}

// Create stores a new direct message
func (r *messageRepository) Create(message *model.DirectMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return err
	}

	// Invalidate unread counter for the receiver
	if r.redis != nil {
		r.redis.Delete(messageUnreadCachePrefix + message.ReceiverID)
	}

	return nil
}

// FindByID finds a message by ID
func (r *messageRepository) FindByID(id string) (*model.DirectMessage, error) {
	var message model.DirectMessage
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("id = ?", id).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindConversation returns messages between two users, oldest first
func (r *messageRepository) FindConversation(userA, userB string, offset, limit int) ([]*model.DirectMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	var messages []*model.DirectMessage
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// FindConversationPartnerIDs returns the distinct users this user has
// exchanged messages with
func (r *messageRepository) FindConversationPartnerIDs(userID string) ([]string, error) {
	var ids []string
	err := r.db.Raw(`SELECT DISTINCT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
		FROM direct_messages
		WHERE (sender_id = ? OR receiver_id = ?) AND deleted_at IS NULL`,
		userID, userID, userID).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindLastMessageBetween returns the most recent message between two users
func (r *messageRepository) FindLastMessageBetween(userA, userB string) (*model.DirectMessage, error) {
	var message model.DirectMessage
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkConversationRead marks everything the sender sent to the receiver as read
func (r *messageRepository) MarkConversationRead(receiverID, senderID string) error {
	now := time.Now()
	err := r.db.Model(&model.DirectMessage{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(messageUnreadCachePrefix + receiverID)
	}

	return nil
}

// CountUnread counts all unread messages for a user
func (r *messageRepository) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.DirectMessage{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CountUnreadFrom counts unread messages from one specific sender
func (r *messageRepository) CountUnreadFrom(receiverID, senderID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.DirectMessage{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Count(&count).Error
	return count, err
}

// Delete soft-deletes a message
func (r *messageRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.DirectMessage{}).Error
}

// DeleteConversation soft-deletes every message between two users
func (r *messageRepository) DeleteConversation(userA, userB string) error {
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Delete(&model.DirectMessage{}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(messageUnreadCachePrefix + userA)
		r.redis.Delete(messageUnreadCachePrefix + userB)
	}

	return nil
}

// DeleteAllForUser soft-deletes every message the user sent or received
func (r *messageRepository) DeleteAllForUser(userID string) error {
	partnerIDs, err := r.FindConversationPartnerIDs(userID)
	if err != nil {
		return err
	}

	err = r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&model.DirectMessage{}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(messageUnreadCachePrefix + userID)
		for _, id := range partnerIDs {
			r.redis.Delete(messageUnreadCachePrefix + id)
		}
	}

	return nil
}
