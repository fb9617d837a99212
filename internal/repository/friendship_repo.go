package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type FriendshipRepository interface {
	Create(friendship *model.Friendship) error
	FindByID(id string) (*model.Friendship, error)
	FindByPair(userA, userB string) (*model.Friendship, error)
	FindPendingByReceiverID(receiverID string) ([]*model.Friendship, error)
	FindPendingBySenderID(senderID string) ([]*model.Friendship, error)
	FindAcceptedByUserID(userID string) ([]*model.Friendship, error)
	FindBlockedBySenderID(senderID string) ([]*model.Friendship, error)
	FindAcceptedFriendIDs(userID string) ([]string, error)
	Update(friendship *model.Friendship) error
	Delete(id string) error
	DeleteAllForUser(userID string) error
	CountPendingByReceiverID(receiverID string) (int64, error)
}

type friendshipRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	friendshipCachePrefix         = "friendship:"
	friendshipPendingCachePrefix  = "friendship:pending:"
	friendshipAcceptedCachePrefix = "friendship:accepted:"
	friendshipCountCachePrefix    = "friendship:count:"
	friendshipCacheExpiration     = 15 * time.Minute
)

func NewFriendshipRepository(db *gorm.DB, redis *util.RedisClient) FriendshipRepository {
	return &friendshipRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new friendship row
func (r *friendshipRepository) Create(friendship *model.Friendship) error {
	if err := r.db.Create(friendship).Error; err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.invalidateUserCaches(friendship.SenderID, friendship.ReceiverID)
	}

	return nil
}

// FindByID finds a friendship by ID
func (r *friendshipRepository) FindByID(id string) (*model.Friendship, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getFromCache(friendshipCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var friendship model.Friendship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("id = ?", id).First(&friendship).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheFriendship(&friendship)
	}

	return &friendship, nil
}

// FindByPair finds the single row for an unordered user pair, in either
// direction. Returns gorm.ErrRecordNotFound when none exists.
func (r *friendshipRepository) FindByPair(userA, userB string) (*model.Friendship, error) {
	low, high := userA, userB
	if high < low {
		low, high = high, low
	}

	var friendship model.Friendship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("pair_low = ? AND pair_high = ?", low, high).
		First(&friendship).Error
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// FindPendingByReceiverID finds incoming pending requests for a user
func (r *friendshipRepository) FindPendingByReceiverID(receiverID string) ([]*model.Friendship, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getListFromCache(friendshipPendingCachePrefix + receiverID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var friendships []*model.Friendship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("receiver_id = ? AND status = ?", receiverID, model.FriendshipStatusPending).
		Order("created_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheFriendshipList(friendshipPendingCachePrefix+receiverID, friendships)
	}

	return friendships, nil
}

// FindPendingBySenderID finds outgoing pending requests from a user
func (r *friendshipRepository) FindPendingBySenderID(senderID string) ([]*model.Friendship, error) {
	var friendships []*model.Friendship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("sender_id = ? AND status = ?", senderID, model.FriendshipStatusPending).
		Order("created_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// FindAcceptedByUserID finds accepted friendships for a user
func (r *friendshipRepository) FindAcceptedByUserID(userID string) ([]*model.Friendship, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getListFromCache(friendshipAcceptedCachePrefix + userID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var friendships []*model.Friendship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, model.FriendshipStatusAccepted).
		Order("accepted_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheFriendshipList(friendshipAcceptedCachePrefix+userID, friendships)
	}

	return friendships, nil
}

// FindBlockedBySenderID finds rows the given user has blocked
func (r *friendshipRepository) FindBlockedBySenderID(senderID string) ([]*model.Friendship, error) {
	var friendships []*model.Friendship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("sender_id = ? AND status = ?", senderID, model.FriendshipStatusBlocked).
		Order("updated_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// FindAcceptedFriendIDs returns just the friend IDs for a user
func (r *friendshipRepository) FindAcceptedFriendIDs(userID string) ([]string, error) {
	var friendships []*model.Friendship
	err := r.db.Select("sender_id", "receiver_id").
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, model.FriendshipStatusAccepted).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		if f.SenderID == userID {
			ids = append(ids, f.ReceiverID)
		} else {
			ids = append(ids, f.SenderID)
		}
	}
	return ids, nil
}

// Update updates a friendship
func (r *friendshipRepository) Update(friendship *model.Friendship) error {
	if err := r.db.Save(friendship).Error; err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(friendshipCachePrefix + friendship.ID)
		r.invalidateUserCaches(friendship.SenderID, friendship.ReceiverID)
	}

	return nil
}

// Delete removes a friendship row
func (r *friendshipRepository) Delete(id string) error {
	// Get friendship first for cache invalidation
	var friendship model.Friendship
	if err := r.db.Where("id = ?", id).First(&friendship).Error; err != nil {
		return err
	}

	result := r.db.Delete(&friendship)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("friendship not found")
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(friendshipCachePrefix + id)
		r.invalidateUserCaches(friendship.SenderID, friendship.ReceiverID)
	}

	return nil
}

// DeleteAllForUser removes every friendship row the user is part of,
// in either direction
func (r *friendshipRepository) DeleteAllForUser(userID string) error {
	var friendships []*model.Friendship
	err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return err
	}

	err = r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&model.Friendship{}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		for _, f := range friendships {
			r.redis.Delete(friendshipCachePrefix + f.ID)
			r.invalidateUserCaches(f.SenderID, f.ReceiverID)
		}
	}

	return nil
}

// CountPendingByReceiverID counts incoming pending requests for a user
func (r *friendshipRepository) CountPendingByReceiverID(receiverID string) (int64, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.redis.Get(friendshipCountCachePrefix + receiverID)
		if err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Friendship{}).
		Where("receiver_id = ? AND status = ?", receiverID, model.FriendshipStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	// Cache the count
	if r.redis != nil {
		r.redis.Set(friendshipCountCachePrefix+receiverID, fmt.Sprintf("%d", count), friendshipCacheExpiration)
	}

	return count, nil
}

// Cache helpers
func (r *friendshipRepository) cacheFriendship(friendship *model.Friendship) {
	if r.redis == nil {
		return
	}

	friendshipJSON, err := json.Marshal(friendship)
	if err != nil {
		return
	}

	r.redis.Set(friendshipCachePrefix+friendship.ID, string(friendshipJSON), friendshipCacheExpiration)
}

func (r *friendshipRepository) cacheFriendshipList(key string, friendships []*model.Friendship) {
	if r.redis == nil {
		return
	}

	friendshipsJSON, err := json.Marshal(friendships)
	if err != nil {
		return
	}

	r.redis.Set(key, string(friendshipsJSON), friendshipCacheExpiration)
}

func (r *friendshipRepository) getFromCache(key string) (*model.Friendship, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var friendship model.Friendship
	if err := json.Unmarshal([]byte(cached), &friendship); err != nil {
		return nil, err
	}

	return &friendship, nil
}

func (r *friendshipRepository) getListFromCache(key string) ([]*model.Friendship, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var friendships []*model.Friendship
	if err := json.Unmarshal([]byte(cached), &friendships); err != nil {
		return nil, err
	}

	return friendships, nil
}

func (r *friendshipRepository) invalidateUserCaches(senderID, receiverID string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(friendshipPendingCachePrefix + receiverID)
	r.redis.Delete(friendshipAcceptedCachePrefix + senderID)
	r.redis.Delete(friendshipAcceptedCachePrefix + receiverID)
	r.redis.Delete(friendshipCountCachePrefix + receiverID)
}
