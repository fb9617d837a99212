package repository

import (
	"fmt"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *model.Notification) error
	FindByID(id string) (*model.Notification, error)
	FindByUserID(userID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error)
	MarkRead(id string) error
	MarkAllRead(userID string) error
	CountUnread(userID string) (int64, error)
	Delete(id string) error
	DeleteAllForUser(userID string) error
}

type notificationRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	notificationCountCachePrefix = "notification:count:"
	notificationCacheExpiration  = 15 * time.Minute
)

func NewNotificationRepository(db *gorm.DB, redis *util.RedisClient) NotificationRepository {
	return &notificationRepository{
		db:    db,
		redis: redis,
	}
}

// Create stores a notification
func (r *notificationRepository) Create(notification *model.Notification) error {
	if err := r.db.Create(notification).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(notificationCountCachePrefix + notification.UserID)
	}

	return nil
}

// FindByID finds a notification by ID
func (r *notificationRepository) FindByID(id string) (*model.Notification, error) {
	var notification model.Notification
	if err := r.db.Where("id = ?", id).First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// FindByUserID lists a user's notifications, newest first
func (r *notificationRepository) FindByUserID(userID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []*model.Notification
	err := q.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks one notification as read
func (r *notificationRepository) MarkRead(id string) error {
	var notification model.Notification
	if err := r.db.Where("id = ?", id).First(&notification).Error; err != nil {
		return err
	}

	now := time.Now()
	err := r.db.Model(&notification).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(notificationCountCachePrefix + notification.UserID)
	}

	return nil
}

// MarkAllRead marks every unread notification for the user as read
func (r *notificationRepository) MarkAllRead(userID string) error {
	now := time.Now()
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(notificationCountCachePrefix + userID)
	}

	return nil
}

// CountUnread counts unread notifications for a user
func (r *notificationRepository) CountUnread(userID string) (int64, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.redis.Get(notificationCountCachePrefix + userID)
		if err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	// Cache the count
	if r.redis != nil {
		r.redis.Set(notificationCountCachePrefix+userID, fmt.Sprintf("%d", count), notificationCacheExpiration)
	}

	return count, nil
}

// Delete soft-deletes a notification
func (r *notificationRepository) Delete(id string) error {
	var notification model.Notification
	if err := r.db.Where("id = ?", id).First(&notification).Error; err != nil {
		return err
	}

	if err := r.db.Delete(&notification).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(notificationCountCachePrefix + notification.UserID)
	}

	return nil
}

// DeleteAllForUser removes every notification belonging to a user
func (r *notificationRepository) DeleteAllForUser(userID string) error {
	err := r.db.Where("user_id = ?", userID).
		Delete(&model.Notification{}).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(notificationCountCachePrefix + userID)
	}

	return nil
}
