package service

import (
	"fmt"
	"log"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
	"travelshare/backend/internal/util"
)

type NotificationService interface {
	Notify(userID, notifType, title, message string, targetType, targetID *string) error
	NotifyFriendRequest(receiverID, senderID, senderName string) error
	NotifyFriendAccepted(receiverID, accepterName string, friendshipID string) error
	NotifyNewMessage(receiverID, senderID, senderName string) error
	NotifyGroupMessage(memberIDs []string, senderID, senderName, groupID, groupName string) error
	NotifyGroupBlog(memberIDs []string, authorID, authorName, groupID, blogTitle string) error
	NotifyRouteShared(receiverID, ownerName, routeID, routeName string) error
	NotifyBlogComment(authorID, commenterID, commenterName, blogID string) error
	GetNotifications(userID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error)
	GetUnreadCount(userID string) (int64, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) error
	DeleteNotification(notificationID, userID string) error
	SetWSHub(hub interface {
		BroadcastToUser(string, map[string]interface{})
	})
}

type notificationService struct {
	notifRepo repository.NotificationRepository
	rabbitMQ  *util.RabbitMQClient
	wsHub     interface {
		BroadcastToUser(string, map[string]interface{})
	}
}

// NotificationMessage is the payload published to RabbitMQ
type NotificationMessage struct {
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	TargetType *string   `json:"target_type,omitempty"`
	TargetID   *string   `json:"target_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	NotificationQueueName = "notification_queue"
	NotificationExchange  = "notification_exchange"
)

func NewNotificationService(notifRepo repository.NotificationRepository, rabbitMQ *util.RabbitMQClient) NotificationService {
	return &notificationService{
		notifRepo: notifRepo,
		rabbitMQ:  rabbitMQ,
		wsHub:     nil, // Will be set via SetWSHub
	}
}

// SetWSHub sets the WebSocket hub for realtime pushes
func (s *notificationService) SetWSHub(hub interface {
	BroadcastToUser(string, map[string]interface{})
}) {
	s.wsHub = hub
}

// Notify persists a notification, publishes it to RabbitMQ and pushes it
// over the WebSocket hub when the user is connected
func (s *notificationService) Notify(userID, notifType, title, message string, targetType, targetID *string) error {
	notification := &model.Notification{
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		TargetType: targetType,
		TargetID:   targetID,
		IsRead:     false,
	}

	if err := s.notifRepo.Create(notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	// Publish to RabbitMQ for async fan-out (email digests, push, ...)
	if s.rabbitMQ != nil {
		msg := NotificationMessage{
			UserID:     userID,
			Type:       notifType,
			Title:      title,
			Message:    message,
			TargetType: targetType,
			TargetID:   targetID,
			Timestamp:  time.Now(),
		}
		if err := s.rabbitMQ.Publish(NotificationExchange, NotificationQueueName, msg); err != nil {
			// Notification is already saved, keep going
			log.Printf("Failed to publish notification to RabbitMQ: %v", err)
		}
	}

	// Push to WebSocket if hub is available
	if s.wsHub != nil {
		wsPayload := map[string]interface{}{
			"id":         notification.ID,
			"user_id":    notification.UserID,
			"type":       notification.Type,
			"title":      notification.Title,
			"message":    notification.Message,
			"is_read":    notification.IsRead,
			"created_at": notification.CreatedAt.Format(time.RFC3339),
		}
		if notification.TargetType != nil {
			wsPayload["target_type"] = *notification.TargetType
		}
		if notification.TargetID != nil {
			wsPayload["target_id"] = *notification.TargetID
		}

		s.wsHub.BroadcastToUser(userID, wsPayload)
	}

	return nil
}

func target(targetType, targetID string) (*string, *string) {
	return &targetType, &targetID
}

// NotifyFriendRequest tells the receiver someone wants to be friends
func (s *notificationService) NotifyFriendRequest(receiverID, senderID, senderName string) error {
	tt, tid := target(model.NotificationTargetUser, senderID)
	return s.Notify(receiverID, model.NotificationTypeFriendRequest,
		"New Friend Request",
		fmt.Sprintf("%s sent you a friend request", senderName),
		tt, tid)
}

// NotifyFriendAccepted tells the original sender their request was accepted
func (s *notificationService) NotifyFriendAccepted(receiverID, accepterName string, friendshipID string) error {
	tt, tid := target(model.NotificationTargetUser, friendshipID)
	return s.Notify(receiverID, model.NotificationTypeFriendAccepted,
		"Friend Request Accepted",
		fmt.Sprintf("%s accepted your friend request", accepterName),
		tt, tid)
}

// NotifyNewMessage tells the receiver a direct message arrived
func (s *notificationService) NotifyNewMessage(receiverID, senderID, senderName string) error {
	tt, tid := target(model.NotificationTargetUser, senderID)
	return s.Notify(receiverID, model.NotificationTypeMessage,
		"New Message",
		fmt.Sprintf("%s sent you a message", senderName),
		tt, tid)
}

// NotifyGroupMessage tells group members (except the sender) a message arrived
func (s *notificationService) NotifyGroupMessage(memberIDs []string, senderID, senderName, groupID, groupName string) error {
	tt, tid := target(model.NotificationTargetGroup, groupID)
	for _, memberID := range memberIDs {
		if memberID == senderID {
			continue
		}
		if err := s.Notify(memberID, model.NotificationTypeGroupMessage,
			"New Group Message",
			fmt.Sprintf("%s posted in %s", senderName, groupName),
			tt, tid); err != nil {
			log.Printf("Failed to notify member %s: %v", memberID, err)
		}
	}
	return nil
}

// NotifyGroupBlog tells group members (except the author) a post was published
func (s *notificationService) NotifyGroupBlog(memberIDs []string, authorID, authorName, groupID, blogTitle string) error {
	tt, tid := target(model.NotificationTargetGroup, groupID)
	for _, memberID := range memberIDs {
		if memberID == authorID {
			continue
		}
		if err := s.Notify(memberID, model.NotificationTypeGroupBlog,
			"New Group Post",
			fmt.Sprintf("%s published \"%s\"", authorName, blogTitle),
			tt, tid); err != nil {
			log.Printf("Failed to notify member %s: %v", memberID, err)
		}
	}
	return nil
}

// NotifyRouteShared tells a user a route was shared with them
func (s *notificationService) NotifyRouteShared(receiverID, ownerName, routeID, routeName string) error {
	tt, tid := target(model.NotificationTargetRoute, routeID)
	return s.Notify(receiverID, model.NotificationTypeRouteShared,
		"Route Shared With You",
		fmt.Sprintf("%s shared the route \"%s\" with you", ownerName, routeName),
		tt, tid)
}

// NotifyBlogComment tells the post author someone commented
func (s *notificationService) NotifyBlogComment(authorID, commenterID, commenterName, blogID string) error {
	if authorID == commenterID {
		return nil
	}
	tt, tid := target(model.NotificationTargetBlog, blogID)
	return s.Notify(authorID, model.NotificationTypeBlogComment,
		"New Comment",
		fmt.Sprintf("%s commented on your post", commenterName),
		tt, tid)
}

// GetNotifications lists a user's notifications
func (s *notificationService) GetNotifications(userID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error) {
	return s.notifRepo.FindByUserID(userID, unreadOnly, offset, limit)
}

// GetUnreadCount counts unread notifications for a user
func (s *notificationService) GetUnreadCount(userID string) (int64, error) {
	return s.notifRepo.CountUnread(userID)
}

// MarkAsRead marks one notification as read
func (s *notificationService) MarkAsRead(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}

	if notification.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", ErrForbidden)
	}

	return s.notifRepo.MarkRead(notificationID)
}

// MarkAllAsRead marks every unread notification as read
func (s *notificationService) MarkAllAsRead(userID string) error {
	return s.notifRepo.MarkAllRead(userID)
}

// DeleteNotification deletes one of the user's notifications
func (s *notificationService) DeleteNotification(notificationID, userID string) error {
	notification, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}

	if notification.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", ErrForbidden)
	}

	return s.notifRepo.Delete(notificationID)
}
