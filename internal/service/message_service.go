package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"

	"gorm.io/gorm"
)

type MessageService interface {
	SendMessage(senderID, receiverID, content string) (*model.DirectMessage, error)
	GetConversation(userID, otherID string, offset, limit int) ([]*model.DirectMessage, error)
	GetConversations(userID string) ([]*ConversationSummary, error)
	MarkConversationRead(userID, otherID string) error
	GetUnreadCount(userID string) (int64, error)
	DeleteMessage(messageID, userID string) error
	DeleteConversation(userID, otherID string) error
	SetWSHub(hub interface {
		BroadcastToUser(string, map[string]interface{})
	})
}

// ConversationSummary is one row in the conversation list
type ConversationSummary struct {
	OtherUser     *model.User          `json:"other_user"`
	LastMessage   *model.DirectMessage `json:"last_message,omitempty"`
	UnreadCount   int64                `json:"unread_count"`
	LastMessageAt *time.Time           `json:"last_message_at,omitempty"`
}

type messageService struct {
	messageRepo       repository.MessageRepository
	userRepo          repository.UserRepository
	friendshipService FriendshipService
	notifService      NotificationService
	wsHub             interface {
		BroadcastToUser(string, map[string]interface{})
	}
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	friendshipService FriendshipService,
	notifService NotificationService,
) MessageService {
	return &messageService{
		messageRepo:       messageRepo,
		userRepo:          userRepo,
		friendshipService: friendshipService,
		notifService:      notifService,
	}
}

// SetWSHub sets the WebSocket hub for realtime delivery
func (s *messageService) SetWSHub(hub interface {
	BroadcastToUser(string, map[string]interface{})
}) {
	s.wsHub = hub
}

// SendMessage delivers a direct message. Sender and receiver must be friends.
func (s *messageService) SendMessage(senderID, receiverID, content string) (*model.DirectMessage, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot message yourself: %w", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message cannot be empty: %w", ErrValidation)
	}

	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return nil, fmt.Errorf("sender not found: %w", ErrNotFound)
	}
	if _, err := s.userRepo.FindByID(receiverID); err != nil {
		return nil, fmt.Errorf("receiver not found: %w", ErrNotFound)
	}

	friends, err := s.friendshipService.AreFriends(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, fmt.Errorf("you can only message friends: %w", ErrForbidden)
	}

	message := &model.DirectMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	// Realtime push to the receiver
	if s.wsHub != nil {
		s.wsHub.BroadcastToUser(receiverID, map[string]interface{}{
			"event":      "direct_message",
			"id":         message.ID,
			"sender_id":  senderID,
			"content":    content,
			"created_at": message.CreatedAt.Format(time.RFC3339),
		})
	}

	// Offline notification (async)
	go func() {
		s.notifService.NotifyNewMessage(receiverID, senderID, sender.FullName)
	}()

	return s.messageRepo.FindByID(message.ID)
}

// GetConversation returns the message history with another user, oldest
// first, and marks their messages as read. Reading also requires an
// accepted friendship.
func (s *messageService) GetConversation(userID, otherID string, offset, limit int) ([]*model.DirectMessage, error) {
	friends, err := s.friendshipService.AreFriends(userID, otherID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, fmt.Errorf("you can only view conversations with friends: %w", ErrForbidden)
	}

	messages, err := s.messageRepo.FindConversation(userID, otherID, offset, limit)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.MarkConversationRead(userID, otherID); err != nil {
		return nil, err
	}

	return messages, nil
}

// GetConversations lists every conversation with its partner, last message
// and unread count, most recent first
func (s *messageService) GetConversations(userID string) ([]*ConversationSummary, error) {
	partnerIDs, err := s.messageRepo.FindConversationPartnerIDs(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*ConversationSummary, 0, len(partnerIDs))
	for _, partnerID := range partnerIDs {
		partner, err := s.userRepo.FindByID(partnerID)
		if err != nil {
			continue // partner account removed
		}

		summary := &ConversationSummary{OtherUser: partner}

		last, err := s.messageRepo.FindLastMessageBetween(userID, partnerID)
		if err == nil {
			summary.LastMessage = last
			t := last.CreatedAt
			summary.LastMessageAt = &t
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		unread, err := s.messageRepo.CountUnreadFrom(userID, partnerID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = unread

		summaries = append(summaries, summary)
	}

	// Newest conversation first, ones without messages last
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessageAt, summaries[j].LastMessageAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})

	return summaries, nil
}

// MarkConversationRead marks everything the other user sent as read
func (s *messageService) MarkConversationRead(userID, otherID string) error {
	return s.messageRepo.MarkConversationRead(userID, otherID)
}

// GetUnreadCount counts all unread messages for a user
func (s *messageService) GetUnreadCount(userID string) (int64, error) {
	return s.messageRepo.CountUnread(userID)
}

// DeleteConversation removes every message between the two users, in both
// directions
func (s *messageService) DeleteConversation(userID, otherID string) error {
	friends, err := s.friendshipService.AreFriends(userID, otherID)
	if err != nil {
		return err
	}
	if !friends {
		return fmt.Errorf("you can only delete conversations with friends: %w", ErrForbidden)
	}

	return s.messageRepo.DeleteConversation(userID, otherID)
}

// DeleteMessage removes a message. Only the sender may delete.
func (s *messageService) DeleteMessage(messageID, userID string) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return fmt.Errorf("message not found: %w", ErrNotFound)
	}

	if message.SenderID != userID {
		return fmt.Errorf("only the sender can delete a message: %w", ErrForbidden)
	}

	return s.messageRepo.Delete(messageID)
}
