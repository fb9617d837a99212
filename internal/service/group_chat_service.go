package service

import (
	"fmt"
	"strings"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
)

type GroupChatService interface {
	SendMessage(groupID, senderID, content string) (*model.GroupChatMessage, error)
	GetMessages(groupID, userID string, offset, limit int) ([]*model.GroupChatMessage, error)
	DeleteMessage(messageID, userID string) error
	SetWSHub(hub interface {
		BroadcastToGroup(string, map[string]interface{})
	})
}

type groupChatService struct {
	chatRepo     repository.GroupChatRepository
	userRepo     repository.UserRepository
	groupService GroupService
	wsHub        interface {
		BroadcastToGroup(string, map[string]interface{})
	}
}

func NewGroupChatService(
	chatRepo repository.GroupChatRepository,
	userRepo repository.UserRepository,
	groupService GroupService,
) GroupChatService {
	return &groupChatService{
		chatRepo:     chatRepo,
		userRepo:     userRepo,
		groupService: groupService,
	}
}

// SetWSHub sets the WebSocket hub for realtime delivery
func (s *groupChatService) SetWSHub(hub interface {
	BroadcastToGroup(string, map[string]interface{})
}) {
	s.wsHub = hub
}

// SendMessage posts a message to a group's chat. Membership is re-checked
// on every send.
func (s *groupChatService) SendMessage(groupID, senderID, content string) (*model.GroupChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message cannot be empty: %w", ErrValidation)
	}

	if _, err := s.groupService.RequireMember(groupID, senderID); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return nil, fmt.Errorf("sender not found: %w", ErrNotFound)
	}

	message := &model.GroupChatMessage{
		GroupID:  groupID,
		SenderID: senderID,
		Message:  content,
	}
	if err := s.chatRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	// Realtime push to the group's room
	if s.wsHub != nil {
		s.wsHub.BroadcastToGroup(groupID, map[string]interface{}{
			"event":       "group_message",
			"id":          message.ID,
			"group_id":    groupID,
			"sender_id":   senderID,
			"sender_name": sender.FullName,
			"message":     content,
			"created_at":  message.CreatedAt.Format(time.RFC3339),
		})
	}

	return s.chatRepo.FindByID(message.ID)
}

// GetMessages returns a group's chat history. Membership is re-checked
// on every read.
func (s *groupChatService) GetMessages(groupID, userID string, offset, limit int) ([]*model.GroupChatMessage, error) {
	if _, err := s.groupService.RequireMember(groupID, userID); err != nil {
		return nil, err
	}

	return s.chatRepo.FindByGroupID(groupID, offset, limit)
}

// DeleteMessage removes a chat message. Only its author may delete.
func (s *groupChatService) DeleteMessage(messageID, userID string) error {
	message, err := s.chatRepo.FindByID(messageID)
	if err != nil {
		return fmt.Errorf("message not found: %w", ErrNotFound)
	}

	if message.SenderID != userID {
		return fmt.Errorf("only the author can delete a message: %w", ErrForbidden)
	}

	return s.chatRepo.Delete(messageID)
}
