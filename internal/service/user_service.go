package service

import (
	"fmt"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
)

type UserService interface {
	GetByID(userID string) (*model.User, error)
	GetByPublicID(publicID string) (*model.User, error)
	ListUsers(offset, limit int) ([]*model.User, int64, error)
	SetActive(userID string, active bool) (*model.User, error)
	SetRole(userID, role string) (*model.User, error)
	DeleteUser(userID string) error
}

type userService struct {
	userRepo       repository.UserRepository
	friendshipRepo repository.FriendshipRepository
	messageRepo    repository.MessageRepository
	notifRepo      repository.NotificationRepository
	groupRepo      repository.GroupRepository
	resetRepo      repository.ResetTokenRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	friendshipRepo repository.FriendshipRepository,
	messageRepo repository.MessageRepository,
	notifRepo repository.NotificationRepository,
	groupRepo repository.GroupRepository,
	resetRepo repository.ResetTokenRepository,
) UserService {
	return &userService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		messageRepo:    messageRepo,
		notifRepo:      notifRepo,
		groupRepo:      groupRepo,
		resetRepo:      resetRepo,
	}
}

// GetByID returns a user's public profile
func (s *userService) GetByID(userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return user, nil
}

// GetByPublicID resolves a user by their public handle
func (s *userService) GetByPublicID(publicID string) (*model.User, error) {
	user, err := s.userRepo.FindByPublicID(publicID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return user, nil
}

// ListUsers returns a page of users (admin only)
func (s *userService) ListUsers(offset, limit int) ([]*model.User, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.userRepo.List(offset, limit)
}

// SetActive toggles an account's active flag (admin only)
func (s *userService) SetActive(userID string, active bool) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}

	user.IsActive = active
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// SetRole changes a user's role (admin only)
func (s *userService) SetRole(userID, role string) (*model.User, error) {
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrValidation)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account and everything hanging off it:
// friendships, messages, notifications, group memberships and reset
// tokens (admin only)
func (s *userService) DeleteUser(userID string) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}

	if err := s.friendshipRepo.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to remove friendships: %w", err)
	}
	if err := s.messageRepo.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to remove messages: %w", err)
	}
	if err := s.notifRepo.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to remove notifications: %w", err)
	}
	if err := s.groupRepo.RemoveAllMemberships(userID); err != nil {
		return fmt.Errorf("failed to remove group memberships: %w", err)
	}
	if err := s.resetRepo.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to remove reset tokens: %w", err)
	}

	return s.userRepo.Delete(userID)
}
