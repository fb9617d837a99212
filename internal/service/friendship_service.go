package service

import (
	"errors"
	"fmt"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"

	"gorm.io/gorm"
)

type FriendshipService interface {
	SendFriendRequest(senderID, receiverID string) (*model.Friendship, error)
	AcceptFriendRequest(friendshipID, userID string) (*model.Friendship, error)
	RejectFriendRequest(friendshipID, userID string) error
	RemoveFriend(friendshipID, userID string) error
	BlockUser(blockerID, blockedID string) (*model.Friendship, error)
	UnblockUser(blockerID, blockedID string) error
	GetFriends(userID string) ([]*model.User, error)
	GetPendingRequests(userID string) ([]*model.Friendship, error)
	GetSentRequests(userID string) ([]*model.Friendship, error)
	GetBlockedUsers(userID string) ([]*model.User, error)
	GetFriendshipStatus(userID, otherID string) (string, error)
	SearchUsers(userID, query string) ([]*model.User, error)
	AreFriends(userA, userB string) (bool, error)
	CountPendingRequests(userID string) (int64, error)
}

type friendshipService struct {
	friendshipRepo repository.FriendshipRepository
	userRepo       repository.UserRepository
	notifService   NotificationService
}

func NewFriendshipService(
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	notifService NotificationService,
) FriendshipService {
	return &friendshipService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		notifService:   notifService,
	}
}

// SendFriendRequest creates a pending friendship towards another user
func (s *friendshipService) SendFriendRequest(senderID, receiverID string) (*model.Friendship, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot send friend request to yourself: %w", ErrValidation)
	}

	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		return nil, fmt.Errorf("sender not found: %w", ErrNotFound)
	}

	if _, err := s.userRepo.FindByID(receiverID); err != nil {
		return nil, fmt.Errorf("receiver not found: %w", ErrNotFound)
	}

	// A row in either direction blocks a new request
	existing, err := s.friendshipRepo.FindByPair(senderID, receiverID)
	if err == nil && existing != nil {
		switch existing.Status {
		case model.FriendshipStatusPending:
			return nil, fmt.Errorf("friend request already pending: %w", ErrConflict)
		case model.FriendshipStatusAccepted:
			return nil, fmt.Errorf("already friends: %w", ErrConflict)
		case model.FriendshipStatusRejected:
			return nil, fmt.Errorf("a previous request was rejected: %w", ErrConflict)
		case model.FriendshipStatusBlocked:
			return nil, fmt.Errorf("cannot send request to this user: %w", ErrForbidden)
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	friendship := &model.Friendship{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.FriendshipStatusPending,
	}

	if err := s.friendshipRepo.Create(friendship); err != nil {
		return nil, fmt.Errorf("failed to create friendship request: %w", err)
	}

	// Notify receiver (async, non-blocking)
	go func() {
		s.notifService.NotifyFriendRequest(receiverID, senderID, sender.FullName)
	}()

	// Reload with relationships
	return s.friendshipRepo.FindByID(friendship.ID)
}

// AcceptFriendRequest accepts a pending request. Only the receiver may accept.
func (s *friendshipService) AcceptFriendRequest(friendshipID, userID string) (*model.Friendship, error) {
	friendship, err := s.friendshipRepo.FindByID(friendshipID)
	if err != nil {
		return nil, fmt.Errorf("friendship not found: %w", ErrNotFound)
	}

	if friendship.ReceiverID != userID {
		return nil, fmt.Errorf("only the receiver can accept a request: %w", ErrForbidden)
	}

	if friendship.Status == model.FriendshipStatusAccepted {
		return nil, fmt.Errorf("friend request already accepted: %w", ErrConflict)
	}
	if friendship.Status != model.FriendshipStatusPending {
		return nil, fmt.Errorf("cannot accept a non-pending request: %w", ErrConflict)
	}

	now := time.Now()
	friendship.Status = model.FriendshipStatusAccepted
	friendship.AcceptedAt = &now
	if err := s.friendshipRepo.Update(friendship); err != nil {
		return nil, fmt.Errorf("failed to accept friendship: %w", err)
	}

	// Notify the original sender (async)
	go func() {
		receiver, _ := s.userRepo.FindByID(friendship.ReceiverID)
		if receiver != nil {
			s.notifService.NotifyFriendAccepted(friendship.SenderID, receiver.FullName, friendship.ID)
		}
	}()

	return s.friendshipRepo.FindByID(friendship.ID)
}

// RejectFriendRequest rejects a pending request. Only the receiver may reject.
func (s *friendshipService) RejectFriendRequest(friendshipID, userID string) error {
	friendship, err := s.friendshipRepo.FindByID(friendshipID)
	if err != nil {
		return fmt.Errorf("friendship not found: %w", ErrNotFound)
	}

	if friendship.ReceiverID != userID {
		return fmt.Errorf("only the receiver can reject a request: %w", ErrForbidden)
	}

	if friendship.Status != model.FriendshipStatusPending {
		return fmt.Errorf("cannot reject a non-pending request: %w", ErrConflict)
	}

	friendship.Status = model.FriendshipStatusRejected
	return s.friendshipRepo.Update(friendship)
}

// RemoveFriend deletes the friendship row. Either party may remove, and
// removing a rejected row clears the way for a fresh request.
func (s *friendshipService) RemoveFriend(friendshipID, userID string) error {
	friendship, err := s.friendshipRepo.FindByID(friendshipID)
	if err != nil {
		return fmt.Errorf("friendship not found: %w", ErrNotFound)
	}

	if friendship.SenderID != userID && friendship.ReceiverID != userID {
		return fmt.Errorf("not a participant of this friendship: %w", ErrForbidden)
	}

	if friendship.Status == model.FriendshipStatusBlocked {
		return fmt.Errorf("unblock instead of removing: %w", ErrConflict)
	}

	return s.friendshipRepo.Delete(friendship.ID)
}

// BlockUser blocks another user. Any existing row for the pair is rewritten
// so the blocker becomes the sender; otherwise a new blocked row is created.
func (s *friendshipService) BlockUser(blockerID, blockedID string) (*model.Friendship, error) {
	if blockerID == blockedID {
		return nil, fmt.Errorf("cannot block yourself: %w", ErrValidation)
	}

	if _, err := s.userRepo.FindByID(blockedID); err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}

	existing, err := s.friendshipRepo.FindByPair(blockerID, blockedID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		friendship := &model.Friendship{
			SenderID:   blockerID,
			ReceiverID: blockedID,
			Status:     model.FriendshipStatusBlocked,
		}
		if err := s.friendshipRepo.Create(friendship); err != nil {
			return nil, fmt.Errorf("failed to block user: %w", err)
		}
		return s.friendshipRepo.FindByID(friendship.ID)
	}

	if existing.Status == model.FriendshipStatusBlocked && existing.SenderID == blockerID {
		return existing, nil
	}

	existing.SenderID = blockerID
	existing.ReceiverID = blockedID
	existing.Status = model.FriendshipStatusBlocked
	existing.AcceptedAt = nil
	if err := s.friendshipRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to block user: %w", err)
	}

	return s.friendshipRepo.FindByID(existing.ID)
}

// UnblockUser removes a block. Only the user who placed it may lift it.
func (s *friendshipService) UnblockUser(blockerID, blockedID string) error {
	friendship, err := s.friendshipRepo.FindByPair(blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("no relationship with this user: %w", ErrNotFound)
	}

	if friendship.Status != model.FriendshipStatusBlocked {
		return fmt.Errorf("user is not blocked: %w", ErrConflict)
	}

	if friendship.SenderID != blockerID {
		return fmt.Errorf("only the blocker can unblock: %w", ErrForbidden)
	}

	return s.friendshipRepo.Delete(friendship.ID)
}

// GetFriends returns the user's accepted friends as user records
func (s *friendshipService) GetFriends(userID string) ([]*model.User, error) {
	friendships, err := s.friendshipRepo.FindAcceptedByUserID(userID)
	if err != nil {
		return nil, err
	}

	friends := make([]*model.User, 0, len(friendships))
	for _, f := range friendships {
		if f.SenderID == userID {
			other := f.Receiver
			friends = append(friends, &other)
		} else {
			other := f.Sender
			friends = append(friends, &other)
		}
	}
	return friends, nil
}

// GetPendingRequests returns incoming pending requests
func (s *friendshipService) GetPendingRequests(userID string) ([]*model.Friendship, error) {
	return s.friendshipRepo.FindPendingByReceiverID(userID)
}

// GetSentRequests returns outgoing pending requests
func (s *friendshipService) GetSentRequests(userID string) ([]*model.Friendship, error) {
	return s.friendshipRepo.FindPendingBySenderID(userID)
}

// GetBlockedUsers returns the users this user has blocked
func (s *friendshipService) GetBlockedUsers(userID string) ([]*model.User, error) {
	friendships, err := s.friendshipRepo.FindBlockedBySenderID(userID)
	if err != nil {
		return nil, err
	}

	blocked := make([]*model.User, 0, len(friendships))
	for _, f := range friendships {
		other := f.Receiver
		blocked = append(blocked, &other)
	}
	return blocked, nil
}

// GetFriendshipStatus returns the status between two users, "none" when
// no row exists
func (s *friendshipService) GetFriendshipStatus(userID, otherID string) (string, error) {
	friendship, err := s.friendshipRepo.FindByPair(userID, otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.FriendshipStatusNone, nil
		}
		return "", err
	}
	return friendship.Status, nil
}

// SearchUsers finds users by name or email, excluding the caller and
// their existing friends
func (s *friendshipService) SearchUsers(userID, query string) ([]*model.User, error) {
	if query == "" {
		return []*model.User{}, nil
	}

	friendIDs, err := s.friendshipRepo.FindAcceptedFriendIDs(userID)
	if err != nil {
		return nil, err
	}

	excludeIDs := append(friendIDs, userID)
	return s.userRepo.Search(query, excludeIDs, 20)
}

// AreFriends reports whether two users have an accepted friendship
func (s *friendshipService) AreFriends(userA, userB string) (bool, error) {
	friendship, err := s.friendshipRepo.FindByPair(userA, userB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return friendship.Status == model.FriendshipStatusAccepted, nil
}

// CountPendingRequests counts incoming pending requests
func (s *friendshipService) CountPendingRequests(userID string) (int64, error) {
	return s.friendshipRepo.CountPendingByReceiverID(userID)
}
