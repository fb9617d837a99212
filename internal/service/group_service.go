package service

import (
	"errors"
	"fmt"
	"strings"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"

	"gorm.io/gorm"
)

type GroupService interface {
	CreateGroup(creatorID string, input CreateGroupInput) (*model.ActivityGroup, error)
	GetGroup(groupID, viewerID string) (*model.ActivityGroup, error)
	ListGroups(viewerID, category, search string) ([]*model.ActivityGroup, error)
	GetMyGroups(userID string) ([]*model.ActivityGroup, error)
	UpdateGroup(groupID, userID string, input UpdateGroupInput) (*model.ActivityGroup, error)
	DeleteGroup(groupID, userID string, isAdmin bool) error
	JoinGroup(groupID, userID string) error
	LeaveGroup(groupID, userID string) error
	RemoveMember(groupID, creatorID, memberID string) error
	GetMembers(groupID, viewerID string) ([]*model.GroupMember, error)
	RequireMember(groupID, userID string) (*model.ActivityGroup, error)
}

// CreateGroupInput carries the fields for a new group
type CreateGroupInput struct {
	Name        string
	Icon        string
	Color       string
	Description *string
	Category    string
	MaxMembers  *int
	IsPrivate   bool
}

// UpdateGroupInput carries a partial update, nil fields stay untouched
type UpdateGroupInput struct {
	Name        *string
	Icon        *string
	Color       *string
	Description *string
	Category    *string
	MaxMembers  *int
	IsPrivate   *bool
}

type groupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
}

func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// CreateGroup creates a group and enrolls the creator as its first member
func (s *groupService) CreateGroup(creatorID string, input CreateGroupInput) (*model.ActivityGroup, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("group name is required: %w", ErrValidation)
	}
	if input.MaxMembers != nil && *input.MaxMembers < 1 {
		return nil, fmt.Errorf("max members must be at least 1: %w", ErrValidation)
	}

	category := input.Category
	if category == "" {
		category = "general"
	}

	group := &model.ActivityGroup{
		Name:        strings.TrimSpace(input.Name),
		Icon:        input.Icon,
		Color:       input.Color,
		Description: input.Description,
		Category:    category,
		MaxMembers:  input.MaxMembers,
		IsPrivate:   input.IsPrivate,
		CreatorID:   creatorID,
	}

	if err := s.groupRepo.Create(group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	// Creator is always a member
	member := &model.GroupMember{GroupID: group.ID, UserID: creatorID}
	if err := s.groupRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", err)
	}

	return s.GetGroup(group.ID, creatorID)
}

// GetGroup returns a group with its member count and the viewer's membership
func (s *groupService) GetGroup(groupID, viewerID string) (*model.ActivityGroup, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found: %w", ErrNotFound)
	}

	if err := s.decorate(group, viewerID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups lists groups filtered by category and name search
func (s *groupService) ListGroups(viewerID, category, search string) ([]*model.ActivityGroup, error) {
	groups, err := s.groupRepo.FindAll(category, search)
	if err != nil {
		return nil, err
	}

	for _, group := range groups {
		if err := s.decorate(group, viewerID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// GetMyGroups lists the groups the user belongs to
func (s *groupService) GetMyGroups(userID string) ([]*model.ActivityGroup, error) {
	groups, err := s.groupRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	for _, group := range groups {
		if err := s.decorate(group, userID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// UpdateGroup applies a partial update. Only the creator may update.
func (s *groupService) UpdateGroup(groupID, userID string, input UpdateGroupInput) (*model.ActivityGroup, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found: %w", ErrNotFound)
	}

	if group.CreatorID != userID {
		return nil, fmt.Errorf("only the creator can update the group: %w", ErrForbidden)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, fmt.Errorf("group name cannot be empty: %w", ErrValidation)
		}
		group.Name = strings.TrimSpace(*input.Name)
	}
	if input.Icon != nil {
		group.Icon = *input.Icon
	}
	if input.Color != nil {
		group.Color = *input.Color
	}
	if input.Description != nil {
		group.Description = input.Description
	}
	if input.Category != nil {
		group.Category = *input.Category
	}
	if input.MaxMembers != nil {
		count, err := s.groupRepo.CountMembers(groupID)
		if err != nil {
			return nil, err
		}
		if *input.MaxMembers < 1 {
			return nil, fmt.Errorf("max members must be at least 1: %w", ErrValidation)
		}
		if int64(*input.MaxMembers) < count {
			return nil, fmt.Errorf("max members cannot be below the current member count: %w", ErrValidation)
		}
		group.MaxMembers = input.MaxMembers
	}
	if input.IsPrivate != nil {
		group.IsPrivate = *input.IsPrivate
	}

	if err := s.groupRepo.Update(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return s.GetGroup(group.ID, userID)
}

// DeleteGroup removes a group. The creator or an admin may delete.
func (s *groupService) DeleteGroup(groupID, userID string, isAdmin bool) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return fmt.Errorf("group not found: %w", ErrNotFound)
	}

	if group.CreatorID != userID && !isAdmin {
		return fmt.Errorf("only the creator can delete the group: %w", ErrForbidden)
	}

	return s.groupRepo.Delete(groupID)
}

// JoinGroup enrolls a user, enforcing the capacity limit
func (s *groupService) JoinGroup(groupID, userID string) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return fmt.Errorf("group not found: %w", ErrNotFound)
	}

	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if isMember {
		return fmt.Errorf("already a member: %w", ErrConflict)
	}

	if group.MaxMembers != nil {
		count, err := s.groupRepo.CountMembers(groupID)
		if err != nil {
			return err
		}
		if count >= int64(*group.MaxMembers) {
			return fmt.Errorf("group is full: %w", ErrConflict)
		}
	}

	member := &model.GroupMember{GroupID: groupID, UserID: userID}
	if err := s.groupRepo.AddMember(member); err != nil {
		return fmt.Errorf("failed to join group: %w", err)
	}
	return nil
}

// LeaveGroup removes a user's membership. The creator cannot leave.
func (s *groupService) LeaveGroup(groupID, userID string) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return fmt.Errorf("group not found: %w", ErrNotFound)
	}

	if group.CreatorID == userID {
		return fmt.Errorf("the creator cannot leave, delete the group instead: %w", ErrConflict)
	}

	if err := s.groupRepo.RemoveMember(groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("not a member of this group: %w", ErrConflict)
		}
		return err
	}
	return nil
}

// RemoveMember lets the creator kick a member
func (s *groupService) RemoveMember(groupID, creatorID, memberID string) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return fmt.Errorf("group not found: %w", ErrNotFound)
	}

	if group.CreatorID != creatorID {
		return fmt.Errorf("only the creator can remove members: %w", ErrForbidden)
	}
	if memberID == creatorID {
		return fmt.Errorf("the creator cannot remove themselves: %w", ErrValidation)
	}

	if err := s.groupRepo.RemoveMember(groupID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user is not a member: %w", ErrNotFound)
		}
		return err
	}
	return nil
}

// GetMembers lists a group's members. Private groups only show members
// to members.
func (s *groupService) GetMembers(groupID, viewerID string) ([]*model.GroupMember, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found: %w", ErrNotFound)
	}

	if group.IsPrivate {
		isMember, err := s.groupRepo.IsMember(groupID, viewerID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("members of a private group are only visible to members: %w", ErrForbidden)
		}
	}

	return s.groupRepo.FindMembers(groupID)
}

// RequireMember loads the group and fails unless the user is a member.
// Membership is checked on every call, not cached in the session.
func (s *groupService) RequireMember(groupID, userID string) (*model.ActivityGroup, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, fmt.Errorf("group not found: %w", ErrNotFound)
	}

	isMember, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("you must be a member of this group: %w", ErrForbidden)
	}
	return group, nil
}

func (s *groupService) decorate(group *model.ActivityGroup, viewerID string) error {
	count, err := s.groupRepo.CountMembers(group.ID)
	if err != nil {
		return err
	}
	group.MemberCount = count

	if viewerID != "" {
		isMember, err := s.groupRepo.IsMember(group.ID, viewerID)
		if err != nil {
			return err
		}
		group.IsMember = isMember
	}
	return nil
}
