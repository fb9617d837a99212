package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type GroupRepository interface {
	Create(group *model.ActivityGroup) error
	FindByID(id string) (*model.ActivityGroup, error)
	FindAll(category, search string) ([]*model.ActivityGroup, error)
	FindByUserID(userID string) ([]*model.ActivityGroup, error)
	Update(group *model.ActivityGroup) error
	Delete(id string) error
	AddMember(member *model.GroupMember) error
	RemoveMember(groupID, userID string) error
	RemoveAllMemberships(userID string) error
	IsMember(groupID, userID string) (bool, error)
	CountMembers(groupID string) (int64, error)
	FindMembers(groupID string) ([]*model.GroupMember, error)
}

type groupRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	groupCachePrefix        = "group:"
	groupMembersCachePrefix = "group:members:"
	groupCacheExpiration    = 15 * time.Minute
)

func NewGroupRepository(db *gorm.DB, redis *util.RedisClient) GroupRepository {
	return &groupRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new activity group
func (r *groupRepository) Create(group *model.ActivityGroup) error {
	return r.db.Create(group).Error
}

// FindByID finds a group by ID
func (r *groupRepository) FindByID(id string) (*model.ActivityGroup, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getFromCache(groupCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var group model.ActivityGroup
	err := r.db.Preload("Creator").Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheGroup(&group)
	}

	return &group, nil
}

// FindAll lists groups, optionally filtered by category and name search
func (r *groupRepository) FindAll(category, search string) ([]*model.ActivityGroup, error) {
	q := r.db.Preload("Creator")
	if category != "" && category != model.GroupCategoryAll {
		q = q.Where("category = ?", category)
	}
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}

	var groups []*model.ActivityGroup
	if err := q.Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// FindByUserID lists the groups a user is a member of
func (r *groupRepository) FindByUserID(userID string) ([]*model.ActivityGroup, error) {
	var groups []*model.ActivityGroup
	err := r.db.Preload("Creator").
		Joins("JOIN group_members ON group_members.group_id = activity_groups.id").
		Where("group_members.user_id = ?", userID).
		Order("group_members.joined_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Update updates a group
func (r *groupRepository) Update(group *model.ActivityGroup) error {
	if err := r.db.Save(group).Error; err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(groupCachePrefix + group.ID)
	}

	return nil
}

// Delete removes a group and its membership rows
func (r *groupRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.ActivityGroup{}).Error
	})
	if err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(groupCachePrefix + id)
		r.redis.Delete(groupMembersCachePrefix + id)
	}

	return nil
}

// AddMember adds a membership row
func (r *groupRepository) AddMember(member *model.GroupMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(groupMembersCachePrefix + member.GroupID)
	}

	return nil
}

// RemoveMember deletes a membership row
func (r *groupRepository) RemoveMember(groupID, userID string) error {
	result := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if r.redis != nil {
		r.redis.Delete(groupMembersCachePrefix + groupID)
	}

	return nil
}

// RemoveAllMemberships deletes the user's membership rows across all groups
func (r *groupRepository) RemoveAllMemberships(userID string) error {
	var memberships []*model.GroupMember
	err := r.db.Where("user_id = ?", userID).Find(&memberships).Error
	if err != nil {
		return err
	}

	if err := r.db.Where("user_id = ?", userID).Delete(&model.GroupMember{}).Error; err != nil {
		return err
	}

	if r.redis != nil {
		for _, m := range memberships {
			r.redis.Delete(groupMembersCachePrefix + m.GroupID)
		}
	}

	return nil
}

// IsMember reports whether the user belongs to the group
func (r *groupRepository) IsMember(groupID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountMembers counts the group's members
func (r *groupRepository) CountMembers(groupID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

// FindMembers lists the group's membership rows with their users
func (r *groupRepository) FindMembers(groupID string) ([]*model.GroupMember, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getMembersFromCache(groupMembersCachePrefix + groupID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var members []*model.GroupMember
	err := r.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		if membersJSON, err := json.Marshal(members); err == nil {
			r.redis.Set(groupMembersCachePrefix+groupID, string(membersJSON), groupCacheExpiration)
		}
	}

	return members, nil
}

// Cache helpers
func (r *groupRepository) cacheGroup(group *model.ActivityGroup) {
	if r.redis == nil {
		return
	}

	groupJSON, err := json.Marshal(group)
	if err != nil {
		return
	}

	r.redis.Set(groupCachePrefix+group.ID, string(groupJSON), groupCacheExpiration)
}

func (r *groupRepository) getFromCache(key string) (*model.ActivityGroup, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var group model.ActivityGroup
	if err := json.Unmarshal([]byte(cached), &group); err != nil {
		return nil, err
	}

	return &group, nil
}

func (r *groupRepository) getMembersFromCache(key string) ([]*model.GroupMember, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var members []*model.GroupMember
	if err := json.Unmarshal([]byte(cached), &members); err != nil {
		return nil, err
	}

	return members, nil
}
