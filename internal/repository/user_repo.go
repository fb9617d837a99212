package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByPublicID(publicID string) (*model.User, error)
	FindByIDs(ids []string) ([]*model.User, error)
	Update(user *model.User) error
	Delete(id string) error
	Search(query string, excludeIDs []string, limit int) ([]*model.User, error)
	List(offset, limit int) ([]*model.User, int64, error)
}

type userRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	userCachePrefix     = "user:"
	userCacheExpiration = 15 * time.Minute
)

func NewUserRepository(db *gorm.DB, redis *util.RedisClient) UserRepository {
	return &userRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new user
func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *userRepository) FindByID(id string) (*model.User, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getFromCache(userCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheUser(&user)
	}

	return &user, nil
}

// FindByEmail finds a user by email (not cached, login path)
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPublicID finds a user by public ID
func (r *userRepository) FindByPublicID(publicID string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("public_id = ?", publicID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs finds users by a set of IDs
func (r *userRepository) FindByIDs(ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var users []*model.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates a user
func (r *userRepository) Update(user *model.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(userCachePrefix + user.ID)
	}

	return nil
}

// Delete soft-deletes a user
func (r *userRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.User{}).Error; err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(userCachePrefix + id)
	}

	return nil
}

// Search finds active users whose name or email matches the query,
// excluding the given IDs
func (r *userRepository) Search(query string, excludeIDs []string, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = 20
	}

	q := r.db.Where("is_active = ?", true).
		Where("full_name ILIKE ? OR email ILIKE ?", "%"+query+"%", "%"+query+"%")
	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var users []*model.User
	if err := q.Order("full_name ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// List returns a page of users and the total count (admin only)
func (r *userRepository) List(offset, limit int) ([]*model.User, int64, error) {
	var total int64
	if err := r.db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*model.User
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Cache helpers
func (r *userRepository) cacheUser(user *model.User) {
	if r.redis == nil {
		return
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return
	}

	r.redis.Set(userCachePrefix+user.ID, string(userJSON), userCacheExpiration)
}

func (r *userRepository) getFromCache(key string) (*model.User, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal([]byte(cached), &user); err != nil {
		return nil, err
	}

	return &user, nil
}
