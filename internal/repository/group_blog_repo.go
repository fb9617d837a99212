package repository

import (
	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type GroupBlogRepository interface {
	Create(blog *model.GroupBlog) error
	FindByID(id string) (*model.GroupBlog, error)
	FindByGroupID(groupID string, offset, limit int) ([]*model.GroupBlog, error)
	Update(blog *model.GroupBlog) error
	Delete(id string) error
}

type groupBlogRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

func NewGroupBlogRepository(db *gorm.DB, redis *util.RedisClient) GroupBlogRepository {
	return &groupBlogRepository{
		db:    db,
		redis: redis,
	}
}

// Create stores a group blog post
func (r *groupBlogRepository) Create(blog *model.GroupBlog) error {
	return r.db.Create(blog).Error
}

// FindByID finds a post by ID
func (r *groupBlogRepository) FindByID(id string) (*model.GroupBlog, error) {
	var blog model.GroupBlog
	err := r.db.Preload("Author").Where("id = ?", id).First(&blog).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// FindByGroupID returns a group's posts, newest first
func (r *groupBlogRepository) FindByGroupID(groupID string, offset, limit int) ([]*model.GroupBlog, error) {
	if limit <= 0 {
		limit = 20
	}

	var blogs []*model.GroupBlog
	err := r.db.Preload("Author").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

// Update updates a post
func (r *groupBlogRepository) Update(blog *model.GroupBlog) error {
	return r.db.Save(blog).Error
}

// Delete soft-deletes a post
func (r *groupBlogRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.GroupBlog{}).Error
}
