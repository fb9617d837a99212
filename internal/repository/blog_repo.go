package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type BlogRepository interface {
	Create(blog *model.SiteBlog) error
	FindByID(id string) (*model.SiteBlog, error)
	FindAll(offset, limit int) ([]*model.SiteBlog, int64, error)
	Update(blog *model.SiteBlog) error
	Delete(id string) error
	CreateComment(comment *model.BlogComment) error
	FindCommentByID(id string) (*model.BlogComment, error)
	FindCommentsByBlogID(blogID string) ([]*model.BlogComment, error)
	DeleteComment(id string) error
	CountComments(blogID string) (int64, error)
}

type blogRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	blogCachePrefix     = "blog:"
	blogListCacheKey    = "blog:list"
	blogCacheExpiration = 15 * time.Minute
)

func NewBlogRepository(db *gorm.DB, redis *util.RedisClient) BlogRepository {
	return &blogRepository{
		db:    db,
		redis: redis,
	}
}

// Create stores a site blog post
func (r *blogRepository) Create(blog *model.SiteBlog) error {
	if err := r.db.Create(blog).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.DeletePattern(blogListCacheKey + "*")
	}

	return nil
}

// FindByID finds a post with its comments
func (r *blogRepository) FindByID(id string) (*model.SiteBlog, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getFromCache(blogCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var blog model.SiteBlog
	err := r.db.Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("blog_comments.created_at ASC")
		}).
		Preload("Comments.Author").
		Where("id = ?", id).First(&blog).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheBlog(&blog)
	}

	return &blog, nil
}

// FindAll returns a page of posts and the total count, newest first
func (r *blogRepository) FindAll(offset, limit int) ([]*model.SiteBlog, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := r.db.Model(&model.SiteBlog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blogs []*model.SiteBlog
	err := r.db.Preload("Author").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

// Update updates a post
func (r *blogRepository) Update(blog *model.SiteBlog) error {
	if err := r.db.Save(blog).Error; err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(blogCachePrefix + blog.ID)
		r.redis.DeletePattern(blogListCacheKey + "*")
	}

	return nil
}

// Delete soft-deletes a post and its comments
func (r *blogRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", id).Delete(&model.BlogComment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.SiteBlog{}).Error
	})
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(blogCachePrefix + id)
		r.redis.DeletePattern(blogListCacheKey + "*")
	}

	return nil
}

// CreateComment stores a comment
func (r *blogRepository) CreateComment(comment *model.BlogComment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(blogCachePrefix + comment.BlogID)
	}

	return nil
}

// FindCommentByID finds a comment by ID
func (r *blogRepository) FindCommentByID(id string) (*model.BlogComment, error) {
	var comment model.BlogComment
	err := r.db.Preload("Author").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindCommentsByBlogID lists a post's comments, oldest first
func (r *blogRepository) FindCommentsByBlogID(blogID string) ([]*model.BlogComment, error) {
	var comments []*model.BlogComment
	err := r.db.Preload("Author").
		Where("blog_id = ?", blogID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment soft-deletes a comment
func (r *blogRepository) DeleteComment(id string) error {
	var comment model.BlogComment
	if err := r.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return err
	}

	if err := r.db.Delete(&comment).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(blogCachePrefix + comment.BlogID)
	}

	return nil
}

// CountComments counts a post's comments
func (r *blogRepository) CountComments(blogID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.BlogComment{}).
		Where("blog_id = ?", blogID).
		Count(&count).Error
	return count, err
}

// Cache helpers
func (r *blogRepository) cacheBlog(blog *model.SiteBlog) {
	if r.redis == nil {
		return
	}

	blogJSON, err := json.Marshal(blog)
	if err != nil {
		return
	}

	r.redis.Set(blogCachePrefix+blog.ID, string(blogJSON), blogCacheExpiration)
}

func (r *blogRepository) getFromCache(key string) (*model.SiteBlog, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var blog model.SiteBlog
	if err := json.Unmarshal([]byte(cached), &blog); err != nil {
		return nil, err
	}

	return &blog, nil
}
