package service

import (
	"fmt"
	"strings"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
	"travelshare/backend/internal/util"
)

type BlogService interface {
	CreatePost(authorID, title, content string, imageData []byte, imageName string) (*model.SiteBlog, error)
	GetPost(postID string) (*model.SiteBlog, error)
	ListPosts(offset, limit int) ([]*model.SiteBlog, int64, error)
	UpdatePost(postID, userID string, title, content *string) (*model.SiteBlog, error)
	DeletePost(postID, userID string, isAdmin bool) error
	AddComment(postID, authorID, content string) (*model.BlogComment, error)
	DeleteComment(commentID, userID string, isAdmin bool) error
}

type blogService struct {
	blogRepo     repository.BlogRepository
	userRepo     repository.UserRepository
	notifService NotificationService
	cloudinary   *util.CloudinaryClient
}

func NewBlogService(
	blogRepo repository.BlogRepository,
	userRepo repository.UserRepository,
	notifService NotificationService,
	cloudinary *util.CloudinaryClient,
) BlogService {
	return &blogService{
		blogRepo:     blogRepo,
		userRepo:     userRepo,
		notifService: notifService,
		cloudinary:   cloudinary,
	}
}

// CreatePost publishes a site-wide blog post
func (s *blogService) CreatePost(authorID, title, content string, imageData []byte, imageName string) (*model.SiteBlog, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("title and content are required: %w", ErrValidation)
	}

	if _, err := s.userRepo.FindByID(authorID); err != nil {
		return nil, fmt.Errorf("author not found: %w", ErrNotFound)
	}

	blog := &model.SiteBlog{
		AuthorID: authorID,
		Title:    strings.TrimSpace(title),
		Content:  content,
	}

	if len(imageData) > 0 && s.cloudinary != nil {
		imageURL, err := s.cloudinary.ProcessFileFromMemory(imageData, imageName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		blog.ImageURL = &imageURL
	}

	if err := s.blogRepo.Create(blog); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return s.blogRepo.FindByID(blog.ID)
}

// GetPost returns a post with its comments
func (s *blogService) GetPost(postID string) (*model.SiteBlog, error) {
	blog, err := s.blogRepo.FindByID(postID)
	if err != nil {
		return nil, fmt.Errorf("post not found: %w", ErrNotFound)
	}

	count, err := s.blogRepo.CountComments(postID)
	if err != nil {
		return nil, err
	}
	blog.CommentCount = count

	return blog, nil
}

// ListPosts returns a page of posts with their comment counts
func (s *blogService) ListPosts(offset, limit int) ([]*model.SiteBlog, int64, error) {
	blogs, total, err := s.blogRepo.FindAll(offset, limit)
	if err != nil {
		return nil, 0, err
	}

	for _, blog := range blogs {
		count, err := s.blogRepo.CountComments(blog.ID)
		if err != nil {
			return nil, 0, err
		}
		blog.CommentCount = count
	}

	return blogs, total, nil
}

// UpdatePost applies a partial update. Only the author may update.
func (s *blogService) UpdatePost(postID, userID string, title, content *string) (*model.SiteBlog, error) {
	blog, err := s.blogRepo.FindByID(postID)
	if err != nil {
		return nil, fmt.Errorf("post not found: %w", ErrNotFound)
	}

	if blog.AuthorID != userID {
		return nil, fmt.Errorf("only the author can update a post: %w", ErrForbidden)
	}

	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", ErrValidation)
		}
		blog.Title = strings.TrimSpace(*title)
	}
	if content != nil {
		blog.Content = *content
	}

	if err := s.blogRepo.Update(blog); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return s.blogRepo.FindByID(blog.ID)
}

// DeletePost removes a post. The author or an admin may delete.
func (s *blogService) DeletePost(postID, userID string, isAdmin bool) error {
	blog, err := s.blogRepo.FindByID(postID)
	if err != nil {
		return fmt.Errorf("post not found: %w", ErrNotFound)
	}

	if blog.AuthorID != userID && !isAdmin {
		return fmt.Errorf("only the author can delete a post: %w", ErrForbidden)
	}

	return s.blogRepo.Delete(postID)
}

// AddComment attaches a comment to a post and notifies its author
func (s *blogService) AddComment(postID, authorID, content string) (*model.BlogComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment cannot be empty: %w", ErrValidation)
	}

	blog, err := s.blogRepo.FindByID(postID)
	if err != nil {
		return nil, fmt.Errorf("post not found: %w", ErrNotFound)
	}

	commenter, err := s.userRepo.FindByID(authorID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", ErrNotFound)
	}

	comment := &model.BlogComment{
		BlogID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.blogRepo.CreateComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	// Notify the post author (async)
	go func() {
		s.notifService.NotifyBlogComment(blog.AuthorID, authorID, commenter.FullName, blog.ID)
	}()

	return s.blogRepo.FindCommentByID(comment.ID)
}

// DeleteComment removes a comment. Its author, the post author or an admin
// may delete.
func (s *blogService) DeleteComment(commentID, userID string, isAdmin bool) error {
	comment, err := s.blogRepo.FindCommentByID(commentID)
	if err != nil {
		return fmt.Errorf("comment not found: %w", ErrNotFound)
	}

	if comment.AuthorID != userID && !isAdmin {
		blog, err := s.blogRepo.FindByID(comment.BlogID)
		if err != nil {
			return fmt.Errorf("post not found: %w", ErrNotFound)
		}
		if blog.AuthorID != userID {
			return fmt.Errorf("not allowed to delete this comment: %w", ErrForbidden)
		}
	}

	return s.blogRepo.DeleteComment(commentID)
}
