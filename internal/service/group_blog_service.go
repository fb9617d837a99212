package service

import (
	"fmt"
	"strings"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
	"travelshare/backend/internal/util"
)

type GroupBlogService interface {
	CreatePost(groupID, authorID, title, content string, imageData []byte, imageName string) (*model.GroupBlog, error)
	GetPosts(groupID, userID string, offset, limit int) ([]*model.GroupBlog, error)
	GetPost(postID, userID string) (*model.GroupBlog, error)
	UpdatePost(postID, userID string, title, content *string) (*model.GroupBlog, error)
	DeletePost(postID, userID string) error
}

type groupBlogService struct {
	blogRepo     repository.GroupBlogRepository
	groupRepo    repository.GroupRepository
	userRepo     repository.UserRepository
	groupService GroupService
	notifService NotificationService
	cloudinary   *util.CloudinaryClient
}

func NewGroupBlogService(
	blogRepo repository.GroupBlogRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	groupService GroupService,
	notifService NotificationService,
	cloudinary *util.CloudinaryClient,
) GroupBlogService {
	return &groupBlogService{
		blogRepo:     blogRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		groupService: groupService,
		notifService: notifService,
		cloudinary:   cloudinary,
	}
}

// CreatePost publishes a post in a group. Only members may post.
func (s *groupBlogService) CreatePost(groupID, authorID, title, content string, imageData []byte, imageName string) (*model.GroupBlog, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("title and content are required: %w", ErrValidation)
	}

	if _, err := s.groupService.RequireMember(groupID, authorID); err != nil {
		return nil, err
	}

	author, err := s.userRepo.FindByID(authorID)
	if err != nil {
		return nil, fmt.Errorf("author not found: %w", ErrNotFound)
	}

	blog := &model.GroupBlog{
		GroupID:  groupID,
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

	// Notify the other members (async)
	go func() {
		members, err := s.groupRepo.FindMembers(groupID)
		if err != nil {
			return
		}
		memberIDs := make([]string, 0, len(members))
		for _, m := range members {
			memberIDs = append(memberIDs, m.UserID)
		}
		s.notifService.NotifyGroupBlog(memberIDs, authorID, author.FullName, groupID, blog.Title)
	}()

	return s.blogRepo.FindByID(blog.ID)
}

// GetPosts lists a group's posts. Only members may read.
func (s *groupBlogService) GetPosts(groupID, userID string, offset, limit int) ([]*model.GroupBlog, error) {
	if _, err := s.groupService.RequireMember(groupID, userID); err != nil {
		return nil, err
	}

	return s.blogRepo.FindByGroupID(groupID, offset, limit)
}

// GetPost returns one post. Only members of its group may read.
func (s *groupBlogService) GetPost(postID, userID string) (*model.GroupBlog, error) {
	blog, err := s.blogRepo.FindByID(postID)
	if err != nil {
		return nil, fmt.Errorf("post not found: %w", ErrNotFound)
	}

	if _, err := s.groupService.RequireMember(blog.GroupID, userID); err != nil {
		return nil, err
	}
	return blog, nil
}

// UpdatePost applies a partial update. Only the author may update.
func (s *groupBlogService) UpdatePost(postID, userID string, title, content *string) (*model.GroupBlog, error) {
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

// DeletePost removes a post. The author or the group creator may delete.
func (s *groupBlogService) DeletePost(postID, userID string) error {
	blog, err := s.blogRepo.FindByID(postID)
	if err != nil {
		return fmt.Errorf("post not found: %w", ErrNotFound)
	}

	if blog.AuthorID != userID {
		group, err := s.groupRepo.FindByID(blog.GroupID)
		if err != nil {
			return fmt.Errorf("group not found: %w", ErrNotFound)
		}
		if group.CreatorID != userID {
			return fmt.Errorf("only the author or group creator can delete a post: %w", ErrForbidden)
		}
	}

	return s.blogRepo.Delete(postID)
}
