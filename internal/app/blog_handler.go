package app

import (
	"io"
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	blogService service.BlogService
}

func NewBlogHandler(blogService service.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

// CreatePost publishes a site-wide blog post (multipart form)
// POST /api/v1/blogs
func (h *BlogHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")

	var imageData []byte
	var imageName string
	if file, header, err := c.Request.FormFile("image"); err == nil {
		defer file.Close()
		if data, err := io.ReadAll(file); err == nil {
			imageData = data
			imageName = header.Filename
		}
	}

	blog, err := h.blogService.CreatePost(userID, title, content, imageData, imageName)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Post published", gin.H{"blog": blog})
}

// ListPosts returns a page of posts
// GET /api/v1/blogs
func (h *BlogHandler) ListPosts(c *gin.Context) {
	offset, limit := pagination(c, 20)
	blogs, total, err := h.blogService.ListPosts(offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved", gin.H{
		"blogs": blogs,
		"total": total,
	})
}

// GetPost returns one post with its comments
// GET /api/v1/blogs/:id
func (h *BlogHandler) GetPost(c *gin.Context) {
	blog, err := h.blogService.GetPost(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post retrieved", gin.H{"blog": blog})
}

// UpdatePost lets the author edit a post
// PUT /api/v1/blogs/:id
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	blog, err := h.blogService.UpdatePost(c.Param("id"), userID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post updated", gin.H{"blog": blog})
}

// DeletePost removes a post (author or admin)
// DELETE /api/v1/blogs/:id
func (h *BlogHandler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.blogService.DeletePost(c.Param("id"), userID, isAdmin(c)); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post deleted", nil)
}

// AddComment attaches a comment to a post
// POST /api/v1/blogs/:id/comments
func (h *BlogHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.blogService.AddComment(c.Param("id"), userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Comment added", gin.H{"comment": comment})
}

// DeleteComment removes a comment
// DELETE /api/v1/blogs/comments/:commentId
func (h *BlogHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.blogService.DeleteComment(c.Param("commentId"), userID, isAdmin(c)); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Comment deleted", nil)
}
