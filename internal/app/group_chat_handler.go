package app

import (
	"io"
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GroupChatHandler struct {
	chatService service.GroupChatService
	blogService service.GroupBlogService
}

func NewGroupChatHandler(chatService service.GroupChatService, blogService service.GroupBlogService) *GroupChatHandler {
	return &GroupChatHandler{
		chatService: chatService,
		blogService: blogService,
	}
}

// SendMessage posts to a group's chat
// POST /api/v1/groups/:id/chat
func (h *GroupChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.chatService.SendMessage(c.Param("id"), userID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Message sent", gin.H{"message": message})
}

// GetMessages returns a group's chat history
// GET /api/v1/groups/:id/chat
func (h *GroupChatHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	offset, limit := pagination(c, 50)
	messages, err := h.chatService.GetMessages(c.Param("id"), userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Messages retrieved", gin.H{"messages": messages})
}

// DeleteMessage removes a chat message by its author
// DELETE /api/v1/groups/chat/:messageId
func (h *GroupChatHandler) DeleteMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.chatService.DeleteMessage(c.Param("messageId"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Message deleted", nil)
}

// CreatePost publishes a blog post inside a group (multipart form)
// POST /api/v1/groups/:id/blogs
func (h *GroupChatHandler) CreatePost(c *gin.Context) {
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

	blog, err := h.blogService.CreatePost(c.Param("id"), userID, title, content, imageData, imageName)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Post published", gin.H{"blog": blog})
}

// GetPosts lists a group's blog posts
// GET /api/v1/groups/:id/blogs
func (h *GroupChatHandler) GetPosts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	offset, limit := pagination(c, 20)
	blogs, err := h.blogService.GetPosts(c.Param("id"), userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Posts retrieved", gin.H{"blogs": blogs})
}

// GetPost returns one group blog post
// GET /api/v1/groups/blogs/:blogId
func (h *GroupChatHandler) GetPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	blog, err := h.blogService.GetPost(c.Param("blogId"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post retrieved", gin.H{"blog": blog})
}

// UpdatePost lets the author edit a post
// PUT /api/v1/groups/blogs/:blogId
func (h *GroupChatHandler) UpdatePost(c *gin.Context) {
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

	blog, err := h.blogService.UpdatePost(c.Param("blogId"), userID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post updated", gin.H{"blog": blog})
}

// DeletePost removes a post (author or group creator)
// DELETE /api/v1/groups/blogs/:blogId
func (h *GroupChatHandler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.blogService.DeletePost(c.Param("blogId"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Post deleted", nil)
}
