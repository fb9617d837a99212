package app

import (
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessage delivers a direct message to a friend
// POST /api/v1/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.messageService.SendMessage(userID, req.ReceiverID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Message sent", gin.H{"message": message})
}

// GetConversations lists every conversation with unread counts
// GET /api/v1/messages/conversations
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.messageService.GetConversations(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Conversations retrieved", gin.H{"conversations": conversations})
}

// GetConversation returns the history with one friend and marks it read
// GET /api/v1/messages/conversations/:userId
func (h *MessageHandler) GetConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	offset, limit := pagination(c, 50)
	messages, err := h.messageService.GetConversation(userID, c.Param("userId"), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Conversation retrieved", gin.H{"messages": messages})
}

// MarkConversationRead marks a conversation as read without fetching it
// POST /api/v1/messages/conversations/:userId/read
func (h *MessageHandler) MarkConversationRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.messageService.MarkConversationRead(userID, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Conversation marked as read", nil)
}

// GetUnreadCount returns the total unread message count
// GET /api/v1/messages/unread/count
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.messageService.GetUnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Unread count retrieved", gin.H{"count": count})
}

// DeleteConversation removes all messages between the caller and a friend
// DELETE /api/v1/messages/conversations/:userId
func (h *MessageHandler) DeleteConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.messageService.DeleteConversation(userID, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Conversation deleted", nil)
}

// DeleteMessage removes one of the caller's own messages
// DELETE /api/v1/messages/:id
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.messageService.DeleteMessage(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Message deleted", nil)
}
