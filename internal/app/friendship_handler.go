package app

import (
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FriendshipHandler struct {
	friendshipService service.FriendshipService
}

func NewFriendshipHandler(friendshipService service.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendshipService: friendshipService}
}

// SendFriendRequest handles sending a friend request
// POST /api/v1/friendships/request
func (h *FriendshipHandler) SendFriendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID string `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	friendship, err := h.friendshipService.SendFriendRequest(userID, req.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Friend request sent successfully", gin.H{"friendship": friendship})
}

// AcceptFriendRequest handles accepting a friend request
// POST /api/v1/friendships/:id/accept
func (h *FriendshipHandler) AcceptFriendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	friendship, err := h.friendshipService.AcceptFriendRequest(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request accepted successfully", gin.H{"friendship": friendship})
}

// RejectFriendRequest handles rejecting a friend request
// POST /api/v1/friendships/:id/reject
func (h *FriendshipHandler) RejectFriendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.friendshipService.RejectFriendRequest(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend request rejected successfully", nil)
}

// RemoveFriend handles removing a friend (or clearing a rejected request)
// DELETE /api/v1/friendships/:id
func (h *FriendshipHandler) RemoveFriend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.friendshipService.RemoveFriend(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friend removed successfully", nil)
}

// BlockUser handles blocking another user
// POST /api/v1/friendships/block
func (h *FriendshipHandler) BlockUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	friendship, err := h.friendshipService.BlockUser(userID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User blocked", gin.H{"friendship": friendship})
}

// UnblockUser handles lifting a block
// POST /api/v1/friendships/unblock
func (h *FriendshipHandler) UnblockUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.friendshipService.UnblockUser(userID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User unblocked", nil)
}

// GetFriends lists the caller's accepted friends
// GET /api/v1/friendships/friends
func (h *FriendshipHandler) GetFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	friends, err := h.friendshipService.GetFriends(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Friends retrieved", gin.H{"friends": friends})
}

// GetPendingRequests lists incoming pending requests
// GET /api/v1/friendships/pending
func (h *FriendshipHandler) GetPendingRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.friendshipService.GetPendingRequests(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Pending requests retrieved", gin.H{"requests": requests})
}

// GetSentRequests lists outgoing pending requests
// GET /api/v1/friendships/sent
func (h *FriendshipHandler) GetSentRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.friendshipService.GetSentRequests(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Sent requests retrieved", gin.H{"requests": requests})
}

// GetBlockedUsers lists the users the caller blocked
// GET /api/v1/friendships/blocked
func (h *FriendshipHandler) GetBlockedUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	blocked, err := h.friendshipService.GetBlockedUsers(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Blocked users retrieved", gin.H{"users": blocked})
}

// GetFriendshipStatus returns the status with another user
// GET /api/v1/friendships/status/:userId
func (h *FriendshipHandler) GetFriendshipStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.friendshipService.GetFriendshipStatus(userID, c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Status retrieved", gin.H{"status": status})
}

// SearchUsers finds new people to befriend
// GET /api/v1/friendships/search?q=...
func (h *FriendshipHandler) SearchUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	users, err := h.friendshipService.SearchUsers(userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Search results", gin.H{"users": users})
}

// GetPendingCount returns the incoming pending request count
// GET /api/v1/friendships/pending/count
func (h *FriendshipHandler) GetPendingCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.friendshipService.CountPendingRequests(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Pending count retrieved", gin.H{"count": count})
}
