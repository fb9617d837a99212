package app

import (
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groupService service.GroupService
}

func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// CreateGroup creates an activity group
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Icon        string  `json:"icon"`
		Color       string  `json:"color"`
		Description *string `json:"description"`
		Category    string  `json:"category"`
		MaxMembers  *int    `json:"max_members"`
		IsPrivate   bool    `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.groupService.CreateGroup(userID, service.CreateGroupInput{
		Name:        req.Name,
		Icon:        req.Icon,
		Color:       req.Color,
		Description: req.Description,
		Category:    req.Category,
		MaxMembers:  req.MaxMembers,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Group created successfully", gin.H{"group": group})
}

// ListGroups lists groups with optional category and search filters
// GET /api/v1/groups?category=...&q=...
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.groupService.ListGroups(userID, c.Query("category"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Groups retrieved", gin.H{"groups": groups})
}

// GetMyGroups lists the caller's groups
// GET /api/v1/groups/mine
func (h *GroupHandler) GetMyGroups(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.groupService.GetMyGroups(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Groups retrieved", gin.H{"groups": groups})
}

// GetGroup returns one group with member count
// GET /api/v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	group, err := h.groupService.GetGroup(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Group retrieved", gin.H{"group": group})
}

// UpdateGroup applies a partial update by the creator
// PUT /api/v1/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Icon        *string `json:"icon"`
		Color       *string `json:"color"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		MaxMembers  *int    `json:"max_members"`
		IsPrivate   *bool   `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.groupService.UpdateGroup(c.Param("id"), userID, service.UpdateGroupInput{
		Name:        req.Name,
		Icon:        req.Icon,
		Color:       req.Color,
		Description: req.Description,
		Category:    req.Category,
		MaxMembers:  req.MaxMembers,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Group updated successfully", gin.H{"group": group})
}

// DeleteGroup removes a group (creator or admin)
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(c.Param("id"), userID, isAdmin(c)); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Group deleted", nil)
}

// JoinGroup enrolls the caller
// POST /api/v1/groups/:id/join
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.JoinGroup(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Joined group", nil)
}

// LeaveGroup removes the caller's membership
// POST /api/v1/groups/:id/leave
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.LeaveGroup(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Left group", nil)
}

// GetMembers lists a group's members
// GET /api/v1/groups/:id/members
func (h *GroupHandler) GetMembers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	members, err := h.groupService.GetMembers(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Members retrieved", gin.H{"members": members})
}

// RemoveMember lets the creator kick a member
// DELETE /api/v1/groups/:id/members/:userId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.RemoveMember(c.Param("id"), userID, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Member removed", nil)
}
