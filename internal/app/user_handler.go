package app

import (
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUser returns another user's public profile
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved", gin.H{"user": user})
}

// GetUserByPublicID resolves a user by public handle
// GET /api/v1/users/handle/:publicId
func (h *UserHandler) GetUserByPublicID(c *gin.Context) {
	user, err := h.userService.GetByPublicID(c.Param("publicId"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved", gin.H{"user": user})
}

// ListUsers returns a page of all users (admin only)
// GET /api/v1/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	offset, limit := pagination(c, 20)
	users, total, err := h.userService.ListUsers(offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Users retrieved", gin.H{
		"users": users,
		"total": total,
	})
}

// SetActive toggles an account (admin only)
// PUT /api/v1/admin/users/:id/active
func (h *UserHandler) SetActive(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.SetActive(c.Param("id"), *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User updated", gin.H{"user": user})
}

// SetRole changes a user's role (admin only)
// PUT /api/v1/admin/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.SetRole(c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User updated", gin.H{"user": user})
}

// DeleteUser removes an account (admin only)
// DELETE /api/v1/admin/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User deleted", nil)
}
