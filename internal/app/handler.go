package app

import (
	"errors"
	"net/http"
	"strconv"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUserID returns the authenticated user's ID set by the auth middleware
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		util.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return "", false
	}
	return userID.(string), true
}

// isAdmin reports whether the caller carries the admin role
func isAdmin(c *gin.Context) bool {
	role, exists := c.Get("role")
	return exists && role == model.RoleAdmin
}

// respondError maps service sentinel errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	util.ErrorResponse(c, status, err.Error())
}

// pagination parses offset/limit query params with sane defaults
func pagination(c *gin.Context, defaultLimit int) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	return offset, limit
}
