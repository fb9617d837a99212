package app

import (
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	routeService service.RouteService
}

func NewRouteHandler(routeService service.RouteService) *RouteHandler {
	return &RouteHandler{routeService: routeService}
}

type routeRequest struct {
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	Waypoints   []service.Waypoint `json:"waypoints"`
	DistanceM   *float64           `json:"distance_m"`
	DurationS   *float64           `json:"duration_s"`
	IsPublic    *bool              `json:"is_public"`
}

func (r routeRequest) toInput() service.RouteInput {
	return service.RouteInput{
		Name:        r.Name,
		Description: r.Description,
		Waypoints:   r.Waypoints,
		DistanceM:   r.DistanceM,
		DurationS:   r.DurationS,
		IsPublic:    r.IsPublic,
	}
}

// CreateRoute stores a new route
// POST /api/v1/routes
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	route, err := h.routeService.CreateRoute(userID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Route created successfully", gin.H{"route": route})
}

// GetMyRoutes lists the caller's routes
// GET /api/v1/routes
func (h *RouteHandler) GetMyRoutes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	routes, err := h.routeService.GetMyRoutes(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Routes retrieved", gin.H{"routes": routes})
}

// GetSharedWithMe lists routes shared with the caller
// GET /api/v1/routes/shared
func (h *RouteHandler) GetSharedWithMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	routes, err := h.routeService.GetSharedWithMe(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Routes retrieved", gin.H{"routes": routes})
}

// GetStats returns aggregate numbers over the caller's routes
// GET /api/v1/routes/stats
func (h *RouteHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.routeService.GetStats(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Route stats retrieved", gin.H{"stats": stats})
}

// GetRoute returns one route the caller may see
// GET /api/v1/routes/:id
func (h *RouteHandler) GetRoute(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	route, err := h.routeService.GetRoute(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Route retrieved", gin.H{"route": route})
}

// UpdateRoute edits a route by its owner
// PUT /api/v1/routes/:id
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	route, err := h.routeService.UpdateRoute(c.Param("id"), userID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Route updated successfully", gin.H{"route": route})
}

// DeleteRoute removes a route by its owner
// DELETE /api/v1/routes/:id
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.routeService.DeleteRoute(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Route deleted", nil)
}

// ShareRoute grants a friend access
// POST /api/v1/routes/:id/share
func (h *RouteHandler) ShareRoute(c *gin.Context) {
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

	if err := h.routeService.ShareWithUser(c.Param("id"), userID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Route shared", nil)
}

// UnshareRoute revokes a user's access
// POST /api/v1/routes/:id/unshare
func (h *RouteHandler) UnshareRoute(c *gin.Context) {
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

	if err := h.routeService.UnshareWithUser(c.Param("id"), userID, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Route unshared", nil)
}

// GenerateShareLink returns the route's share token, minting one if needed
// POST /api/v1/routes/:id/share-link
func (h *RouteHandler) GenerateShareLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	token, err := h.routeService.GenerateShareLink(c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Share link ready", gin.H{"share_token": token})
}

// RevokeShareLink kills the route's share link
// DELETE /api/v1/routes/:id/share-link
func (h *RouteHandler) RevokeShareLink(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.routeService.RevokeShareLink(c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Share link revoked", nil)
}

// GetSharedRoute resolves a share link without authentication
// GET /api/v1/routes/shared/:token
func (h *RouteHandler) GetSharedRoute(c *gin.Context) {
	route, err := h.routeService.GetRouteByShareToken(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Route retrieved", gin.H{"route": route})
}
