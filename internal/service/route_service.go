package service

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/repository"
)

type RouteService interface {
	CreateRoute(ownerID string, input RouteInput) (*model.Route, error)
	GetRoute(routeID, viewerID string) (*model.Route, error)
	GetRouteByShareToken(token string) (*model.Route, error)
	GetMyRoutes(ownerID string) ([]*model.Route, error)
	GetSharedWithMe(userID string) ([]*model.Route, error)
	UpdateRoute(routeID, ownerID string, input RouteInput) (*model.Route, error)
	DeleteRoute(routeID, ownerID string) error
	ShareWithUser(routeID, ownerID, targetUserID string) error
	UnshareWithUser(routeID, ownerID, targetUserID string) error
	GenerateShareLink(routeID, ownerID string) (string, error)
	RevokeShareLink(routeID, ownerID string) error
	GetStats(ownerID string) (*RouteStats, error)
}

// RouteStats aggregates a user's saved routes
type RouteStats struct {
	RouteCount    int     `json:"route_count"`
	TotalDistance float64 `json:"total_distance_m"`
	TotalDuration float64 `json:"total_duration_s"`
}

// RouteInput carries route fields for create and update
type RouteInput struct {
	Name        string
	Description *string
	Waypoints   []Waypoint
	DistanceM   *float64
	DurationS   *float64
	IsPublic    *bool
}

// Waypoint is a single stop on a route
type Waypoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

type routeService struct {
	routeRepo         repository.RouteRepository
	userRepo          repository.UserRepository
	friendshipService FriendshipService
	notifService      NotificationService
}

func NewRouteService(
	routeRepo repository.RouteRepository,
	userRepo repository.UserRepository,
	friendshipService FriendshipService,
	notifService NotificationService,
) RouteService {
	return &routeService{
		routeRepo:         routeRepo,
		userRepo:          userRepo,
		friendshipService: friendshipService,
		notifService:      notifService,
	}
}

// CreateRoute stores a new route
func (s *routeService) CreateRoute(ownerID string, input RouteInput) (*model.Route, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("route name is required: %w", ErrValidation)
	}
	if len(input.Waypoints) < 2 {
		return nil, fmt.Errorf("a route needs at least two waypoints: %w", ErrValidation)
	}

	waypointsJSON, err := json.Marshal(input.Waypoints)
	if err != nil {
		return nil, fmt.Errorf("failed to encode waypoints: %w", err)
	}

	route := &model.Route{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Waypoints:   string(waypointsJSON),
		DistanceM:   input.DistanceM,
		DurationS:   input.DurationS,
	}
	if input.IsPublic != nil {
		route.IsPublic = *input.IsPublic
	}

	if err := s.routeRepo.Create(route); err != nil {
		return nil, fmt.Errorf("failed to create route: %w", err)
	}

	return s.routeRepo.FindByID(route.ID)
}

// GetRoute returns a route. Readable by the owner, users it was shared
// with, and anyone when the route is public.
func (s *routeService) GetRoute(routeID, viewerID string) (*model.Route, error) {
	route, err := s.routeRepo.FindByID(routeID)
	if err != nil {
		return nil, fmt.Errorf("route not found: %w", ErrNotFound)
	}

	if route.OwnerID == viewerID || route.IsPublic {
		return route, nil
	}

	shared, err := s.routeRepo.IsSharedWith(routeID, viewerID)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, fmt.Errorf("route is private: %w", ErrForbidden)
	}
	return route, nil
}

// GetRouteByShareToken resolves a share link without authentication
func (s *routeService) GetRouteByShareToken(token string) (*model.Route, error) {
	if token == "" {
		return nil, fmt.Errorf("share token is required: %w", ErrValidation)
	}

	route, err := s.routeRepo.FindByShareToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid share link: %w", ErrNotFound)
	}
	return route, nil
}

// GetMyRoutes lists the user's own routes
func (s *routeService) GetMyRoutes(ownerID string) ([]*model.Route, error) {
	return s.routeRepo.FindByOwnerID(ownerID)
}

// GetSharedWithMe lists routes shared with the user
func (s *routeService) GetSharedWithMe(userID string) ([]*model.Route, error) {
	return s.routeRepo.FindSharedWithUser(userID)
}

// UpdateRoute replaces the route's fields. Only the owner may update.
func (s *routeService) UpdateRoute(routeID, ownerID string, input RouteInput) (*model.Route, error) {
	route, err := s.requireOwner(routeID, ownerID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) != "" {
		route.Name = strings.TrimSpace(input.Name)
	}
	if input.Description != nil {
		route.Description = input.Description
	}
	if len(input.Waypoints) > 0 {
		if len(input.Waypoints) < 2 {
			return nil, fmt.Errorf("a route needs at least two waypoints: %w", ErrValidation)
		}
		waypointsJSON, err := json.Marshal(input.Waypoints)
		if err != nil {
			return nil, fmt.Errorf("failed to encode waypoints: %w", err)
		}
		route.Waypoints = string(waypointsJSON)
	}
	if input.DistanceM != nil {
		route.DistanceM = input.DistanceM
	}
	if input.DurationS != nil {
		route.DurationS = input.DurationS
	}
	if input.IsPublic != nil {
		route.IsPublic = *input.IsPublic
	}

	if err := s.routeRepo.Update(route); err != nil {
		return nil, fmt.Errorf("failed to update route: %w", err)
	}
	return s.routeRepo.FindByID(route.ID)
}

// DeleteRoute removes a route. Only the owner may delete.
func (s *routeService) DeleteRoute(routeID, ownerID string) error {
	if _, err := s.requireOwner(routeID, ownerID); err != nil {
		return err
	}
	return s.routeRepo.Delete(routeID)
}

// ShareWithUser grants a friend access to the route. Sharing twice is a no-op.
func (s *routeService) ShareWithUser(routeID, ownerID, targetUserID string) error {
	route, err := s.requireOwner(routeID, ownerID)
	if err != nil {
		return err
	}

	if targetUserID == ownerID {
		return fmt.Errorf("cannot share a route with yourself: %w", ErrValidation)
	}
	if _, err := s.userRepo.FindByID(targetUserID); err != nil {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}

	friends, err := s.friendshipService.AreFriends(ownerID, targetUserID)
	if err != nil {
		return err
	}
	if !friends {
		return fmt.Errorf("routes can only be shared with friends: %w", ErrForbidden)
	}

	if err := s.routeRepo.AddShare(routeID, targetUserID); err != nil {
		return fmt.Errorf("failed to share route: %w", err)
	}

	// Notify the target (async)
	go func() {
		owner, err := s.userRepo.FindByID(ownerID)
		if err != nil {
			return
		}
		s.notifService.NotifyRouteShared(targetUserID, owner.FullName, route.ID, route.Name)
	}()

	return nil
}

// UnshareWithUser revokes a user's access. Unsharing an absent grant is silent.
func (s *routeService) UnshareWithUser(routeID, ownerID, targetUserID string) error {
	if _, err := s.requireOwner(routeID, ownerID); err != nil {
		return err
	}
	return s.routeRepo.RemoveShare(routeID, targetUserID)
}

// GenerateShareLink returns the route's share token, minting one only when
// none exists. Calling it twice returns the same token.
func (s *routeService) GenerateShareLink(routeID, ownerID string) (string, error) {
	route, err := s.requireOwner(routeID, ownerID)
	if err != nil {
		return "", err
	}

	if route.ShareToken != nil && *route.ShareToken != "" {
		return *route.ShareToken, nil
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	token := hex.EncodeToString(buf)

	route.ShareToken = &token
	if err := s.routeRepo.Update(route); err != nil {
		return "", fmt.Errorf("failed to store share token: %w", err)
	}
	return token, nil
}

// RevokeShareLink clears the share token. A later GenerateShareLink mints
// a fresh one, so revoked links stay dead.
func (s *routeService) RevokeShareLink(routeID, ownerID string) error {
	route, err := s.requireOwner(routeID, ownerID)
	if err != nil {
		return err
	}

	if route.ShareToken == nil {
		return nil
	}

	route.ShareToken = nil
	if err := s.routeRepo.Update(route); err != nil {
		return fmt.Errorf("failed to revoke share token: %w", err)
	}
	return nil
}

// GetStats sums up the user's own routes
func (s *routeService) GetStats(ownerID string) (*RouteStats, error) {
	routes, err := s.routeRepo.FindByOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	stats := &RouteStats{RouteCount: len(routes)}
	for _, route := range routes {
		if route.DistanceM != nil {
			stats.TotalDistance += *route.DistanceM
		}
		if route.DurationS != nil {
			stats.TotalDuration += *route.DurationS
		}
	}
	return stats, nil
}

func (s *routeService) requireOwner(routeID, userID string) (*model.Route, error) {
	route, err := s.routeRepo.FindByID(routeID)
	if err != nil {
		return nil, fmt.Errorf("route not found: %w", ErrNotFound)
	}
	if route.OwnerID != userID {
		return nil, fmt.Errorf("only the owner can manage this route: %w", ErrForbidden)
	}
	return route, nil
}
