package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"travelshare/backend/internal/model"
	"travelshare/backend/internal/util"

	"gorm.io/gorm"
)

type RouteRepository interface {
	Create(route *model.Route) error
	FindByID(id string) (*model.Route, error)
	FindByShareToken(token string) (*model.Route, error)
	FindByOwnerID(ownerID string) ([]*model.Route, error)
	FindSharedWithUser(userID string) ([]*model.Route, error)
	Update(route *model.Route) error
	Delete(id string) error
	AddShare(routeID, userID string) error
	RemoveShare(routeID, userID string) error
	IsSharedWith(routeID, userID string) (bool, error)
}

type routeRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	routeCachePrefix        = "route:"
	routeByOwnerCachePrefix = "route:owner:"
	routeCacheExpiration    = 15 * time.Minute
)

func NewRouteRepository(db *gorm.DB, redis *util.RedisClient) RouteRepository {
	return &routeRepository{
		db:    db,
		redis: redis,
	}
}

// Create stores a new route
func (r *routeRepository) Create(route *model.Route) error {
	if err := r.db.Create(route).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(routeByOwnerCachePrefix + route.OwnerID)
	}

	return nil
}

// FindByID finds a route by ID
func (r *routeRepository) FindByID(id string) (*model.Route, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getFromCache(routeCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var route model.Route
	err := r.db.Preload("Owner").Preload("SharedWith").
		Where("id = ?", id).First(&route).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		r.cacheRoute(&route)
	}

	return &route, nil
}

// FindByShareToken finds a route by its share token
func (r *routeRepository) FindByShareToken(token string) (*model.Route, error) {
	var route model.Route
	err := r.db.Preload("Owner").
		Where("share_token = ?", token).First(&route).Error
	if err != nil {
		return nil, err
	}
	return &route, nil
}

// FindByOwnerID lists a user's own routes, newest first
func (r *routeRepository) FindByOwnerID(ownerID string) ([]*model.Route, error) {
	// Try cache first
	if r.redis != nil {
		cached, err := r.getListFromCache(routeByOwnerCachePrefix + ownerID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var routes []*model.Route
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&routes).Error
	if err != nil {
		return nil, err
	}

	// Cache the result
	if r.redis != nil {
		if routesJSON, err := json.Marshal(routes); err == nil {
			r.redis.Set(routeByOwnerCachePrefix+ownerID, string(routesJSON), routeCacheExpiration)
		}
	}

	return routes, nil
}

// FindSharedWithUser lists routes other users shared with this user
func (r *routeRepository) FindSharedWithUser(userID string) ([]*model.Route, error) {
	var routes []*model.Route
	err := r.db.Preload("Owner").
		Joins("JOIN route_shares ON route_shares.route_id = routes.id").
		Where("route_shares.user_id = ?", userID).
		Order("routes.created_at DESC").
		Find(&routes).Error
	if err != nil {
		return nil, err
	}
	return routes, nil
}

// Update updates a route
func (r *routeRepository) Update(route *model.Route) error {
	if err := r.db.Save(route).Error; err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(routeCachePrefix + route.ID)
		r.redis.Delete(routeByOwnerCachePrefix + route.OwnerID)
	}

	return nil
}

// Delete removes a route and its share rows
func (r *routeRepository) Delete(id string) error {
	var route model.Route
	if err := r.db.Where("id = ?", id).First(&route).Error; err != nil {
		return err
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM route_shares WHERE route_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&route).Error
	})
	if err != nil {
		return err
	}

	// Invalidate cache
	if r.redis != nil {
		r.redis.Delete(routeCachePrefix + id)
		r.redis.Delete(routeByOwnerCachePrefix + route.OwnerID)
	}

	return nil
}

// AddShare grants a user access to the route (no-op when already shared)
func (r *routeRepository) AddShare(routeID, userID string) error {
	err := r.db.Exec(
		"INSERT INTO route_shares (route_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		routeID, userID).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(routeCachePrefix + routeID)
	}

	return nil
}

// RemoveShare revokes a user's access to the route
func (r *routeRepository) RemoveShare(routeID, userID string) error {
	err := r.db.Exec(
		"DELETE FROM route_shares WHERE route_id = ? AND user_id = ?",
		routeID, userID).Error
	if err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(routeCachePrefix + routeID)
	}

	return nil
}

// IsSharedWith reports whether the route was shared with the user
func (r *routeRepository) IsSharedWith(routeID, userID string) (bool, error) {
	var count int64
	err := r.db.Table("route_shares").
		Where("route_id = ? AND user_id = ?", routeID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Cache helpers
func (r *routeRepository) cacheRoute(route *model.Route) {
	if r.redis == nil {
		return
	}

	routeJSON, err := json.Marshal(route)
	if err != nil {
		return
	}

	r.redis.Set(routeCachePrefix+route.ID, string(routeJSON), routeCacheExpiration)
}

func (r *routeRepository) getFromCache(key string) (*model.Route, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var route model.Route
	if err := json.Unmarshal([]byte(cached), &route); err != nil {
		return nil, err
	}

	return &route, nil
}

func (r *routeRepository) getListFromCache(key string) ([]*model.Route, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var routes []*model.Route
	if err := json.Unmarshal([]byte(cached), &routes); err != nil {
		return nil, err
	}

	return routes, nil
}
