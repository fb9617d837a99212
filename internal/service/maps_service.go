package service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"travelshare/backend/internal/util"
)

// MapsService proxies the Google Maps web services so the API key never
// reaches the client
type MapsService interface {
	Geocode(address string) (map[string]interface{}, error)
	ReverseGeocode(lat, lng string) (map[string]interface{}, error)
	DistanceMatrix(origins, destinations, mode string) (map[string]interface{}, error)
	Directions(origin, destination, mode string) (map[string]interface{}, error)
	NearbyPlaces(lat, lng, radius, placeType string) (map[string]interface{}, error)
	PlaceDetails(placeID string) (map[string]interface{}, error)
}

type mapsService struct {
	apiKey     string
	httpClient *http.Client
	redis      *util.RedisClient
}

const (
	mapsBaseURL         = "https://maps.googleapis.com/maps/api"
	mapsCachePrefix     = "maps:"
	mapsCacheExpiration = 1 * time.Hour
)

func NewMapsService(apiKey string, redis *util.RedisClient) MapsService {
	return &mapsService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		redis:      redis,
	}
}

// Geocode resolves an address to coordinates
func (s *mapsService) Geocode(address string) (map[string]interface{}, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required: %w", ErrValidation)
	}

	params := url.Values{}
	params.Set("address", address)
	return s.fetch("/geocode/json", params)
}

// ReverseGeocode resolves coordinates to an address
func (s *mapsService) ReverseGeocode(lat, lng string) (map[string]interface{}, error) {
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("lat and lng are required: %w", ErrValidation)
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%s,%s", lat, lng))
	return s.fetch("/geocode/json", params)
}

// DistanceMatrix returns travel distance and time between points
func (s *mapsService) DistanceMatrix(origins, destinations, mode string) (map[string]interface{}, error) {
	if origins == "" || destinations == "" {
		return nil, fmt.Errorf("origins and destinations are required: %w", ErrValidation)
	}
	if mode == "" {
		mode = "driving"
	}

	params := url.Values{}
	params.Set("origins", origins)
	params.Set("destinations", destinations)
	params.Set("mode", mode)
	return s.fetch("/distancematrix/json", params)
}

// Directions returns a route between two points, trimmed to the fields
// the client needs
func (s *mapsService) Directions(origin, destination, mode string) (map[string]interface{}, error) {
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("origin and destination are required: %w", ErrValidation)
	}
	if mode == "" {
		mode = "driving"
	}

	params := url.Values{}
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("mode", mode)

	raw, err := s.fetch("/directions/json", params)
	if err != nil {
		return nil, err
	}
	return cleanDirections(raw), nil
}

// NearbyPlaces searches for places around a point
func (s *mapsService) NearbyPlaces(lat, lng, radius, placeType string) (map[string]interface{}, error) {
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("lat and lng are required: %w", ErrValidation)
	}
	if radius == "" {
		radius = "1500"
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%s,%s", lat, lng))
	params.Set("radius", radius)
	if placeType != "" {
		params.Set("type", placeType)
	}
	return s.fetch("/place/nearbysearch/json", params)
}

// PlaceDetails returns details for one place
func (s *mapsService) PlaceDetails(placeID string) (map[string]interface{}, error) {
	if placeID == "" {
		return nil, fmt.Errorf("place_id is required: %w", ErrValidation)
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	return s.fetch("/place/details/json", params)
}

// fetch calls the Maps API, caching identical queries in Redis
func (s *mapsService) fetch(path string, params url.Values) (map[string]interface{}, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("maps api key not configured: %w", ErrValidation)
	}

	cacheKey := mapsCachePrefix + path + "?" + params.Encode()
	if s.redis != nil {
		if cached, err := s.redis.Get(cacheKey); err == nil {
			var result map[string]interface{}
			if json.Unmarshal([]byte(cached), &result) == nil {
				return result, nil
			}
		}
	}

	params.Set("key", s.apiKey)
	resp, err := s.httpClient.Get(mapsBaseURL + path + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("maps request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read maps response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("maps api returned status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode maps response: %w", err)
	}

	if s.redis != nil {
		s.redis.Set(cacheKey, string(body), mapsCacheExpiration)
	}

	return result, nil
}

// cleanDirections keeps only status and the per-leg summary fields
func cleanDirections(raw map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"status": raw["status"],
	}

	routes, ok := raw["routes"].([]interface{})
	if !ok || len(routes) == 0 {
		out["routes"] = []interface{}{}
		return out
	}

	cleaned := make([]interface{}, 0, len(routes))
	for _, r := range routes {
		route, ok := r.(map[string]interface{})
		if !ok {
			continue
		}

		cr := map[string]interface{}{
			"summary":           route["summary"],
			"overview_polyline": route["overview_polyline"],
		}

		if legs, ok := route["legs"].([]interface{}); ok {
			cleanedLegs := make([]interface{}, 0, len(legs))
			for _, l := range legs {
				leg, ok := l.(map[string]interface{})
				if !ok {
					continue
				}
				cleanedLegs = append(cleanedLegs, map[string]interface{}{
					"distance":       leg["distance"],
					"duration":       leg["duration"],
					"start_address":  leg["start_address"],
					"end_address":    leg["end_address"],
					"start_location": leg["start_location"],
					"end_location":   leg["end_location"],
				})
			}
			cr["legs"] = cleanedLegs
		}

		cleaned = append(cleaned, cr)
	}
	out["routes"] = cleaned
	return out
}
