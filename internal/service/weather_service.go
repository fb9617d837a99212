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

// WeatherService proxies OpenWeather so the API key stays server side
type WeatherService interface {
	CurrentByCoords(lat, lon string) (map[string]interface{}, error)
	CurrentByCity(city string) (map[string]interface{}, error)
}

type weatherService struct {
	apiKey     string
	httpClient *http.Client
	redis      *util.RedisClient
}

const (
	weatherBaseURL         = "https://api.openweathermap.org/data/2.5/weather"
	weatherCachePrefix     = "weather:"
	weatherCacheExpiration = 10 * time.Minute
)

func NewWeatherService(apiKey string, redis *util.RedisClient) WeatherService {
	return &weatherService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		redis:      redis,
	}
}

// CurrentByCoords returns current weather at a coordinate
func (s *weatherService) CurrentByCoords(lat, lon string) (map[string]interface{}, error) {
	if lat == "" || lon == "" {
		return nil, fmt.Errorf("lat and lon are required: %w", ErrValidation)
	}

	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lon", lon)
	return s.fetch(params)
}

// CurrentByCity returns current weather for a city name
func (s *weatherService) CurrentByCity(city string) (map[string]interface{}, error) {
	if city == "" {
		return nil, fmt.Errorf("city is required: %w", ErrValidation)
	}

	params := url.Values{}
	params.Set("q", city)
	return s.fetch(params)
}

func (s *weatherService) fetch(params url.Values) (map[string]interface{}, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("weather api key not configured: %w", ErrValidation)
	}

	params.Set("units", "metric")

	cacheKey := weatherCachePrefix + params.Encode()
	if s.redis != nil {
		if cached, err := s.redis.Get(cacheKey); err == nil {
			var result map[string]interface{}
			if json.Unmarshal([]byte(cached), &result) == nil {
				return result, nil
			}
		}
	}

	params.Set("appid", s.apiKey)
	resp, err := s.httpClient.Get(weatherBaseURL + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("location not found: %w", ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api returned status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	if s.redis != nil {
		s.redis.Set(cacheKey, string(body), weatherCacheExpiration)
	}

	return result, nil
}
