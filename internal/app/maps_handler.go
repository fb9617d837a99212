package app

import (
	"net/http"

	"travelshare/backend/internal/service"
	"travelshare/backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MapsHandler struct {
	mapsService    service.MapsService
	weatherService service.WeatherService
}

func NewMapsHandler(mapsService service.MapsService, weatherService service.WeatherService) *MapsHandler {
	return &MapsHandler{
		mapsService:    mapsService,
		weatherService: weatherService,
	}
}

// Geocode resolves an address to coordinates
// GET /api/v1/maps/geocode?address=...
func (h *MapsHandler) Geocode(c *gin.Context) {
	result, err := h.mapsService.Geocode(c.Query("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Geocode result", result)
}

// ReverseGeocode resolves coordinates to an address
// GET /api/v1/maps/reverse-geocode?lat=...&lng=...
func (h *MapsHandler) ReverseGeocode(c *gin.Context) {
	result, err := h.mapsService.ReverseGeocode(c.Query("lat"), c.Query("lng"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Reverse geocode result", result)
}

// DistanceMatrix returns travel distance and duration between points
// GET /api/v1/maps/distance?origins=...&destinations=...&mode=...
func (h *MapsHandler) DistanceMatrix(c *gin.Context) {
	result, err := h.mapsService.DistanceMatrix(c.Query("origins"), c.Query("destinations"), c.Query("mode"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Distance matrix result", result)
}

// Directions returns a trimmed directions response
// GET /api/v1/maps/directions?origin=...&destination=...&mode=...
func (h *MapsHandler) Directions(c *gin.Context) {
	result, err := h.mapsService.Directions(c.Query("origin"), c.Query("destination"), c.Query("mode"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Directions result", result)
}

// NearbyPlaces searches for places around a point
// GET /api/v1/maps/nearby?lat=...&lng=...&radius=...&type=...
func (h *MapsHandler) NearbyPlaces(c *gin.Context) {
	result, err := h.mapsService.NearbyPlaces(c.Query("lat"), c.Query("lng"), c.Query("radius"), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Nearby places result", result)
}

// PlaceDetails returns details for one place
// GET /api/v1/maps/place?place_id=...
func (h *MapsHandler) PlaceDetails(c *gin.Context) {
	result, err := h.mapsService.PlaceDetails(c.Query("place_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Place details result", result)
}

// CurrentWeather returns current weather by coordinates or city
// GET /api/v1/weather?lat=...&lon=...  or  ?city=...
func (h *MapsHandler) CurrentWeather(c *gin.Context) {
	var result map[string]interface{}
	var err error

	if city := c.Query("city"); city != "" {
		result, err = h.weatherService.CurrentByCity(city)
	} else {
		result, err = h.weatherService.CurrentByCoords(c.Query("lat"), c.Query("lon"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	util.SuccessResponse(c, http.StatusOK, "Weather result", result)
}
