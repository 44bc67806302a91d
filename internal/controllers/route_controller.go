package controllers

import (
	"encoding/binary"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// RouteResponse mirrors models.Route but carries the geometry as a
// GeoJSON string for API output.
type RouteResponse struct {
	ID          uint            `json:"ID"`
	CreatedAt   time.Time       `json:"CreatedAt"`
	UpdatedAt   time.Time       `json:"UpdatedAt"`
	Name        string          `json:"name"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	BaseFare    decimal.Decimal `json:"base_fare"`
	Active      bool            `json:"active"`
	Geometry    string          `json:"geometry,omitempty"`
	Vehicles    []models.Vehicle `json:"vehicles,omitempty"`
}

func toRouteResponse(route models.Route) RouteResponse {
	jsonGeom, _ := convertWKBToGeoJSON(route.Geometry)
	return RouteResponse{
		ID:          route.ID,
		CreatedAt:   route.CreatedAt,
		UpdatedAt:   route.UpdatedAt,
		Name:        route.Name,
		Origin:      route.Origin,
		Destination: route.Destination,
		BaseFare:    route.BaseFare,
		Active:      route.Active,
		Geometry:    jsonGeom,
		Vehicles:    route.Vehicles,
	}
}

// parseAndConvertGeometry parses a GeoJSON string into a geom.T and returns WKB bytes
func parseAndConvertGeometry(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	err := gjson.Unmarshal([]byte(raw), &g)
	if err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type createRouteInput struct {
	Name        string `json:"name" binding:"required"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	BaseFare    string `json:"base_fare" binding:"required"`
	Geometry    string `json:"geometry"` // optional GeoJSON LineString
}

// CreateRoute registers a terminal route with an optional GeoJSON path.
func CreateRoute(c *gin.Context) {
	var input createRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	fare, err := decimal.NewFromString(input.BaseFare)
	if err != nil || fare.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base_fare"})
		return
	}

	wkbBytes, err := parseAndConvertGeometry(input.Geometry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
		return
	}

	route := models.Route{
		Name:        input.Name,
		Origin:      input.Origin,
		Destination: input.Destination,
		BaseFare:    fare,
		Active:      true,
		Geometry:    wkbBytes,
	}
	if err := config.DB.Create(&route).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "route name already exists"})
			return
		}
		logrus.WithError(err).Error("CreateRoute: failed to create route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create route: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(route)})
}

func ListRoutes(c *gin.Context) {
	query := config.DB.Order("name")
	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var routes []models.Route
	if err := query.Preload("Vehicles").Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing routes: " + err.Error()})
		return
	}

	responses := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		responses = append(responses, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"data": responses})
}

func GetRoute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var route models.Route
	if err := config.DB.Preload("Vehicles").First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(route)})
}

type updateRouteInput struct {
	Name        *string `json:"name"`
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	BaseFare    *string `json:"base_fare"`
	Active      *bool   `json:"active"`
	Geometry    *string `json:"geometry"`
}

func UpdateRoute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var route models.Route
	if err := config.DB.First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	var input updateRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if input.Name != nil {
		route.Name = *input.Name
	}
	if input.Origin != nil {
		route.Origin = *input.Origin
	}
	if input.Destination != nil {
		route.Destination = *input.Destination
	}
	if input.BaseFare != nil {
		fare, err := decimal.NewFromString(*input.BaseFare)
		if err != nil || fare.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base_fare"})
			return
		}
		route.BaseFare = fare
	}
	if input.Active != nil {
		route.Active = *input.Active
	}
	if input.Geometry != nil {
		wkbBytes, err := parseAndConvertGeometry(*input.Geometry)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
			return
		}
		route.Geometry = wkbBytes
	}

	if err := config.DB.Save(&route).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "route name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update route: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route updated successfully", "route": toRouteResponse(route)})
}

// DeleteRoute deactivates or removes a route. Routes still carrying
// vehicles are deactivated instead of deleted.
func DeleteRoute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var route models.Route
	if err := config.DB.Preload("Vehicles").First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if len(route.Vehicles) > 0 {
		route.Active = false
		if err := config.DB.Save(&route).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate route: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Route has assigned vehicles; deactivated instead of deleted"})
		return
	}

	if err := config.DB.Delete(&route).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted"})
}
