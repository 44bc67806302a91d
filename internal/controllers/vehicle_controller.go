package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

type registerVehicleInput struct {
	VehicleName        string `json:"vehicle_name"`
	VehicleType        string `json:"vehicle_type" binding:"required"`
	OwnershipType      string `json:"ownership_type" binding:"required"`
	LicensePlate       string `json:"license_plate" binding:"required"`
	CRNumber           string `json:"cr_number" binding:"required"`
	ORNumber           string `json:"or_number" binding:"required"`
	VINNumber          string `json:"vin_number" binding:"required"`
	YearModel          int    `json:"year_model" binding:"required"`
	RegistrationNumber string `json:"registration_number" binding:"required"`
	RegistrationExpiry string `json:"registration_expiry" binding:"required"`
	SeatCapacity       int    `json:"seat_capacity"`
	AssignedDriverID   uint   `json:"assigned_driver_id" binding:"required"`
	RouteID            uint   `json:"route_id"`
}

// RegisterVehicle creates a vehicle, assigns its QR value and opens its
// wallet, all in one transaction.
func RegisterVehicle(c *gin.Context) {
	var input registerVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	currentYear := time.Now().Year()
	if input.YearModel < 1886 || input.YearModel > currentYear+1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year_model out of range"})
		return
	}
	if input.SeatCapacity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seat_capacity must be greater than zero"})
		return
	}

	expiry, err := time.ParseInLocation("2006-01-02", input.RegistrationExpiry, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration_expiry date, expected YYYY-MM-DD"})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, input.AssignedDriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assigned driver does not exist"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if input.RouteID != 0 {
		var route models.Route
		if err := config.DB.Where("id = ? AND active = ?", input.RouteID, true).First(&route).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "route does not exist or is inactive"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
			}
			return
		}
	}

	vehicle := models.Vehicle{
		VehicleName:        input.VehicleName,
		VehicleType:        strings.ToLower(input.VehicleType),
		OwnershipType:      strings.ToLower(input.OwnershipType),
		LicensePlate:       strings.ToUpper(strings.TrimSpace(input.LicensePlate)),
		CRNumber:           strings.ToUpper(strings.TrimSpace(input.CRNumber)),
		ORNumber:           strings.ToUpper(strings.TrimSpace(input.ORNumber)),
		VINNumber:          strings.ToUpper(strings.TrimSpace(input.VINNumber)),
		YearModel:          input.YearModel,
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(input.RegistrationNumber)),
		RegistrationExpiry: expiry,
		SeatCapacity:       input.SeatCapacity,
		Status:             models.VehicleIdle,
		AssignedDriverID:   input.AssignedDriverID,
		RouteID:            input.RouteID,
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	if err := tx.Create(&vehicle).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "license plate already registered or driver already assigned"})
			return
		}
		logrus.WithError(err).Error("Failed to create vehicle")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}

	// QR value needs the row ID, so it is set after the insert.
	vehicle.QRValue = models.MakeQRValue(vehicle.ID, vehicle.LicensePlate)
	if err := tx.Model(&vehicle).UpdateColumn("qr_value", vehicle.QRValue).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign QR value: " + err.Error()})
		return
	}

	wallet := models.Wallet{VehicleID: vehicle.ID, Balance: decimal.Zero}
	if err := tx.Create(&wallet).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open wallet: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle, "wallet": wallet})
}

// ListVehicles returns the fleet with driver, route and wallet attached.
func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.
		Preload("AssignedDriver").
		Preload("Route").
		Preload("Wallet").
		Order("license_plate").
		Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

func GetVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.
		Preload("AssignedDriver").
		Preload("Route").
		Preload("Wallet").
		First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

type updateVehicleInput struct {
	VehicleName      *string `json:"vehicle_name"`
	VehicleType      *string `json:"vehicle_type"`
	OwnershipType    *string `json:"ownership_type"`
	SeatCapacity     *int    `json:"seat_capacity"`
	Status           *string `json:"status"`
	AssignedDriverID *uint   `json:"assigned_driver_id"`
	RouteID          *uint   `json:"route_id"`
}

func UpdateVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	var input updateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if input.VehicleName != nil {
		vehicle.VehicleName = *input.VehicleName
	}
	if input.VehicleType != nil {
		vehicle.VehicleType = strings.ToLower(*input.VehicleType)
	}
	if input.OwnershipType != nil {
		vehicle.OwnershipType = strings.ToLower(*input.OwnershipType)
	}
	if input.SeatCapacity != nil {
		if *input.SeatCapacity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seat_capacity must be greater than zero"})
			return
		}
		vehicle.SeatCapacity = *input.SeatCapacity
	}
	if input.Status != nil {
		switch *input.Status {
		case models.VehicleIdle, models.VehicleInTerminal, models.VehicleDeparted:
			vehicle.Status = *input.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle status"})
			return
		}
	}
	if input.AssignedDriverID != nil {
		var driver models.Driver
		if err := config.DB.First(&driver, *input.AssignedDriverID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assigned driver does not exist"})
			return
		}
		vehicle.AssignedDriverID = *input.AssignedDriverID
	}
	if input.RouteID != nil {
		var route models.Route
		if err := config.DB.Where("id = ? AND active = ?", *input.RouteID, true).First(&route).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "route does not exist or is inactive"})
			return
		}
		vehicle.RouteID = *input.RouteID
	}

	if err := config.DB.Save(&vehicle).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "driver already assigned to another vehicle"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vehicle updated successfully", "vehicle": vehicle})
}

func DeleteVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	var active int64
	config.DB.Model(&models.EntryLog{}).
		Where("vehicle_id = ? AND is_active = ?", vehicle.ID, true).
		Count(&active)
	if active > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vehicle is currently in the terminal queue"})
		return
	}

	if err := config.DB.Delete(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}

// RegenerateQRCodes recomputes the QR value for the whole fleet, used
// after plate corrections.
func RegenerateQRCodes(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}

	updated := 0
	for i := range vehicles {
		v := &vehicles[i]
		qr := models.MakeQRValue(v.ID, v.LicensePlate)
		if qr == v.QRValue {
			continue
		}
		if err := config.DB.Model(v).UpdateColumn("qr_value", qr).Error; err != nil {
			logrus.WithError(err).Errorf("Failed to regenerate QR for %s", v.LicensePlate)
			continue
		}
		updated++
	}

	c.JSON(http.StatusOK, gin.H{"message": "QR codes regenerated", "updated": updated, "total": len(vehicles)})
}
