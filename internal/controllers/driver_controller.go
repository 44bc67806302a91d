package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

type registerDriverInput struct {
	FirstName     string `json:"first_name" binding:"required"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name" binding:"required"`
	Suffix        string `json:"suffix"`
	MobileNumber  string `json:"mobile_number" binding:"required"`
	Email         string `json:"email"`
	LicenseNumber string `json:"license_number" binding:"required"`
	LicenseExpiry string `json:"license_expiry" binding:"required"` // "2006-01-02"
}

// RegisterDriver creates a driver record. The driver code is assigned
// automatically once the row exists.
func RegisterDriver(c *gin.Context) {
	var input registerDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver input: " + err.Error()})
		return
	}

	expiry, err := time.ParseInLocation("2006-01-02", input.LicenseExpiry, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid license_expiry date, expected YYYY-MM-DD"})
		return
	}
	if expiry.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "License is already expired"})
		return
	}

	driver := models.Driver{
		FirstName:     input.FirstName,
		MiddleName:    input.MiddleName,
		LastName:      input.LastName,
		Suffix:        input.Suffix,
		MobileNumber:  input.MobileNumber,
		Email:         input.Email,
		LicenseNumber: input.LicenseNumber,
		LicenseExpiry: expiry,
	}
	if err := config.DB.Create(&driver).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "license number already registered"})
			return
		}
		logrus.WithError(err).Error("Failed to create driver")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create driver: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}

// ListDrivers returns all drivers with their assigned vehicle, if any.
func ListDrivers(c *gin.Context) {
	var drivers []models.Driver
	if err := config.DB.Preload("Vehicle").Order("last_name, first_name").Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

func GetDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var driver models.Driver
	if err := config.DB.Preload("Vehicle").Preload("Vehicle.Route").First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

type updateDriverInput struct {
	FirstName     *string `json:"first_name"`
	MiddleName    *string `json:"middle_name"`
	LastName      *string `json:"last_name"`
	Suffix        *string `json:"suffix"`
	MobileNumber  *string `json:"mobile_number"`
	Email         *string `json:"email"`
	LicenseNumber *string `json:"license_number"`
	LicenseExpiry *string `json:"license_expiry"`
}

func UpdateDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	var input updateDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if input.FirstName != nil {
		driver.FirstName = *input.FirstName
	}
	if input.MiddleName != nil {
		driver.MiddleName = *input.MiddleName
	}
	if input.LastName != nil {
		driver.LastName = *input.LastName
	}
	if input.Suffix != nil {
		driver.Suffix = *input.Suffix
	}
	if input.MobileNumber != nil {
		driver.MobileNumber = *input.MobileNumber
	}
	if input.Email != nil {
		driver.Email = *input.Email
	}
	if input.LicenseNumber != nil {
		driver.LicenseNumber = *input.LicenseNumber
	}
	if input.LicenseExpiry != nil {
		expiry, err := time.ParseInLocation("2006-01-02", *input.LicenseExpiry, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid license_expiry date, expected YYYY-MM-DD"})
			return
		}
		driver.LicenseExpiry = expiry
	}

	if err := config.DB.Save(&driver).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "license number already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Driver updated successfully", "driver": driver})
}

// DeleteDriver removes a driver. Drivers with an assigned vehicle must
// be unassigned first so the registry never orphans a vehicle.
func DeleteDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var driver models.Driver
	if err := config.DB.Preload("Vehicle").First(&driver, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}
	if driver.Vehicle != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Driver is assigned to vehicle " + driver.Vehicle.LicensePlate + "; reassign the vehicle first"})
		return
	}

	if err := config.DB.Delete(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted successfully"})
}
