package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

// GetSystemSettings returns the current terminal parameters.
func GetSystemSettings(c *gin.Context) {
	settings, err := models.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type updateSettingsInput struct {
	MinDepositAmount *string `json:"min_deposit_amount"`
	TerminalFee      *string `json:"terminal_fee"`
	QueueCapacity    *int    `json:"queue_capacity"`
}

// UpdateSystemSettings adjusts the terminal parameters.
func UpdateSystemSettings(c *gin.Context) {
	settings, err := models.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings: " + err.Error()})
		return
	}

	var input updateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if input.MinDepositAmount != nil {
		v, err := decimal.NewFromString(*input.MinDepositAmount)
		if err != nil || !v.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_deposit_amount must be a positive number"})
			return
		}
		settings.MinDepositAmount = v
	}
	if input.TerminalFee != nil {
		v, err := decimal.NewFromString(*input.TerminalFee)
		if err != nil || !v.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "terminal_fee must be a positive number"})
			return
		}
		settings.TerminalFee = v
	}
	if input.QueueCapacity != nil {
		if *input.QueueCapacity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "queue_capacity must be greater than zero"})
			return
		}
		settings.QueueCapacity = *input.QueueCapacity
	}

	if err := config.DB.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"min_deposit":    settings.MinDepositAmount.String(),
		"terminal_fee":   settings.TerminalFee.String(),
		"queue_capacity": settings.QueueCapacity,
	}).Info("System settings updated")

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully", "settings": settings})
}

// PublicSettingsAPI exposes the rider-facing parameters without
// authentication.
func PublicSettingsAPI(c *gin.Context) {
	settings, err := models.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"terminal_fee":       settings.TerminalFee,
		"min_deposit_amount": settings.MinDepositAmount,
		"queue_capacity":     settings.QueueCapacity,
	})
}

// AjaxSearchDrivers backs the deposit-form autocomplete: it matches on
// plate, driver name or license number and returns flat rows keyed by
// vehicle.
func AjaxSearchDrivers(c *gin.Context) {
	q := c.Query("q")
	if len(q) < 2 {
		c.JSON(http.StatusOK, gin.H{"results": []gin.H{}})
		return
	}
	pattern := searchPattern(q)

	var vehicles []models.Vehicle
	if err := config.DB.
		Joins("JOIN drivers ON drivers.id = vehicles.assigned_driver_id AND drivers.deleted_at IS NULL").
		Where(`LOWER(vehicles.license_plate) LIKE ? OR
			LOWER(drivers.first_name) LIKE ? OR
			LOWER(drivers.last_name) LIKE ? OR
			LOWER(drivers.license_number) LIKE ?`,
			pattern, pattern, pattern, pattern).
		Preload("AssignedDriver").
		Limit(10).
		Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed: " + err.Error()})
		return
	}

	results := make([]gin.H, 0, len(vehicles))
	for _, v := range vehicles {
		name := v.AssignedDriver.FullName()
		results = append(results, gin.H{
			"vehicle_id":     v.ID,
			"license_plate":  v.LicensePlate,
			"driver_name":    name,
			"license_number": v.AssignedDriver.LicenseNumber,
			"display":        v.LicensePlate + " - " + name,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// AjaxValidateORCode checks OR-code availability for inline form
// validation.
func AjaxValidateORCode(c *gin.Context) {
	code := c.Query("or_code")
	if code == "" {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "OR code is required"})
		return
	}

	var count int64
	config.DB.Model(&models.Deposit{}).Where("or_code = ?", code).Count(&count)
	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "OR code has already been used"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// AjaxWalletBalance returns a vehicle's current wallet balance.
func AjaxWalletBalance(c *gin.Context) {
	raw := c.Query("vehicle_id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle_id is required"})
		return
	}

	var wallet models.Wallet
	if err := config.DB.Where("vehicle_id = ?", raw).First(&wallet).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"balance": decimal.Zero, "exists": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": wallet.Balance, "exists": true})
}
