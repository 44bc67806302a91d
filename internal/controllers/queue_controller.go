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

type qrScanInput struct {
	QRValue string `json:"qr_value" binding:"required"`
}

func vehicleByQR(qr string) (models.Vehicle, error) {
	var vehicle models.Vehicle
	err := config.DB.
		Preload("AssignedDriver").
		Preload("Route").
		Preload("Wallet").
		Where("qr_value = ?", qr).
		First(&vehicle).Error
	return vehicle, err
}

func activeEntryFor(vehicleID uint) (models.EntryLog, error) {
	var entry models.EntryLog
	err := config.DB.
		Where("vehicle_id = ? AND is_active = ? AND status = ?", vehicleID, true, models.EntryLogSuccess).
		First(&entry).Error
	return entry, err
}

// QRScanEntry admits a vehicle into the terminal queue. The terminal
// fee is taken from the wallet, the entry log and its archive row are
// written, and a profit record is kept, all in one transaction.
func QRScanEntry(c *gin.Context) {
	var input qrScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan payload: " + err.Error()})
		return
	}

	vehicle, err := vehicleByQR(input.QRValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown QR code"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if _, err := activeEntryFor(vehicle.ID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Vehicle is already in the terminal queue"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		return
	}

	settings, err := models.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings: " + err.Error()})
		return
	}

	var queueSize int64
	config.DB.Model(&models.EntryLog{}).
		Where("is_active = ? AND status = ?", true, models.EntryLogSuccess).
		Count(&queueSize)
	if settings.QueueCapacity > 0 && queueSize >= int64(settings.QueueCapacity) {
		c.JSON(http.StatusConflict, gin.H{"error": "Terminal queue is at capacity"})
		return
	}

	if vehicle.Wallet == nil {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":         "Vehicle has no wallet; record a deposit first",
			"license_plate": vehicle.LicensePlate,
		})
		return
	}

	fee := settings.TerminalFee
	if vehicle.Wallet.Balance.LessThan(fee) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":         "Insufficient wallet balance for the terminal fee",
			"balance":       vehicle.Wallet.Balance,
			"terminal_fee":  fee,
			"license_plate": vehicle.LicensePlate,
			"driver_name":   vehicle.AssignedDriver.FullName(),
		})
		return
	}

	now := time.Now()
	newBalance := vehicle.Wallet.Balance.Sub(fee)

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	if err := tx.Model(&models.Wallet{}).
		Where("id = ?", vehicle.Wallet.ID).
		UpdateColumn("balance", gorm.Expr("balance - ?", fee)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to charge terminal fee: " + err.Error()})
		return
	}

	entry := models.EntryLog{
		VehicleID:     vehicle.ID,
		EntryTime:     now,
		FeeCharged:    fee,
		WalletBalance: newBalance,
		Status:        models.EntryLogSuccess,
		IsActive:      true,
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record entry: " + err.Error()})
		return
	}

	archive := models.Transaction{
		EntryLogID:            entry.ID,
		VehiclePlate:          vehicle.LicensePlate,
		DriverName:            vehicle.AssignedDriver.FullName(),
		RouteName:             vehicle.Route.Name,
		FeeCharged:            fee,
		WalletBalanceSnapshot: newBalance,
		TransactionDate:       now,
		EntryTimestamp:        now,
		TransactionYear:       now.Year(),
		TransactionMonth:      int(now.Month()),
		TransactionDay:        now.Day(),
		IsRevenueCounted:      true,
	}
	if err := tx.Create(&archive).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive transaction: " + err.Error()})
		return
	}

	profit := models.Profit{Amount: fee, Source: "terminal_fee", DateRecorded: now}
	if err := tx.Create(&profit).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record profit: " + err.Error()})
		return
	}

	if err := tx.Model(&models.Vehicle{}).
		Where("id = ?", vehicle.ID).
		UpdateColumn("status", models.VehicleInTerminal).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle status: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"vehicle_id":  vehicle.ID,
		"plate":       vehicle.LicensePlate,
		"fee_charged": fee.String(),
	}).Info("Vehicle entered terminal")

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Entry recorded",
		"entry":          entry,
		"license_plate":  vehicle.LicensePlate,
		"driver_name":    vehicle.AssignedDriver.FullName(),
		"route_name":     vehicle.Route.Name,
		"fee_charged":    fee,
		"wallet_balance": newBalance,
	})
}

// closeEntry marks an entry log finished and returns the vehicle to the
// departed state.
func closeEntry(entry *models.EntryLog, vehicleID uint) error {
	now := time.Now()
	tx := config.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	updates := map[string]interface{}{
		"exit_time": now,
		"is_active": false,
	}
	if entry.DepartureTime == nil {
		updates["departure_time"] = now
	}
	if err := tx.Model(entry).Updates(updates).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Model(&models.Transaction{}).
		Where("entry_log_id = ?", entry.ID).
		UpdateColumn("exit_timestamp", now).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		UpdateColumn("status", models.VehicleDeparted).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// QRScanExit closes a vehicle's active queue entry via its QR code.
func QRScanExit(c *gin.Context) {
	var input qrScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scan payload: " + err.Error()})
		return
	}

	vehicle, err := vehicleByQR(input.QRValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown QR code"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	entry, err := activeEntryFor(vehicle.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "Vehicle is not in the terminal queue"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := closeEntry(&entry, vehicle.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record exit: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"vehicle_id": vehicle.ID,
		"plate":      vehicle.LicensePlate,
	}).Info("Vehicle exited terminal")

	c.JSON(http.StatusOK, gin.H{
		"message":       "Exit recorded",
		"license_plate": vehicle.LicensePlate,
		"driver_name":   vehicle.AssignedDriver.FullName(),
	})
}

// StartBoarding flags an active queue entry as boarding.
func StartBoarding(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var entry models.EntryLog
	if err := config.DB.
		Where("id = ? AND is_active = ?", id, true).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Active queue entry not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}
	if entry.BoardingStarted {
		c.JSON(http.StatusConflict, gin.H{"error": "Boarding has already started"})
		return
	}

	if err := config.DB.Model(&entry).UpdateColumn("boarding_started", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start boarding: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Boarding started", "entry_id": entry.ID})
}

// MarkDeparted closes an active queue entry from the queue screen.
func MarkDeparted(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var entry models.EntryLog
	if err := config.DB.
		Where("id = ? AND is_active = ?", id, true).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Active queue entry not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := closeEntry(&entry, entry.VehicleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark departed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle marked departed", "entry_id": entry.ID})
}

type updateDepartureInput struct {
	DepartureTime string `json:"departure_time" binding:"required"` // "2006-01-02 15:04"
}

// UpdateDeparture sets or edits the scheduled dispatch time shown on the
// queue board.
func UpdateDeparture(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input updateDepartureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	departure, err := time.ParseInLocation("2006-01-02 15:04", input.DepartureTime, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departure_time, expected YYYY-MM-DD HH:MM"})
		return
	}

	var entry models.EntryLog
	if err := config.DB.
		Where("id = ? AND is_active = ?", id, true).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Active queue entry not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := config.DB.Model(&entry).UpdateColumn("departure_time", departure).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update departure: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Departure time updated", "departure_time": departure})
}

// QueueHistory lists the closed queue entries for the selected month,
// newest first.
func QueueHistory(c *gin.Context) {
	month := parseMonth(c.Query("month"), time.Now())

	var entries []models.EntryLog
	if err := config.DB.
		Where("is_active = ?", false).
		Where("entry_time >= ? AND entry_time < ?", month.Start, month.End).
		Preload("Vehicle").
		Preload("Vehicle.AssignedDriver").
		Preload("Vehicle.Route").
		Order("entry_time DESC").
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing queue history: " + err.Error()})
		return
	}

	history := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		history = append(history, gin.H{
			"entry_id":       e.ID,
			"license_plate":  e.Vehicle.LicensePlate,
			"driver_name":    e.Vehicle.AssignedDriver.FullName(),
			"route_name":     e.Vehicle.Route.Name,
			"entry_time":     e.EntryTime,
			"exit_time":      e.ExitTime,
			"departure_time": e.DepartureTime,
			"fee_charged":    e.FeeCharged,
			"status":         e.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"history":             history,
		"total":               len(history),
		"selected_month":      month.Key(),
		"selected_month_name": month.DisplayName(),
		"prev_month":          month.Prev().Key(),
		"next_month":          month.Next().Key(),
	})
}

func liveQueue() ([]models.EntryLog, error) {
	var entries []models.EntryLog
	err := config.DB.
		Where("is_active = ? AND status = ?", true, models.EntryLogSuccess).
		Preload("Vehicle").
		Preload("Vehicle.AssignedDriver").
		Preload("Vehicle.Route").
		Order("entry_time ASC").
		Find(&entries).Error
	return entries, err
}

func queueEntryPayload(pos int, e models.EntryLog) gin.H {
	return gin.H{
		"entry_id":         e.ID,
		"position":         pos,
		"license_plate":    e.Vehicle.LicensePlate,
		"vehicle_type":     e.Vehicle.VehicleType,
		"driver_name":      e.Vehicle.AssignedDriver.FullName(),
		"route_name":       e.Vehicle.Route.Name,
		"seat_capacity":    e.Vehicle.SeatCapacity,
		"entry_time":       e.EntryTime,
		"boarding_started": e.BoardingStarted,
		"departure_time":   e.DepartureTime,
	}
}

// QueueData is the staff queue screen: live entries in arrival order
// with positions and capacity headroom.
func QueueData(c *gin.Context) {
	entries, err := liveQueue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing queue: " + err.Error()})
		return
	}
	settings, err := models.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings: " + err.Error()})
		return
	}

	queue := make([]gin.H, 0, len(entries))
	for i, e := range entries {
		queue = append(queue, queueEntryPayload(i+1, e))
	}

	c.JSON(http.StatusOK, gin.H{
		"queue":          queue,
		"queue_size":     len(entries),
		"queue_capacity": settings.QueueCapacity,
		"terminal_fee":   settings.TerminalFee,
	})
}

// PublicQueueAPI is the unauthenticated queue feed for rider-facing
// pages.
func PublicQueueAPI(c *gin.Context) {
	entries, err := liveQueue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing queue: " + err.Error()})
		return
	}

	queue := make([]gin.H, 0, len(entries))
	for i, e := range entries {
		queue = append(queue, gin.H{
			"position":         i + 1,
			"license_plate":    e.Vehicle.LicensePlate,
			"vehicle_type":     e.Vehicle.VehicleType,
			"route_name":       e.Vehicle.Route.Name,
			"boarding_started": e.BoardingStarted,
			"departure_time":   e.DepartureTime,
		})
	}
	c.JSON(http.StatusOK, gin.H{"queue": queue, "queue_size": len(entries), "as_of": time.Now()})
}

// TVDisplayAPI feeds the terminal TV board: the live queue grouped by
// route.
func TVDisplayAPI(c *gin.Context) {
	entries, err := liveQueue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing queue: " + err.Error()})
		return
	}

	order := make([]string, 0)
	grouped := make(map[string][]gin.H)
	for i, e := range entries {
		name := e.Vehicle.Route.Name
		if name == "" {
			name = "Unassigned"
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], queueEntryPayload(i+1, e))
	}

	routes := make([]gin.H, 0, len(order))
	for _, name := range order {
		routes = append(routes, gin.H{"route_name": name, "vehicles": grouped[name]})
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "queue_size": len(entries), "as_of": time.Now()})
}
