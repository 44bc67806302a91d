package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

type requestDepositInput struct {
	VehicleID     uint   `json:"vehicle_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	ORCode        string `json:"or_code" binding:"required"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

// RequestDeposit files a treasurer deposit request. The request sits in
// pending until a staff admin decides it; the wallet is untouched until
// approval.
func RequestDeposit(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var input requestDepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deposit request: " + err.Error()})
		return
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive number"})
		return
	}

	settings, err := models.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings: " + err.Error()})
		return
	}
	if amount.LessThan(settings.MinDepositAmount) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Minimum deposit amount is " + settings.MinDepositAmount.StringFixed(2),
		})
		return
	}

	method := input.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	switch method {
	case models.PaymentCash, models.PaymentGCash, models.PaymentBankTransfer:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
		return
	}

	var existing int64
	config.DB.Model(&models.Deposit{}).Where("or_code = ?", input.ORCode).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "OR code has already been used"})
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Preload("AssignedDriver").First(&vehicle, input.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	var wallet models.Wallet
	if err := config.DB.Where(models.Wallet{VehicleID: vehicle.ID}).
		Attrs(models.Wallet{Balance: decimal.Zero}).
		FirstOrCreate(&wallet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open wallet: " + err.Error()})
		return
	}

	orCode := input.ORCode
	deposit := models.Deposit{
		WalletID:        wallet.ID,
		Amount:          amount,
		ORCode:          &orCode,
		ReferenceNumber: uuid.NewString(),
		Status:          models.DepositPending,
		PaymentMethod:   method,
		Notes:           input.Notes,
		CreatedByID:     user.ID,
	}
	if err := config.DB.Create(&deposit).Error; err != nil {
		// The pre-check races with concurrent requests; the unique index
		// is the real guard.
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "OR code has already been used"})
			return
		}
		logrus.WithError(err).Error("Failed to file deposit request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to file deposit request: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"deposit_id": deposit.ID,
		"vehicle_id": vehicle.ID,
		"amount":     amount.String(),
		"treasurer":  user.Username,
	}).Info("Deposit request filed")

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Deposit request submitted for approval",
		"deposit":       deposit,
		"license_plate": vehicle.LicensePlate,
	})
}

// TreasurerDeposits lists the requesting treasurer's own deposits,
// optionally filtered by status.
func TreasurerDeposits(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	query := config.DB.Where("created_by_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var deposits []models.Deposit
	if err := query.
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("ApprovedBy").
		Order("created_at DESC").
		Find(&deposits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing deposits: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deposits})
}

// loadOwnDeposit fetches a deposit and enforces that it belongs to the
// requesting treasurer.
func loadOwnDeposit(c *gin.Context) (models.Deposit, bool) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return models.Deposit{}, false
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return models.Deposit{}, false
	}

	var deposit models.Deposit
	if err := config.DB.
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("CreatedBy").
		Preload("ApprovedBy").
		First(&deposit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return models.Deposit{}, false
	}
	if deposit.CreatedByID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own deposit requests"})
		return models.Deposit{}, false
	}
	return deposit, true
}

func TreasurerDepositDetails(c *gin.Context) {
	deposit, ok := loadOwnDeposit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposit": deposit})
}

// TreasurerDepositReceipt returns the receipt payload for an approved or
// successful own deposit.
func TreasurerDepositReceipt(c *gin.Context) {
	deposit, ok := loadOwnDeposit(c)
	if !ok {
		return
	}
	if !deposit.Credited() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Receipt is only available for approved deposits"})
		return
	}

	vehicle := deposit.Wallet.Vehicle
	receipt := gin.H{
		"reference_number": deposit.ReferenceNumber,
		"date":             deposit.CreatedAt,
		"amount":           deposit.Amount,
		"payment_method":   deposit.PaymentMethod,
		"status":           deposit.Status,
		"license_plate":    vehicle.LicensePlate,
		"driver_name":      vehicle.AssignedDriver.FullName(),
		"requested_by":     deposit.CreatedBy.FullName(),
	}
	if deposit.ORCode != nil {
		receipt["or_code"] = *deposit.ORCode
	}
	if deposit.ApprovedBy != nil {
		receipt["approved_by"] = deposit.ApprovedBy.FullName()
		receipt["approved_at"] = deposit.ApprovedAt
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}

// PendingDeposits lists deposit requests awaiting a decision.
func PendingDeposits(c *gin.Context) {
	var deposits []models.Deposit
	if err := config.DB.
		Where("status = ?", models.DepositPending).
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("CreatedBy").
		Order("created_at ASC").
		Find(&deposits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing pending deposits: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": deposits, "pending_count": len(deposits)})
}

type decideDepositInput struct {
	Action string `json:"action" binding:"required"` // "approve" or "reject"
	Notes  string `json:"notes"`
}

// DecideDeposit approves or rejects a pending deposit request. The
// status flip is a conditional UPDATE keyed on the pending status, so
// concurrent decisions cannot credit a wallet twice.
func DecideDeposit(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input decideDepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid decision: " + err.Error()})
		return
	}

	var newStatus string
	switch input.Action {
	case "approve":
		newStatus = models.DepositApproved
	case "reject":
		newStatus = models.DepositRejected
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve or reject"})
		return
	}

	var deposit models.Deposit
	if err := config.DB.First(&deposit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         newStatus,
		"approved_by_id": user.ID,
		"approved_at":    now,
	}
	if input.Notes != "" {
		updates["notes"] = input.Notes
	}

	res := tx.Model(&models.Deposit{}).
		Where("id = ? AND status = ?", deposit.ID, models.DepositPending).
		Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update deposit: " + res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "Deposit has already been decided"})
		return
	}

	if newStatus == models.DepositApproved {
		if err := tx.Model(&models.Wallet{}).
			Where("id = ?", deposit.WalletID).
			UpdateColumn("balance", gorm.Expr("balance + ?", deposit.Amount)).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit wallet: " + err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"deposit_id": deposit.ID,
		"action":     input.Action,
		"decided_by": user.Username,
	}).Info("Deposit request decided")

	config.DB.
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("CreatedBy").
		Preload("ApprovedBy").
		First(&deposit, deposit.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Deposit " + newStatus, "deposit": deposit})
}
