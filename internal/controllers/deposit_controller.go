package controllers

import (
	"encoding/csv"
	"errors"
	"fmt"
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

// walletRow is a wallet-roster line with last-deposit annotations pulled
// in by subselects so the page needs a single query.
type walletRow struct {
	WalletID          uint             `json:"wallet_id"`
	VehicleID         uint             `json:"vehicle_id"`
	LicensePlate      string           `json:"license_plate"`
	DriverName        string           `json:"driver_name"`
	LicenseNumber     string           `json:"license_number"`
	Balance           decimal.Decimal  `json:"balance"`
	DepositCount      int64            `json:"deposit_count"`
	LastDepositAmount *decimal.Decimal `json:"last_deposit_amount,omitempty"`
	LastDepositAt     *time.Time       `json:"last_deposit_at,omitempty"`
}

func walletRosterQuery() *gorm.DB {
	return config.DB.Model(&models.Wallet{}).
		Select(`wallets.id AS wallet_id,
			vehicles.id AS vehicle_id,
			vehicles.license_plate AS license_plate,
			TRIM(drivers.first_name || ' ' || drivers.last_name) AS driver_name,
			drivers.license_number AS license_number,
			wallets.balance AS balance,
			(SELECT COUNT(*) FROM deposits WHERE deposits.wallet_id = wallets.id AND deposits.deleted_at IS NULL) AS deposit_count,
			(SELECT amount FROM deposits WHERE deposits.wallet_id = wallets.id AND deposits.deleted_at IS NULL ORDER BY created_at DESC LIMIT 1) AS last_deposit_amount,
			(SELECT created_at FROM deposits WHERE deposits.wallet_id = wallets.id AND deposits.deleted_at IS NULL ORDER BY created_at DESC LIMIT 1) AS last_deposit_at`).
		Joins("JOIN vehicles ON vehicles.id = wallets.vehicle_id AND vehicles.deleted_at IS NULL").
		Joins("JOIN drivers ON drivers.id = vehicles.assigned_driver_id AND drivers.deleted_at IS NULL")
}

// DepositsPage is the staff deposits workspace: the searchable wallet
// roster, aggregate stats, and the month-filtered deposit history.
func DepositsPage(c *gin.Context) {
	settings, err := models.GetSettings(config.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings: " + err.Error()})
		return
	}

	query := walletRosterQuery()
	if q := c.Query("q"); q != "" {
		pattern := searchPattern(q)
		query = query.Where(
			`LOWER(vehicles.license_plate) LIKE ? OR
			 LOWER(drivers.first_name) LIKE ? OR
			 LOWER(drivers.last_name) LIKE ? OR
			 LOWER(drivers.license_number) LIKE ?`,
			pattern, pattern, pattern, pattern)
	}

	switch c.DefaultQuery("sort", "newest") {
	case "largest":
		query = query.Order("wallets.balance DESC")
	case "smallest":
		query = query.Order("wallets.balance ASC")
	case "driver_asc":
		query = query.Order("drivers.last_name ASC, drivers.first_name ASC")
	case "driver_desc":
		query = query.Order("drivers.last_name DESC, drivers.first_name DESC")
	default:
		query = query.Order("wallets.created_at DESC")
	}

	var wallets []walletRow
	if err := query.Scan(&wallets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing wallets: " + err.Error()})
		return
	}

	totalBalance := sumDecimal(config.DB.Model(&models.Wallet{}), "balance")
	var lowBalance int64
	config.DB.Model(&models.Wallet{}).
		Where("balance < ?", settings.MinDepositAmount).
		Count(&lowBalance)
	var totalDeposits int64
	config.DB.Model(&models.Deposit{}).Count(&totalDeposits)

	month := parseMonth(c.Query("month"), time.Now())
	var history []models.Deposit
	config.DB.Where("created_at >= ? AND created_at < ?", month.Start, month.End).
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("CreatedBy").
		Preload("ApprovedBy").
		Order("created_at DESC").
		Find(&history)

	c.JSON(http.StatusOK, gin.H{
		"wallets":             wallets,
		"total_balance":       totalBalance,
		"low_balance_count":   lowBalance,
		"total_deposits":      totalDeposits,
		"min_deposit_amount":  settings.MinDepositAmount,
		"deposits":            history,
		"selected_month":      month.Key(),
		"selected_month_name": month.DisplayName(),
		"prev_month":          month.Prev().Key(),
		"next_month":          month.Next().Key(),
	})
}

type createDepositInput struct {
	VehicleID     uint   `json:"vehicle_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

// CreateDeposit records a direct staff deposit. These skip the approval
// queue: the wallet is credited immediately and the deposit is stored as
// successful.
func CreateDeposit(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var input createDepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deposit input: " + err.Error()})
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

	var vehicle models.Vehicle
	if err := config.DB.Preload("AssignedDriver").First(&vehicle, input.VehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
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

	var wallet models.Wallet
	if err := tx.Where(models.Wallet{VehicleID: vehicle.ID}).
		Attrs(models.Wallet{Balance: decimal.Zero}).
		FirstOrCreate(&wallet).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open wallet: " + err.Error()})
		return
	}

	deposit := models.Deposit{
		WalletID:        wallet.ID,
		Amount:          amount,
		ReferenceNumber: uuid.NewString(),
		Status:          models.DepositSuccessful,
		PaymentMethod:   method,
		Notes:           input.Notes,
		CreatedByID:     user.ID,
	}
	if err := tx.Create(&deposit).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("Failed to record deposit")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record deposit: " + err.Error()})
		return
	}

	if err := tx.Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit wallet: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"deposit_id": deposit.ID,
		"vehicle_id": vehicle.ID,
		"amount":     amount.String(),
		"staff":      user.Username,
	}).Info("Direct deposit recorded")

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Deposit recorded successfully",
		"deposit":       deposit,
		"license_plate": vehicle.LicensePlate,
		"driver_name":   vehicle.AssignedDriver.FullName(),
	})
}

// DepositReceipt returns the printable-receipt payload for a deposit.
func DepositReceipt(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var deposit models.Deposit
	if err := config.DB.
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("Wallet.Vehicle.Route").
		Preload("CreatedBy").
		Preload("ApprovedBy").
		First(&deposit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
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
		"processed_by":     deposit.CreatedBy.FullName(),
		"wallet_balance":   deposit.Wallet.Balance,
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

// ExportDepositsCSV streams the selected month's deposits as CSV.
func ExportDepositsCSV(c *gin.Context) {
	month := parseMonth(c.Query("month"), time.Now())

	var deposits []models.Deposit
	if err := config.DB.
		Where("created_at >= ? AND created_at < ?", month.Start, month.End).
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("CreatedBy").
		Order("created_at DESC").
		Find(&deposits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing deposits: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("deposits_%04d_%02d.csv", month.Year, int(month.Month))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Reference Number", "Date & Time", "Driver Name", "License Plate", "Amount", "Payment Method", "Status", "Processed By"})
	for _, d := range deposits {
		vehicle := d.Wallet.Vehicle
		_ = w.Write([]string{
			d.ReferenceNumber,
			d.CreatedAt.Format("2006-01-02 15:04:05"),
			vehicle.AssignedDriver.FullName(),
			vehicle.LicensePlate,
			d.Amount.StringFixed(2),
			d.PaymentMethod,
			d.Status,
			d.CreatedBy.FullName(),
		})
	}
	w.Flush()
}
