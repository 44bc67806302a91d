package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

// AdminDashboard returns the admin landing-page figures: fleet totals,
// the live queue size, accumulated profit and month/year revenue.
func AdminDashboard(c *gin.Context) {
	var totalDrivers, totalVehicles, totalQueue int64
	config.DB.Model(&models.Driver{}).Count(&totalDrivers)
	config.DB.Model(&models.Vehicle{}).Count(&totalVehicles)
	config.DB.Model(&models.EntryLog{}).
		Where("is_active = ? AND status = ?", true, models.EntryLogSuccess).
		Count(&totalQueue)

	totalProfit := sumDecimal(config.DB.Model(&models.Profit{}), "amount")

	now := time.Now()
	month := makeMonth(now.Year(), now.Month())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.Local)

	monthlyRevenue := sumDecimal(
		config.DB.Model(&models.EntryLog{}).
			Where("status = ?", models.EntryLogSuccess).
			Where("created_at >= ? AND created_at < ?", month.Start, month.End),
		"fee_charged")
	annualRevenue := sumDecimal(
		config.DB.Model(&models.EntryLog{}).
			Where("status = ?", models.EntryLogSuccess).
			Where("created_at >= ?", yearStart),
		"fee_charged")

	c.JSON(http.StatusOK, gin.H{
		"total_drivers":   totalDrivers,
		"total_vehicles":  totalVehicles,
		"total_queue":     totalQueue,
		"total_profit":    totalProfit,
		"monthly_revenue": monthlyRevenue,
		"annual_revenue":  annualRevenue,
		"now":             now,
	})
}

// AdminDashboardData is the live-refresh endpoint behind the admin
// dashboard: totals plus a 7-day profit trend and the most recent queue
// entries.
func AdminDashboardData(c *gin.Context) {
	var totalDrivers, totalVehicles, totalQueue int64
	config.DB.Model(&models.Driver{}).Count(&totalDrivers)
	config.DB.Model(&models.Vehicle{}).Count(&totalVehicles)
	config.DB.Model(&models.EntryLog{}).
		Where("is_active = ? AND status = ?", true, models.EntryLogSuccess).
		Count(&totalQueue)

	totalDeposits := sumDecimal(config.DB.Model(&models.Deposit{}), "amount")
	totalRevenue := sumDecimal(
		config.DB.Model(&models.EntryLog{}).Where("status = ?", models.EntryLogSuccess),
		"fee_charged")
	totalProfit := sumDecimal(config.DB.Model(&models.Profit{}), "amount")

	// Last 7 days profit trend
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, -6)
	chartLabels := make([]string, 0, 7)
	chartData := make([]float64, 0, 7)
	for i := 0; i < 7; i++ {
		dayStart := start.AddDate(0, 0, i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		total := sumDecimal(
			config.DB.Model(&models.Profit{}).
				Where("date_recorded >= ? AND date_recorded < ?", dayStart, dayEnd),
			"amount")
		chartLabels = append(chartLabels, dayStart.Format("Jan 02"))
		f, _ := total.Float64()
		chartData = append(chartData, f)
	}

	var recent []models.EntryLog
	config.DB.Where("is_active = ? AND status = ?", true, models.EntryLogSuccess).
		Preload("Vehicle").
		Preload("Vehicle.AssignedDriver").
		Order("created_at DESC").
		Limit(10).
		Find(&recent)

	recentQueues := make([]gin.H, 0, len(recent))
	for _, e := range recent {
		recentQueues = append(recentQueues, gin.H{
			"license_plate": e.Vehicle.LicensePlate,
			"driver_name":   e.Vehicle.AssignedDriver.FullName(),
			"entry_time":    e.EntryTime,
		})
	}

	totalDepositsF, _ := totalDeposits.Float64()
	totalRevenueF, _ := totalRevenue.Float64()
	totalProfitF, _ := totalProfit.Float64()

	c.JSON(http.StatusOK, gin.H{
		"total_drivers":  totalDrivers,
		"total_vehicles": totalVehicles,
		"total_queue":    totalQueue,
		"total_deposits": totalDepositsF,
		"total_revenue":  totalRevenueF,
		"total_profit":   totalProfitF,
		"chart_labels":   chartLabels,
		"chart_data":     chartData,
		"recent_queues":  recentQueues,
	})
}

// StaffDashboard returns the staff-admin landing-page counts.
func StaffDashboard(c *gin.Context) {
	var totalDrivers, totalVehicles, totalQueue int64
	config.DB.Model(&models.Driver{}).Count(&totalDrivers)
	config.DB.Model(&models.Vehicle{}).Count(&totalVehicles)
	config.DB.Model(&models.EntryLog{}).
		Where("is_active = ? AND status = ?", true, models.EntryLogSuccess).
		Count(&totalQueue)

	c.JSON(http.StatusOK, gin.H{
		"total_drivers":  totalDrivers,
		"total_vehicles": totalVehicles,
		"total_queue":    totalQueue,
	})
}

// TreasurerDashboard is the treasurer workspace: own request counts by
// status, recent requests, and a month-filtered request history.
func TreasurerDashboard(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	countFor := func(status string) int64 {
		var n int64
		config.DB.Model(&models.Deposit{}).
			Where("created_by_id = ? AND status = ?", user.ID, status).
			Count(&n)
		return n
	}

	var recent []models.Deposit
	config.DB.Where("created_by_id = ?", user.ID).
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("ApprovedBy").
		Order("created_at DESC").
		Limit(10).
		Find(&recent)

	month := parseMonth(c.Query("month"), time.Now())
	var monthDeposits []models.Deposit
	config.DB.Where("created_by_id = ?", user.ID).
		Where("created_at >= ? AND created_at < ?", month.Start, month.End).
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("ApprovedBy").
		Order("created_at DESC").
		Find(&monthDeposits)

	c.JSON(http.StatusOK, gin.H{
		"my_pending":          countFor(models.DepositPending),
		"my_approved":         countFor(models.DepositApproved),
		"my_rejected":         countFor(models.DepositRejected),
		"recent_deposits":     recent,
		"all_deposits":        monthDeposits,
		"selected_month":      month.Key(),
		"selected_month_name": month.DisplayName(),
		"prev_month":          month.Prev().Key(),
		"next_month":          month.Next().Key(),
	})
}
