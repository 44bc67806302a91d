package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rdfs_terminal/internal/config"
	"rdfs_terminal/internal/models"
)

// creditedStatuses is the deposit-status filter used by every revenue
// report: only credited deposits count.
var creditedStatuses = []string{models.DepositApproved, models.DepositSuccessful}

// dailyDepositTotals buckets a month's credited deposits per day in Go,
// which keeps the grouping identical across database engines.
func dailyDepositTotals(month monthRange) ([]decimal.Decimal, []int, error) {
	var deposits []models.Deposit
	err := config.DB.
		Where("status IN ?", creditedStatuses).
		Where("created_at >= ? AND created_at < ?", month.Start, month.End).
		Find(&deposits).Error
	if err != nil {
		return nil, nil, err
	}

	totals := make([]decimal.Decimal, month.Days())
	counts := make([]int, month.Days())
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, d := range deposits {
		day := d.CreatedAt.In(time.Local).Day()
		totals[day-1] = totals[day-1].Add(d.Amount)
		counts[day-1]++
	}
	return totals, counts, nil
}

// dailyFeeTotals buckets a month's terminal fees per day from the
// transaction archive.
func dailyFeeTotals(month monthRange) ([]decimal.Decimal, error) {
	var txs []models.Transaction
	err := config.DB.
		Where("is_revenue_counted = ?", true).
		Where("transaction_year = ? AND transaction_month = ?", month.Year, int(month.Month)).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}

	totals := make([]decimal.Decimal, month.Days())
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, t := range txs {
		if t.TransactionDay >= 1 && t.TransactionDay <= month.Days() {
			totals[t.TransactionDay-1] = totals[t.TransactionDay-1].Add(t.FeeCharged)
		}
	}
	return totals, nil
}

// depositMonths returns the distinct months that have any deposit,
// newest first.
func depositMonths() []string {
	var stamps []time.Time
	config.DB.Model(&models.Deposit{}).Order("created_at DESC").Pluck("created_at", &stamps)

	seen := make(map[string]bool)
	months := make([]string, 0)
	for _, t := range stamps {
		key := makeMonth(t.In(time.Local).Year(), t.In(time.Local).Month()).Key()
		if !seen[key] {
			seen[key] = true
			months = append(months, key)
		}
	}
	return months
}

func monthHasDeposits(month monthRange) bool {
	var n int64
	config.DB.Model(&models.Deposit{}).
		Where("created_at >= ? AND created_at < ?", month.Start, month.End).
		Count(&n)
	return n > 0
}

// ReportsHome is the reports landing page: this month's and today's
// headline figures.
func ReportsHome(c *gin.Context) {
	now := time.Now()
	month := makeMonth(now.Year(), now.Month())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	monthDeposits := sumDecimal(
		config.DB.Model(&models.Deposit{}).
			Where("status IN ?", creditedStatuses).
			Where("created_at >= ? AND created_at < ?", month.Start, month.End),
		"amount")
	monthFees := sumDecimal(
		config.DB.Model(&models.Transaction{}).
			Where("is_revenue_counted = ?", true).
			Where("transaction_year = ? AND transaction_month = ?", month.Year, int(month.Month)),
		"fee_charged")

	todayDeposits := sumDecimal(
		config.DB.Model(&models.Deposit{}).
			Where("status IN ?", creditedStatuses).
			Where("created_at >= ?", today),
		"amount")
	todayFees := sumDecimal(
		config.DB.Model(&models.Transaction{}).
			Where("is_revenue_counted = ?", true).
			Where("transaction_date >= ?", today),
		"fee_charged")

	var todayEntries int64
	config.DB.Model(&models.EntryLog{}).
		Where("status = ? AND entry_time >= ?", models.EntryLogSuccess, today).
		Count(&todayEntries)

	c.JSON(http.StatusOK, gin.H{
		"month_name":     month.DisplayName(),
		"month_deposits": monthDeposits,
		"month_fees":     monthFees,
		"today_deposits": todayDeposits,
		"today_fees":     todayFees,
		"today_entries":  todayEntries,
	})
}

// topVehicleRow is one line of a top-depositing-vehicles table.
type topVehicleRow struct {
	LicensePlate string          `json:"license_plate"`
	DriverName   string          `json:"driver_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}

// DepositAnalytics is the deposit trend report for one month: daily
// totals, peaks, top vehicles and recent activity, with prev/next
// navigation that stops where the data does.
func DepositAnalytics(c *gin.Context) {
	now := time.Now()
	month := parseMonth(c.Query("month"), now)

	totals, counts, err := dailyDepositTotals(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading deposits: " + err.Error()})
		return
	}

	labels := make([]string, month.Days())
	totalAmount := decimal.Zero
	totalCount := 0
	peakDay, busiestDay := 0, 0
	for i := 0; i < month.Days(); i++ {
		labels[i] = month.DayLabel(i + 1)
		totalAmount = totalAmount.Add(totals[i])
		totalCount += counts[i]
		if totals[i].GreaterThan(totals[peakDay]) {
			peakDay = i
		}
		if counts[i] > counts[busiestDay] {
			busiestDay = i
		}
	}

	average := decimal.Zero
	if totalCount > 0 {
		average = totalAmount.Div(decimal.NewFromInt(int64(totalCount))).Round(2)
	}

	var topVehicles []topVehicleRow
	config.DB.Model(&models.Deposit{}).
		Select(`vehicles.license_plate AS license_plate,
			TRIM(drivers.first_name || ' ' || drivers.last_name) AS driver_name,
			SUM(deposits.amount) AS total,
			COUNT(deposits.id) AS count`).
		Joins("JOIN wallets ON wallets.id = deposits.wallet_id").
		Joins("JOIN vehicles ON vehicles.id = wallets.vehicle_id").
		Joins("JOIN drivers ON drivers.id = vehicles.assigned_driver_id").
		Where("deposits.status IN ?", creditedStatuses).
		Where("deposits.created_at >= ? AND deposits.created_at < ?", month.Start, month.End).
		Group("vehicles.license_plate, drivers.first_name, drivers.last_name").
		Order("total DESC").
		Limit(5).
		Scan(&topVehicles)

	var recent []models.Deposit
	config.DB.
		Where("created_at >= ? AND created_at < ?", month.Start, month.End).
		Preload("Wallet.Vehicle.AssignedDriver").
		Preload("CreatedBy").
		Order("created_at DESC").
		Limit(10).
		Find(&recent)

	// today_index highlights the current day on the chart when viewing
	// the current month.
	todayIndex := -1
	if month.Contains(now) {
		todayIndex = now.Day() - 1
	}

	next := month.Next()
	hasNext := !next.Start.After(now) && monthHasDeposits(next)
	prev := month.Prev()
	hasPrev := monthHasDeposits(prev)

	chartData := make([]float64, month.Days())
	for i, t := range totals {
		chartData[i], _ = t.Float64()
	}

	c.JSON(http.StatusOK, gin.H{
		"selected_month":      month.Key(),
		"selected_month_name": month.DisplayName(),
		"chart_labels":        labels,
		"chart_data":          chartData,
		"daily_counts":        counts,
		"total_amount":        totalAmount,
		"total_count":         totalCount,
		"average_deposit":     average,
		"peak_day":            month.DayLabel(peakDay + 1),
		"peak_day_amount":     totals[peakDay],
		"busiest_day":         month.DayLabel(busiestDay + 1),
		"busiest_day_count":   counts[busiestDay],
		"top_vehicles":        topVehicles,
		"recent_deposits":     recent,
		"available_months":    depositMonths(),
		"today_index":         todayIndex,
		"prev_month":          prev.Key(),
		"next_month":          next.Key(),
		"has_prev":            hasPrev,
		"has_next":            hasNext,
	})
}

// DepositsVsEntryFees compares money coming in against fees charged,
// day by day over one month.
func DepositsVsEntryFees(c *gin.Context) {
	now := time.Now()
	month := parseMonth(c.Query("month"), now)

	depositTotals, _, err := dailyDepositTotals(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading deposits: " + err.Error()})
		return
	}
	feeTotals, err := dailyFeeTotals(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading transactions: " + err.Error()})
		return
	}

	labels := make([]string, month.Days())
	depositData := make([]float64, month.Days())
	feeData := make([]float64, month.Days())
	totalDeposits, totalFees := decimal.Zero, decimal.Zero
	for i := 0; i < month.Days(); i++ {
		labels[i] = month.DayLabel(i + 1)
		depositData[i], _ = depositTotals[i].Float64()
		feeData[i], _ = feeTotals[i].Float64()
		totalDeposits = totalDeposits.Add(depositTotals[i])
		totalFees = totalFees.Add(feeTotals[i])
	}

	next := month.Next()
	hasNext := !next.Start.After(now) && monthHasDeposits(next)

	c.JSON(http.StatusOK, gin.H{
		"selected_month":      month.Key(),
		"selected_month_name": month.DisplayName(),
		"chart_labels":        labels,
		"deposit_data":        depositData,
		"fee_data":            feeData,
		"total_deposits":      totalDeposits,
		"total_fees":          totalFees,
		"net":                 totalDeposits.Sub(totalFees),
		"prev_month":          month.Prev().Key(),
		"next_month":          next.Key(),
		"has_prev":            monthHasDeposits(month.Prev()),
		"has_next":            hasNext,
	})
}

// ExportDepositsVsFeesCSV writes the deposits-vs-fees comparison as one
// CSV row per day.
func ExportDepositsVsFeesCSV(c *gin.Context) {
	month := parseMonth(c.Query("month"), time.Now())

	depositTotals, _, err := dailyDepositTotals(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading deposits: " + err.Error()})
		return
	}
	feeTotals, err := dailyFeeTotals(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading transactions: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("deposit_vs_revenue_%s.csv", month.Key())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Date", "Day", "Deposits", "Terminal Fees", "Net"})
	for i := 0; i < month.Days(); i++ {
		day := month.Day(i + 1)
		_ = w.Write([]string{
			day.Format("2006-01-02"),
			day.Format("Monday"),
			depositTotals[i].StringFixed(2),
			feeTotals[i].StringFixed(2),
			depositTotals[i].Sub(feeTotals[i]).StringFixed(2),
		})
	}
	w.Flush()
}

// latestTransactionMonth finds the most recent month that has archived
// transactions. The bool is false when the archive is empty.
func latestTransactionMonth() (monthRange, bool) {
	var latest models.Transaction
	err := config.DB.Order("transaction_date DESC").First(&latest).Error
	if err != nil {
		return monthRange{}, false
	}
	return makeMonth(latest.TransactionYear, time.Month(latest.TransactionMonth)), true
}

func monthHasTransactions(month monthRange) bool {
	var n int64
	config.DB.Model(&models.Transaction{}).
		Where("transaction_year = ? AND transaction_month = ?", month.Year, int(month.Month)).
		Count(&n)
	return n > 0
}

// ProfitReport is the terminal-fee revenue report, built entirely from
// the transaction archive so it is immune to fleet edits. Without an
// explicit month it shows the latest month that has data.
func ProfitReport(c *gin.Context) {
	now := time.Now()
	var month monthRange
	if raw := c.Query("month"); raw != "" {
		month = parseMonth(raw, now)
	} else if latest, ok := latestTransactionMonth(); ok {
		month = latest
	} else {
		month = makeMonth(now.Year(), now.Month())
	}

	var txs []models.Transaction
	if err := config.DB.
		Where("is_revenue_counted = ?", true).
		Where("transaction_year = ? AND transaction_month = ?", month.Year, int(month.Month)).
		Order("transaction_date ASC").
		Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading transactions: " + err.Error()})
		return
	}

	dayTotals := make([]decimal.Decimal, month.Days())
	dayCounts := make([]int, month.Days())
	for i := range dayTotals {
		dayTotals[i] = decimal.Zero
	}
	totalRevenue := decimal.Zero
	vehicleTotals := make(map[string]*topVehicleRow)
	routeTotals := make(map[string]decimal.Decimal)
	routeCounts := make(map[string]int64)
	routeOrder := make([]string, 0)

	for _, t := range txs {
		if t.TransactionDay >= 1 && t.TransactionDay <= month.Days() {
			dayTotals[t.TransactionDay-1] = dayTotals[t.TransactionDay-1].Add(t.FeeCharged)
			dayCounts[t.TransactionDay-1]++
		}
		totalRevenue = totalRevenue.Add(t.FeeCharged)

		row, seen := vehicleTotals[t.VehiclePlate]
		if !seen {
			row = &topVehicleRow{LicensePlate: t.VehiclePlate, DriverName: t.DriverName, Total: decimal.Zero}
			vehicleTotals[t.VehiclePlate] = row
		}
		row.Total = row.Total.Add(t.FeeCharged)
		row.Count++

		route := t.RouteName
		if route == "" {
			route = "Unassigned"
		}
		if _, seen := routeTotals[route]; !seen {
			routeOrder = append(routeOrder, route)
			routeTotals[route] = decimal.Zero
		}
		routeTotals[route] = routeTotals[route].Add(t.FeeCharged)
		routeCounts[route]++
	}

	topVehicles := make([]topVehicleRow, 0, len(vehicleTotals))
	for _, row := range vehicleTotals {
		topVehicles = append(topVehicles, *row)
	}
	sort.Slice(topVehicles, func(i, j int) bool {
		return topVehicles[i].Total.GreaterThan(topVehicles[j].Total)
	})
	if len(topVehicles) > 10 {
		topVehicles = topVehicles[:10]
	}

	routePerformance := make([]gin.H, 0, len(routeOrder))
	for _, name := range routeOrder {
		routePerformance = append(routePerformance, gin.H{
			"route_name": name,
			"total":      routeTotals[name],
			"count":      routeCounts[name],
		})
	}

	labels := make([]string, month.Days())
	chartData := make([]float64, month.Days())
	for i := 0; i < month.Days(); i++ {
		labels[i] = month.DayLabel(i + 1)
		chartData[i], _ = dayTotals[i].Float64()
	}

	next := month.Next()
	hasNext := !next.Start.After(now) && monthHasTransactions(next)

	c.JSON(http.StatusOK, gin.H{
		"selected_month":      month.Key(),
		"selected_month_name": month.DisplayName(),
		"chart_labels":        labels,
		"chart_data":          chartData,
		"daily_counts":        dayCounts,
		"total_revenue":       totalRevenue,
		"transaction_count":   len(txs),
		"top_vehicles":        topVehicles,
		"route_performance":   routePerformance,
		"prev_month":          month.Prev().Key(),
		"next_month":          next.Key(),
		"has_prev":            monthHasTransactions(month.Prev()),
		"has_next":            hasNext,
	})
}

// ExportProfitReportCSV writes the month's archived transactions as one
// CSV row per charge.
func ExportProfitReportCSV(c *gin.Context) {
	now := time.Now()
	var month monthRange
	if raw := c.Query("month"); raw != "" {
		month = parseMonth(raw, now)
	} else if latest, ok := latestTransactionMonth(); ok {
		month = latest
	} else {
		month = makeMonth(now.Year(), now.Month())
	}

	var txs []models.Transaction
	if err := config.DB.
		Where("is_revenue_counted = ?", true).
		Where("transaction_year = ? AND transaction_month = ?", month.Year, int(month.Month)).
		Order("transaction_date ASC").
		Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading transactions: " + err.Error()})
		return
	}

	filename := fmt.Sprintf("terminal_fee_report_%s.csv", month.Key())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Date", "Time", "License Plate", "Driver Name", "Route", "Fee Charged", "Balance After"})
	for _, t := range txs {
		_ = w.Write([]string{
			t.TransactionDate.Format("2006-01-02"),
			t.EntryTimestamp.Format("15:04:05"),
			t.VehiclePlate,
			t.DriverName,
			t.RouteName,
			t.FeeCharged.StringFixed(2),
			t.WalletBalanceSnapshot.StringFixed(2),
		})
	}
	w.Flush()
}
