package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is the denormalized archive row written alongside each
// entry log. Vehicle, driver and route names are copied at charge time
// so reports survive fleet edits, and the date parts are split out and
// indexed for month-based grouping.
type Transaction struct {
	gorm.Model
	EntryLogID uint `json:"entry_log_id" gorm:"index"`

	VehiclePlate string `json:"vehicle_plate" gorm:"index"`
	DriverName   string `json:"driver_name"`
	RouteName    string `json:"route_name" gorm:"index"`

	FeeCharged            decimal.Decimal `json:"fee_charged" gorm:"type:numeric(12,2)"`
	WalletBalanceSnapshot decimal.Decimal `json:"wallet_balance_snapshot" gorm:"type:numeric(12,2)"`

	TransactionDate time.Time  `json:"transaction_date" gorm:"index"`
	EntryTimestamp  time.Time  `json:"entry_timestamp"`
	ExitTimestamp   *time.Time `json:"exit_timestamp,omitempty"`

	TransactionYear  int `json:"transaction_year" gorm:"index"`
	TransactionMonth int `json:"transaction_month" gorm:"index"`
	TransactionDay   int `json:"transaction_day" gorm:"index"`

	IsRevenueCounted bool `json:"is_revenue_counted" gorm:"default:true;index"`
}
