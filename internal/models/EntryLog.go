package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryLogSuccess marks a charged terminal visit. Rows with
// IsActive=true and this status are the live queue.
const EntryLogSuccess = "success"

type EntryLog struct {
	gorm.Model
	VehicleID uint    `json:"vehicle_id" gorm:"index"`
	Vehicle   Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`

	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`

	FeeCharged    decimal.Decimal `json:"fee_charged" gorm:"type:numeric(12,2)"`
	WalletBalance decimal.Decimal `json:"wallet_balance" gorm:"type:numeric(12,2)"` // balance after the fee was taken

	Status          string     `json:"status" gorm:"index"`
	IsActive        bool       `json:"is_active" gorm:"index"`
	BoardingStarted bool       `json:"boarding_started"`
	DepartureTime   *time.Time `json:"departure_time,omitempty"` // scheduled dispatch, set by staff
}
