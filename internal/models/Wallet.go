package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a vehicle's running prepaid balance. It is credited only
// by deposits entering a credited status and debited only by terminal
// fees at QR entry.
type Wallet struct {
	gorm.Model
	VehicleID uint            `json:"vehicle_id" gorm:"uniqueIndex"`
	Vehicle   Vehicle         `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric(12,2)"`

	Deposits []Deposit `gorm:"foreignKey:WalletID" json:"deposits,omitempty"`
}
