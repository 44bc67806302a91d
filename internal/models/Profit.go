package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Profit is one aggregated revenue record; a row is written for every
// terminal fee charged. The admin dashboard sums these.
type Profit struct {
	gorm.Model
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Source       string          `json:"source"` // "terminal_fee"
	DateRecorded time.Time       `json:"date_recorded" gorm:"index"`
}
