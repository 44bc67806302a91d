package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SystemSettings is a singleton row holding the tunable terminal
// parameters. Use GetSettings to read it; a default row is created on
// first access.
type SystemSettings struct {
	gorm.Model
	MinDepositAmount decimal.Decimal `json:"min_deposit_amount" gorm:"type:numeric(12,2)"`
	TerminalFee      decimal.Decimal `json:"terminal_fee" gorm:"type:numeric(12,2)"`
	QueueCapacity    int             `json:"queue_capacity" gorm:"default:50"`
}

// GetSettings returns the settings row, creating it with defaults when
// the table is empty.
func GetSettings(db *gorm.DB) (SystemSettings, error) {
	var s SystemSettings
	err := db.Order("id").FirstOrCreate(&s, SystemSettings{}).Error
	if err != nil {
		return s, err
	}
	changed := false
	if s.MinDepositAmount.IsZero() {
		s.MinDepositAmount = decimal.NewFromInt(100)
		changed = true
	}
	if s.TerminalFee.IsZero() {
		s.TerminalFee = decimal.NewFromInt(20)
		changed = true
	}
	if s.QueueCapacity == 0 {
		s.QueueCapacity = 50
		changed = true
	}
	if changed {
		if err := db.Save(&s).Error; err != nil {
			return s, err
		}
	}
	return s, nil
}
