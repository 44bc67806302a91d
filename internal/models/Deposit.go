package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deposit statuses. Treasurer requests start pending and move to
// approved or rejected; direct staff deposits are recorded as
// successful and credit the wallet immediately. Both "approved" and
// "successful" are credited states.
const (
	DepositPending    = "pending"
	DepositApproved   = "approved"
	DepositRejected   = "rejected"
	DepositSuccessful = "successful"
)

// Payment methods accepted on deposit forms.
const (
	PaymentCash         = "cash"
	PaymentGCash        = "gcash"
	PaymentBankTransfer = "bank_transfer"
)

type Deposit struct {
	gorm.Model
	WalletID uint            `json:"wallet_id" gorm:"index"`
	Wallet   Wallet          `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
	Amount   decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`

	// ORCode is the official-receipt number supplied with treasurer
	// requests. Unique where present; direct staff deposits have none.
	ORCode *string `json:"or_code,omitempty" gorm:"uniqueIndex"`

	// ReferenceNumber identifies the deposit on receipts.
	ReferenceNumber string `json:"reference_number" gorm:"uniqueIndex"`

	Status        string `json:"status" gorm:"default:pending;index"`
	PaymentMethod string `json:"payment_method" gorm:"default:cash"`
	Notes         string `json:"notes"`

	CreatedByID uint  `json:"created_by_id"`
	CreatedBy   User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	ApprovedByID *uint `json:"approved_by_id,omitempty"`
	ApprovedBy   *User `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
}

// Credited reports whether this deposit has been applied to its wallet.
func (d Deposit) Credited() bool {
	return d.Status == DepositApproved || d.Status == DepositSuccessful
}
