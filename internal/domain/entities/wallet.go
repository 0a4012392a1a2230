package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Wallet represents a user's ledger account. Balance is the spendable
// amount; ReservedBalance tracks funds held in escrow and is informational
// only — held funds are already deducted from Balance.
type Wallet struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	Balance         decimal.Decimal `json:"balance"`
	ReservedBalance decimal.Decimal `json:"reservedBalance"`
	TransactionPin  null.String     `json:"-"`
	PinSetAt        *time.Time      `json:"pinSetAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// HasPin reports whether a transaction PIN has been configured
func (w *Wallet) HasPin() bool {
	return w.TransactionPin.Valid && w.TransactionPin.String != ""
}

// Available returns the balance a withdrawal may draw on
func (w *Wallet) Available() decimal.Decimal {
	return w.Balance.Sub(w.ReservedBalance)
}

// SetupPinInput represents input for setting a transaction PIN
type SetupPinInput struct {
	Pin        string `json:"pin" binding:"required"`
	CurrentPin string `json:"currentPin,omitempty"`
}

// UpdatePinInput represents input for rotating a transaction PIN
type UpdatePinInput struct {
	Password string `json:"password" binding:"required"`
	OldPin   string `json:"oldPin" binding:"required"`
	NewPin   string `json:"newPin" binding:"required"`
}

// VerifyPinInput represents input for checking a PIN
type VerifyPinInput struct {
	Pin string `json:"pin" binding:"required"`
}
