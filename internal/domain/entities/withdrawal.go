package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents payout processing state
type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "PENDING"
	WithdrawalStatusProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalStatusCompleted  WithdrawalStatus = "COMPLETED"
	WithdrawalStatusFailed     WithdrawalStatus = "FAILED"
)

// Withdrawal represents a payout request. Funds are debited up front; a
// FAILED status refunds them.
type Withdrawal struct {
	ID            uuid.UUID        `json:"id"`
	WalletID      uuid.UUID        `json:"walletId"`
	Amount        decimal.Decimal  `json:"amount"`
	Fee           decimal.Decimal  `json:"fee"`
	NetAmount     decimal.Decimal  `json:"netAmount"`
	BankCode      string           `json:"bankCode"`
	AccountNumber string           `json:"accountNumber"`
	AccountName   string           `json:"accountName"`
	Status        WithdrawalStatus `json:"status"`
	Reference     string           `json:"reference"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// RequestWithdrawalInput represents input for requesting a payout
type RequestWithdrawalInput struct {
	Amount        string `json:"amount" binding:"required"`
	BankCode      string `json:"bankCode" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	AccountName   string `json:"accountName" binding:"required"`
	Pin           string `json:"pin" binding:"required"`
}

// UpdateWithdrawalStatusInput represents input for admin reconciliation
type UpdateWithdrawalStatusInput struct {
	Status string `json:"status" binding:"required,oneof=PROCESSING COMPLETED FAILED"`
}
