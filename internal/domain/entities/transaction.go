package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TransactionType represents the kind of ledger movement
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypePurchase   TransactionType = "PURCHASE"
	TransactionTypeSale       TransactionType = "SALE"
)

// TransactionStatus represents settlement status
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// EscrowStatus represents the escrow state machine position
type EscrowStatus string

const (
	EscrowStatusNone      EscrowStatus = "NONE"
	EscrowStatusHeld      EscrowStatus = "HELD"
	EscrowStatusDelivered EscrowStatus = "DELIVERED"
	EscrowStatusReleased  EscrowStatus = "RELEASED"
	EscrowStatusDisputed  EscrowStatus = "DISPUTED"
	EscrowStatusRefunded  EscrowStatus = "REFUNDED"
)

// Transaction represents a ledger entry. Amount and Reference are immutable
// after creation; escrow transitions only move Status and EscrowStatus.
type Transaction struct {
	ID           uuid.UUID         `json:"id"`
	WalletID     uuid.UUID         `json:"walletId"`
	Amount       decimal.Decimal   `json:"amount"`
	Type         TransactionType   `json:"type"`
	Status       TransactionStatus `json:"status"`
	EscrowStatus EscrowStatus      `json:"escrowStatus"`
	Reference    string            `json:"reference"`
	ListingID    *uuid.UUID        `json:"listingId,omitempty"`
	Quantity     int               `json:"quantity"`
	PlatformFee  decimal.Decimal   `json:"platformFee"`
	Description  null.String       `json:"description,omitempty"`
	DeliveredAt  *time.Time        `json:"deliveredAt,omitempty"`
	DeliveredBy  *uuid.UUID        `json:"deliveredBy,omitempty"`
	ReceivedAt   *time.Time        `json:"receivedAt,omitempty"`
	ReceivedBy   *uuid.UUID        `json:"receivedBy,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`

	// Joins
	Listing *Listing `json:"listing,omitempty"`
}

// CheckoutItem is one listing/quantity pair in a cart
type CheckoutItem struct {
	ListingID string `json:"listingId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CheckoutInput represents input for multi-item checkout
type CheckoutInput struct {
	Items []CheckoutItem `json:"items" binding:"required,min=1,dive"`
	Pin   string         `json:"pin" binding:"required"`
}

// PurchaseInput represents input for a single-listing purchase
type PurchaseInput struct {
	ListingID string `json:"listingId" binding:"required"`
	Quantity  int    `json:"quantity,omitempty"`
	Pin       string `json:"pin" binding:"required"`
}

// DisputeInput represents input for opening an escrow dispute
type DisputeInput struct {
	Reason   string `json:"reason" binding:"required"`
	Evidence string `json:"evidence,omitempty"`
}
