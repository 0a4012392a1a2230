package entities

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationTypeOrderPlaced     = "ORDER_PLACED"
	NotificationTypeOrderDelivered  = "ORDER_DELIVERED"
	NotificationTypePaymentReleased = "PAYMENT_RELEASED"
	NotificationTypePaymentRefunded = "PAYMENT_REFUNDED"
	NotificationTypeDisputeOpened   = "DISPUTE_OPENED"
	NotificationTypeContract        = "CONTRACT"
	NotificationTypeWithdrawal      = "WITHDRAWAL"
	NotificationTypeDeposit         = "DEPOSIT"
)

// Notification represents a message delivered to a user's inbox. Delivery is
// best-effort; ledger operations never fail because a notification could not
// be written.
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"userId"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"createdAt"`
}
