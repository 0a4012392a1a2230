package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingStatus represents listing availability
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "ACTIVE"
	ListingStatusReserved ListingStatus = "RESERVED"
	ListingStatusSold     ListingStatus = "SOLD"
	ListingStatusInactive ListingStatus = "INACTIVE"
)

// Listing represents an item offered for sale. Listing management lives
// elsewhere; the ledger only reads price, stock and status, and flips status
// as stock moves.
type Listing struct {
	ID        uuid.UUID       `json:"id"`
	SellerID  uuid.UUID       `json:"sellerId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	SoldCount int             `json:"soldCount"`
	Status    ListingStatus   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Purchasable reports whether the listing can be bought right now
func (l *Listing) Purchasable() bool {
	return l.Status == ListingStatusActive && l.Quantity > 0
}
