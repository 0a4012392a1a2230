package entities

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus represents the bilateral agreement lifecycle
type ContractStatus string

const (
	ContractStatusCreated   ContractStatus = "CREATED"
	ContractStatusSigned    ContractStatus = "SIGNED"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusDisputed  ContractStatus = "DISPUTED"
)

// Contract audit actions
const (
	ContractActionCreated       = "CREATED"
	ContractActionBuyerSigned   = "BUYER_SIGNED"
	ContractActionSellerSigned  = "SELLER_SIGNED"
	ContractActionFundsReleased = "FUNDS_RELEASED"
)

// ContractSignature records one party's sign-off
type ContractSignature struct {
	UserID   uuid.UUID `json:"userId"`
	Role     string    `json:"role"` // BUYER or SELLER
	SignedAt time.Time `json:"signedAt"`
}

// SmartContract represents a bilateral sale agreement between a buyer and a
// seller over a listing. Both parties must sign before funds can be
// released.
type SmartContract struct {
	ID            uuid.UUID              `json:"id"`
	BuyerID       uuid.UUID              `json:"buyerId"`
	SellerID      uuid.UUID              `json:"sellerId"`
	ListingID     uuid.UUID              `json:"listingId"`
	TransactionID *uuid.UUID             `json:"transactionId,omitempty"`
	Terms         map[string]interface{} `json:"terms"`
	BuyerSigned   bool                   `json:"buyerSigned"`
	SellerSigned  bool                   `json:"sellerSigned"`
	Signatures    []ContractSignature    `json:"signatures"`
	Status        ContractStatus         `json:"status"`
	ReleasedAt    *time.Time             `json:"releasedAt,omitempty"`
	ReleasedBy    *uuid.UUID             `json:"releasedBy,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// FullySigned reports whether both parties have signed
func (c *SmartContract) FullySigned() bool {
	return c.BuyerSigned && c.SellerSigned
}

// PartyRole returns BUYER or SELLER for a participant, or "" for outsiders
func (c *SmartContract) PartyRole(userID uuid.UUID) string {
	switch userID {
	case c.BuyerID:
		return "BUYER"
	case c.SellerID:
		return "SELLER"
	}
	return ""
}

// ContractAudit is an append-only record of a contract mutation. Hash is the
// sha256 hex of the payload so tampering is detectable.
type ContractAudit struct {
	ID         uuid.UUID              `json:"id"`
	ContractID uuid.UUID              `json:"contractId"`
	Action     string                 `json:"action"`
	ActorID    uuid.UUID              `json:"actorId"`
	Payload    map[string]interface{} `json:"payload"`
	Hash       string                 `json:"hash"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// CreateContractInput represents input for creating an agreement.
// TransactionID optionally links the agreement to the buyer's held purchase
// of the listing, so releasing the contract settles that escrow.
type CreateContractInput struct {
	SellerID      string                 `json:"sellerId" binding:"required"`
	ListingID     string                 `json:"listingId" binding:"required"`
	TransactionID string                 `json:"transactionId" binding:"omitempty,uuid"`
	Terms         map[string]interface{} `json:"terms" binding:"required"`
}
