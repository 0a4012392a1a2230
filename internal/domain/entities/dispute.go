package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DisputeStatus represents dispute lifecycle state
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "OPEN"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
)

// DisputeResolution represents an admin's ruling
type DisputeResolution string

const (
	DisputeResolutionRelease DisputeResolution = "RELEASE"
	DisputeResolutionRefund  DisputeResolution = "REFUND"
)

// Dispute represents a buyer's challenge against a held transaction
type Dispute struct {
	ID            uuid.UUID     `json:"id"`
	TransactionID uuid.UUID     `json:"transactionId"`
	InitiatorID   uuid.UUID     `json:"initiatorId"`
	Reason        string        `json:"reason"`
	Evidence      null.String   `json:"evidence,omitempty"`
	Status        DisputeStatus `json:"status"`
	Resolution    null.String   `json:"resolution,omitempty"`
	ResolvedBy    *uuid.UUID    `json:"resolvedBy,omitempty"`
	ResolvedAt    *time.Time    `json:"resolvedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ResolveDisputeInput represents input for an admin dispute ruling
type ResolveDisputeInput struct {
	Resolution string `json:"resolution" binding:"required,oneof=RELEASE REFUND"`
	Note       string `json:"note,omitempty"`
}
