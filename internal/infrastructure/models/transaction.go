package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WalletID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Type         string          `gorm:"type:varchar(16);not null"`
	Status       string          `gorm:"type:varchar(16);not null"`
	EscrowStatus string          `gorm:"type:varchar(16);not null;default:NONE;index"`
	Reference    string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	ListingID    *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity     int             `gorm:"not null;default:0"`
	PlatformFee  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Description  *string         `gorm:"type:varchar(512)"`
	DeliveredAt  *time.Time
	DeliveredBy  *uuid.UUID `gorm:"type:uuid"`
	ReceivedAt   *time.Time
	ReceivedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Listing *Listing `gorm:"foreignKey:ListingID;references:ID"`
}
