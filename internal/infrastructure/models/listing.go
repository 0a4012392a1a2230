package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Listing struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SellerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title     string          `gorm:"type:varchar(255);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Quantity  int             `gorm:"not null;default:0"`
	SoldCount int             `gorm:"not null;default:0"`
	Status    string          `gorm:"type:varchar(16);not null;default:ACTIVE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
