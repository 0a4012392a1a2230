package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Balance         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	ReservedBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	TransactionPin  *string         `gorm:"type:varchar(255)"`
	PinSetAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
