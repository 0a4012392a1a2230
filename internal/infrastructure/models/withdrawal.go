package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Withdrawal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WalletID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Fee           decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	BankCode      string          `gorm:"type:varchar(16);not null"`
	AccountNumber string          `gorm:"type:varchar(32);not null"`
	AccountName   string          `gorm:"type:varchar(255);not null"`
	Status        string          `gorm:"type:varchar(16);not null;default:PENDING;index"`
	Reference     string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
