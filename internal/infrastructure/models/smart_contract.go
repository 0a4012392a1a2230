package models

import (
	"time"

	"github.com/google/uuid"
)

// SmartContract stores Terms and Signatures as serialized JSON so the model
// stays portable across postgres and the sqlite test driver.
type SmartContract struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BuyerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	SellerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ListingID     uuid.UUID  `gorm:"type:uuid;not null"`
	TransactionID *uuid.UUID `gorm:"type:uuid"`
	Terms         string     `gorm:"type:text;not null"`
	BuyerSigned   bool       `gorm:"not null;default:false"`
	SellerSigned  bool       `gorm:"not null;default:false"`
	Signatures    string     `gorm:"type:text;not null;default:'[]'"`
	Status        string     `gorm:"type:varchar(16);not null;default:CREATED"`
	ReleasedAt    *time.Time
	ReleasedBy    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ContractAudit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index"`
	Action     string    `gorm:"type:varchar(32);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	Payload    string    `gorm:"type:text;not null"`
	Hash       string    `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time
}
