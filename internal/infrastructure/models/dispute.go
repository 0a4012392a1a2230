package models

import (
	"time"

	"github.com/google/uuid"
)

type Dispute struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	InitiatorID   uuid.UUID  `gorm:"type:uuid;not null"`
	Reason        string     `gorm:"type:varchar(512);not null"`
	Evidence      *string    `gorm:"type:text"`
	Status        string     `gorm:"type:varchar(16);not null;default:OPEN;index"`
	Resolution    *string    `gorm:"type:varchar(512)"`
	ResolvedBy    *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
