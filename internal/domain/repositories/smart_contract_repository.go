package repositories

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
)

// SmartContractRepository manages bilateral sale agreements
type SmartContractRepository interface {
	Create(ctx context.Context, contract *entities.SmartContract) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error)
	// Save persists signature and status mutations. Callers load and save
	// inside a unit of work so concurrent signings serialize.
	Save(ctx context.Context, contract *entities.SmartContract) error
}

// ContractAuditRepository is the append-only audit trail for contract
// mutations. There is deliberately no update or delete.
type ContractAuditRepository interface {
	Append(ctx context.Context, audit *entities.ContractAudit) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]entities.ContractAudit, error)
}
