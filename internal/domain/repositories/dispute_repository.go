package repositories

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
)

// DisputeRepository manages escrow disputes
type DisputeRepository interface {
	Create(ctx context.Context, dispute *entities.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Dispute, error)
	GetOpenByTransactionID(ctx context.Context, txID uuid.UUID) (*entities.Dispute, error)
	ListOpen(ctx context.Context, limit, offset int) ([]entities.Dispute, int64, error)
	// Resolve closes an OPEN dispute; fails with ErrInvalidState if it is
	// already resolved.
	Resolve(ctx context.Context, id uuid.UUID, resolution entities.DisputeResolution, note string, adminID uuid.UUID) error
}
