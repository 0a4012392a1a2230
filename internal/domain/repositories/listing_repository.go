package repositories

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
)

// ListingRepository gives the ledger its view of the catalog: price, stock
// and status. Listing CRUD lives in another service.
type ListingRepository interface {
	Create(ctx context.Context, listing *entities.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Listing, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entities.Listing, error)

	// DecrementStock reduces quantity by qty; fails with
	// ErrInsufficientStock when fewer than qty remain. A listing
	// depleted to zero is marked SOLD in the same statement.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	// RestoreStock returns refunded quantity to the shelf.
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) error
	IncrementSoldCount(ctx context.Context, id uuid.UUID, qty int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ListingStatus) error
}
