package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
)

// TransactionRepository manages ledger entries. Reference and Amount are
// immutable after Create; escrow moves through guarded transitions only.
type TransactionRepository interface {
	// Create inserts a new entry. A duplicate reference fails with
	// ErrAlreadyExists.
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*entities.Transaction, error)

	// TransitionEscrow moves a transaction from one escrow state to another,
	// optionally updating extra columns in the same statement. It fails with
	// ErrInvalidState when the row is not currently in the expected state.
	TransitionEscrow(ctx context.Context, id uuid.UUID, from, to entities.EscrowStatus, extra map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error

	ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]entities.Transaction, int64, error)
	// ListPurchasesByBuyer returns PURCHASE entries on the buyer's wallet.
	ListPurchasesByBuyer(ctx context.Context, walletID uuid.UUID) ([]entities.Transaction, error)
	// ListPurchasesBySeller returns PURCHASE entries against the seller's
	// listings.
	ListPurchasesBySeller(ctx context.Context, sellerID uuid.UUID) ([]entities.Transaction, error)

	// Escrow dashboard aggregates.
	SumAmountByEscrowStatus(ctx context.Context, status entities.EscrowStatus) (decimal.Decimal, error)
	CountByEscrowStatus(ctx context.Context, status entities.EscrowStatus) (int64, error)
	ListHeldOlderThan(ctx context.Context, cutoff time.Time) ([]entities.Transaction, error)
}
