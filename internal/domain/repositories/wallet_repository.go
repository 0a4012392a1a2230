package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"campus-market.backend/internal/domain/entities"
)

// WalletRepository manages ledger accounts. All balance mutations are guarded
// single-statement updates: the WHERE clause re-checks the precondition and a
// zero row count reports the failure, so concurrent writers can never push a
// balance negative or lose an update.
type WalletRepository interface {
	// GetOrCreateByUserID provisions the wallet lazily on first touch.
	GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)

	// Credit adds to the spendable balance unconditionally.
	Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error
	// Debit subtracts from the spendable balance; fails with
	// ErrInsufficientFunds when the balance would go negative.
	Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error
	// DebitAvailable is Debit with the reserved portion excluded from the
	// spendable check. Withdrawals use this.
	DebitAvailable(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error

	// Reserve moves the escrow marker up; ReleaseReserved moves it down.
	// Reserved funds were already deducted from Balance at hold time.
	Reserve(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error
	ReleaseReserved(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error

	SetPin(ctx context.Context, walletID uuid.UUID, pinHash string) error
}
