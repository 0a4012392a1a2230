package repositories

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
)

// WithdrawalRepository manages payout requests
type WithdrawalRepository interface {
	Create(ctx context.Context, w *entities.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error)
	ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]entities.Withdrawal, int64, error)
	// TransitionStatus moves a withdrawal between processing states; fails
	// with ErrInvalidState when the row is not in the expected state.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.WithdrawalStatus) error
}
