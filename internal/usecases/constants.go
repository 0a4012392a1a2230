package usecases

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/pkg/crypto"
	"campus-market.backend/pkg/utils"
)

// Ledger reference prefixes. References are unique across the transactions
// table, so each money movement gets exactly one entry even under replay.
const (
	CheckoutRefPrefix   = "CH-"
	SaleRefPrefix       = "SALE-"
	WithdrawalRefPrefix = "WD-"
)

// Pagination bounds for transaction history
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func checkoutReference() string {
	return CheckoutRefPrefix + utils.GenerateUUIDv7().String()
}

func saleReference(purchaseID uuid.UUID) string {
	return SaleRefPrefix + purchaseID.String()
}

func withdrawalReference() string {
	return WithdrawalRefPrefix + utils.GenerateUUIDv7().String()
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// verifyWalletPin gates spending operations on the wallet's transaction PIN.
func verifyWalletPin(wallet *entities.Wallet, pin string) error {
	if !wallet.HasPin() {
		return domainerrors.ErrPinNotSet
	}
	if !crypto.CheckPin(pin, wallet.TransactionPin.String) {
		return domainerrors.ErrInvalidPin
	}
	return nil
}

// Notifier decouples the usecases from notification delivery. The
// notifications package provides the production implementation.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{})
	Emit(userID uuid.UUID, event string, data interface{})
}
