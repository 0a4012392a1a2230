package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// WalletRepository implements wallet data operations. Balance mutations are
// single guarded UPDATE statements: the WHERE clause re-checks the
// precondition, so two concurrent debits can never both succeed against the
// same funds regardless of isolation level.
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) toEntity(m *models.Wallet) *entities.Wallet {
	w := &entities.Wallet{
		ID:              m.ID,
		UserID:          m.UserID,
		Balance:         m.Balance,
		ReservedBalance: m.ReservedBalance,
		PinSetAt:        m.PinSetAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.TransactionPin != nil {
		w.TransactionPin.SetValid(*m.TransactionPin)
	}
	return w
}

// GetOrCreateByUserID returns the user's wallet, provisioning an empty one
// on first touch. The insert tolerates a concurrent winner.
func (r *WalletRepository) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	db := GetDB(ctx, r.db)

	var m models.Wallet
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if err == nil {
		return r.toEntity(&m), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	m = models.Wallet{
		ID:              utils.GenerateUUIDv7(),
		UserID:          userID,
		Balance:         decimal.Zero,
		ReservedBalance: decimal.Zero,
	}
	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		// Another request may have provisioned it between the read and
		// the insert.
		var existing models.Wallet
		if ferr := db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; ferr == nil {
			return r.toEntity(&existing), nil
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByUserID gets a wallet by owner
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	db := GetDB(ctx, r.db)
	var m models.Wallet
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByID gets a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	db := GetDB(ctx, r.db)
	var m models.Wallet
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Credit adds to the spendable balance
func (r *WalletRepository) Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE wallets SET balance = balance + ?, updated_at = ? WHERE id = ?`,
		amount, time.Now(), walletID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Debit subtracts from the spendable balance, failing when it would go
// negative.
func (r *WalletRepository) Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE wallets SET balance = balance - ?, updated_at = ? WHERE id = ? AND balance >= ?`,
		amount, time.Now(), walletID, amount,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrInsufficientFunds
	}
	return nil
}

// DebitAvailable subtracts from the balance with reserved funds excluded
// from the spendable check.
func (r *WalletRepository) DebitAvailable(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE wallets SET balance = balance - ?, updated_at = ? WHERE id = ? AND balance - reserved_balance >= ?`,
		amount, time.Now(), walletID, amount,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrInsufficientFunds
	}
	return nil
}

// Reserve raises the escrow marker
func (r *WalletRepository) Reserve(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE wallets SET reserved_balance = reserved_balance + ?, updated_at = ? WHERE id = ?`,
		amount, time.Now(), walletID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ReleaseReserved lowers the escrow marker, never below zero
func (r *WalletRepository) ReleaseReserved(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE wallets SET reserved_balance = reserved_balance - ?, updated_at = ? WHERE id = ? AND reserved_balance >= ?`,
		amount, time.Now(), walletID, amount,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrInvalidState
	}
	return nil
}

// SetPin stores a new PIN hash and stamps pin_set_at
func (r *WalletRepository) SetPin(ctx context.Context, walletID uuid.UUID, pinHash string) error {
	db := GetDB(ctx, r.db)
	now := time.Now()
	res := db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"transaction_pin": pinHash,
			"pin_set_at":      now,
			"updated_at":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
