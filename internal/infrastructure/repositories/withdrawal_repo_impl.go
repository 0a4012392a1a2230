package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// WithdrawalRepository implements payout request data operations
type WithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) toEntity(m *models.Withdrawal) *entities.Withdrawal {
	return &entities.Withdrawal{
		ID:            m.ID,
		WalletID:      m.WalletID,
		Amount:        m.Amount,
		Fee:           m.Fee,
		NetAmount:     m.NetAmount,
		BankCode:      m.BankCode,
		AccountNumber: m.AccountNumber,
		AccountName:   m.AccountName,
		Status:        entities.WithdrawalStatus(m.Status),
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Create inserts a payout request
func (r *WithdrawalRepository) Create(ctx context.Context, w *entities.Withdrawal) error {
	db := GetDB(ctx, r.db)
	if w.ID == uuid.Nil {
		w.ID = utils.GenerateUUIDv7()
	}
	if w.Status == "" {
		w.Status = entities.WithdrawalStatusPending
	}
	m := &models.Withdrawal{
		ID:            w.ID,
		WalletID:      w.WalletID,
		Amount:        w.Amount,
		Fee:           w.Fee,
		NetAmount:     w.NetAmount,
		BankCode:      w.BankCode,
		AccountNumber: w.AccountNumber,
		AccountName:   w.AccountName,
		Status:        string(w.Status),
		Reference:     w.Reference,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	w.CreatedAt = m.CreatedAt
	w.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a payout request by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error) {
	db := GetDB(ctx, r.db)
	var m models.Withdrawal
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListByWallet returns a page of payout requests, newest first
func (r *WithdrawalRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]entities.Withdrawal, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("wallet_id = ?", walletID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var ms []models.Withdrawal
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]entities.Withdrawal, 0, len(ms))
	for i := range ms {
		out = append(out, *r.toEntity(&ms[i]))
	}
	return out, total, nil
}

// TransitionStatus moves a payout between processing states, guarded on the
// expected current state.
func (r *WithdrawalRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.WithdrawalStatus) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]interface{}{"status": string(to), "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrInvalidState
	}
	return nil
}
