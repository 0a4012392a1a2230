package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// TransactionRepository implements ledger entry data operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) toEntity(m *models.Transaction) *entities.Transaction {
	t := &entities.Transaction{
		ID:           m.ID,
		WalletID:     m.WalletID,
		Amount:       m.Amount,
		Type:         entities.TransactionType(m.Type),
		Status:       entities.TransactionStatus(m.Status),
		EscrowStatus: entities.EscrowStatus(m.EscrowStatus),
		Reference:    m.Reference,
		ListingID:    m.ListingID,
		Quantity:     m.Quantity,
		PlatformFee:  m.PlatformFee,
		DeliveredAt:  m.DeliveredAt,
		DeliveredBy:  m.DeliveredBy,
		ReceivedAt:   m.ReceivedAt,
		ReceivedBy:   m.ReceivedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Description != nil {
		t.Description.SetValid(*m.Description)
	}
	if m.Listing != nil {
		t.Listing = &entities.Listing{
			ID:        m.Listing.ID,
			SellerID:  m.Listing.SellerID,
			Title:     m.Listing.Title,
			Price:     m.Listing.Price,
			Quantity:  m.Listing.Quantity,
			SoldCount: m.Listing.SoldCount,
			Status:    entities.ListingStatus(m.Listing.Status),
			CreatedAt: m.Listing.CreatedAt,
			UpdatedAt: m.Listing.UpdatedAt,
		}
	}
	return t
}

func (r *TransactionRepository) toModel(t *entities.Transaction) *models.Transaction {
	m := &models.Transaction{
		ID:           t.ID,
		WalletID:     t.WalletID,
		Amount:       t.Amount,
		Type:         string(t.Type),
		Status:       string(t.Status),
		EscrowStatus: string(t.EscrowStatus),
		Reference:    t.Reference,
		ListingID:    t.ListingID,
		Quantity:     t.Quantity,
		PlatformFee:  t.PlatformFee,
		DeliveredAt:  t.DeliveredAt,
		DeliveredBy:  t.DeliveredBy,
		ReceivedAt:   t.ReceivedAt,
		ReceivedBy:   t.ReceivedBy,
	}
	if t.Description.Valid {
		m.Description = &t.Description.String
	}
	return m
}

// isUniqueViolation matches both the postgres and sqlite flavors of a unique
// constraint failure on the reference column.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Create inserts a ledger entry. A duplicate reference maps to
// ErrAlreadyExists so callers can treat replays as no-ops.
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	db := GetDB(ctx, r.db)

	m := r.toModel(tx)
	if m.ID == uuid.Nil {
		m.ID = utils.GenerateUUIDv7()
	}
	if m.EscrowStatus == "" {
		m.EscrowStatus = string(entities.EscrowStatusNone)
	}

	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	tx.ID = m.ID
	tx.CreatedAt = m.CreatedAt
	tx.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a ledger entry by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	db := GetDB(ctx, r.db)
	var m models.Transaction
	if err := db.WithContext(ctx).Preload("Listing").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByReference gets a ledger entry by its unique reference
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*entities.Transaction, error) {
	db := GetDB(ctx, r.db)
	var m models.Transaction
	if err := db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// TransitionEscrow moves the escrow state machine with a guarded update: the
// WHERE clause pins the expected current state, so a concurrent transition
// or an illegal jump affects zero rows and reports ErrInvalidState.
func (r *TransactionRepository) TransitionEscrow(ctx context.Context, id uuid.UUID, from, to entities.EscrowStatus, extra map[string]interface{}) error {
	db := GetDB(ctx, r.db)

	updates := map[string]interface{}{
		"escrow_status": string(to),
		"updated_at":    time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND escrow_status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrInvalidState
	}
	return nil
}

// UpdateStatus sets the settlement status
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": string(status), "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListByWallet returns a page of ledger entries for a wallet, newest first
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]entities.Transaction, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.WithContext(ctx).Model(&models.Transaction{}).
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

	var ms []models.Transaction
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, *r.toEntity(&ms[i]))
	}
	return out, total, nil
}

// ListPurchasesByBuyer returns PURCHASE entries on the buyer's wallet
func (r *TransactionRepository) ListPurchasesByBuyer(ctx context.Context, walletID uuid.UUID) ([]entities.Transaction, error) {
	db := GetDB(ctx, r.db)
	var ms []models.Transaction
	if err := db.WithContext(ctx).
		Preload("Listing").
		Where("wallet_id = ? AND type = ?", walletID, string(entities.TransactionTypePurchase)).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, *r.toEntity(&ms[i]))
	}
	return out, nil
}

// ListPurchasesBySeller returns PURCHASE entries against the seller's
// listings
func (r *TransactionRepository) ListPurchasesBySeller(ctx context.Context, sellerID uuid.UUID) ([]entities.Transaction, error) {
	db := GetDB(ctx, r.db)
	var ms []models.Transaction
	if err := db.WithContext(ctx).
		Preload("Listing").
		Joins("JOIN listings ON listings.id = transactions.listing_id").
		Where("listings.seller_id = ? AND transactions.type = ?", sellerID, string(entities.TransactionTypePurchase)).
		Order("transactions.created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, *r.toEntity(&ms[i]))
	}
	return out, nil
}

// SumAmountByEscrowStatus totals entry amounts in a given escrow state
func (r *TransactionRepository) SumAmountByEscrowStatus(ctx context.Context, status entities.EscrowStatus) (decimal.Decimal, error) {
	db := GetDB(ctx, r.db)
	var raw *string
	if err := db.WithContext(ctx).Model(&models.Transaction{}).
		Select("SUM(amount)").
		Where("escrow_status = ?", string(status)).
		Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

// CountByEscrowStatus counts entries in a given escrow state
func (r *TransactionRepository) CountByEscrowStatus(ctx context.Context, status entities.EscrowStatus) (int64, error) {
	db := GetDB(ctx, r.db)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Transaction{}).
		Where("escrow_status = ?", string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListHeldOlderThan returns HELD entries created before the cutoff
func (r *TransactionRepository) ListHeldOlderThan(ctx context.Context, cutoff time.Time) ([]entities.Transaction, error) {
	db := GetDB(ctx, r.db)
	var ms []models.Transaction
	if err := db.WithContext(ctx).
		Where("escrow_status = ? AND created_at < ?", string(entities.EscrowStatusHeld), cutoff).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, *r.toEntity(&ms[i]))
	}
	return out, nil
}
