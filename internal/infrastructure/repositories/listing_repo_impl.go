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

// ListingRepository implements catalog data operations for the ledger
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) toEntity(m *models.Listing) *entities.Listing {
	return &entities.Listing{
		ID:        m.ID,
		SellerID:  m.SellerID,
		Title:     m.Title,
		Price:     m.Price,
		Quantity:  m.Quantity,
		SoldCount: m.SoldCount,
		Status:    entities.ListingStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Create inserts a listing
func (r *ListingRepository) Create(ctx context.Context, listing *entities.Listing) error {
	db := GetDB(ctx, r.db)
	if listing.ID == uuid.Nil {
		listing.ID = utils.GenerateUUIDv7()
	}
	if listing.Status == "" {
		listing.Status = entities.ListingStatusActive
	}
	m := &models.Listing{
		ID:        listing.ID,
		SellerID:  listing.SellerID,
		Title:     listing.Title,
		Price:     listing.Price,
		Quantity:  listing.Quantity,
		SoldCount: listing.SoldCount,
		Status:    string(listing.Status),
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetByID gets a listing by ID
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Listing, error) {
	db := GetDB(ctx, r.db)
	var m models.Listing
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByIDs gets listings by ID set
func (r *ListingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entities.Listing, error) {
	db := GetDB(ctx, r.db)
	var ms []models.Listing
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entities.Listing, 0, len(ms))
	for i := range ms {
		out = append(out, *r.toEntity(&ms[i]))
	}
	return out, nil
}

// DecrementStock reduces quantity by qty, guarded against overselling.
// A listing that hits zero flips to SOLD in the same statement, so
// concurrent carts can never leave a depleted listing ACTIVE.
func (r *ListingRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE listings
		 SET quantity = quantity - ?,
		     status = CASE WHEN quantity - ? = 0 THEN ? ELSE status END,
		     updated_at = ?
		 WHERE id = ? AND quantity >= ?`,
		qty, qty, string(entities.ListingStatusSold), time.Now(), id, qty,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrInsufficientStock
	}
	return nil
}

// RestoreStock returns refunded quantity to the shelf
func (r *ListingRepository) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE listings SET quantity = quantity + ?, updated_at = ? WHERE id = ?`,
		qty, time.Now(), id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// IncrementSoldCount raises the sold counter
func (r *ListingRepository) IncrementSoldCount(ctx context.Context, id uuid.UUID, qty int) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Exec(
		`UPDATE listings SET sold_count = sold_count + ?, updated_at = ? WHERE id = ?`,
		qty, time.Now(), id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus sets listing availability
func (r *ListingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ListingStatus) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Model(&models.Listing{}).
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
