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

// DisputeRepository implements dispute data operations
type DisputeRepository struct {
	db *gorm.DB
}

// NewDisputeRepository creates a new dispute repository
func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

func (r *DisputeRepository) toEntity(m *models.Dispute) *entities.Dispute {
	d := &entities.Dispute{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		InitiatorID:   m.InitiatorID,
		Reason:        m.Reason,
		Status:        entities.DisputeStatus(m.Status),
		ResolvedBy:    m.ResolvedBy,
		ResolvedAt:    m.ResolvedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.Evidence != nil {
		d.Evidence.SetValid(*m.Evidence)
	}
	if m.Resolution != nil {
		d.Resolution.SetValid(*m.Resolution)
	}
	return d
}

// Create inserts an OPEN dispute
func (r *DisputeRepository) Create(ctx context.Context, dispute *entities.Dispute) error {
	db := GetDB(ctx, r.db)
	if dispute.ID == uuid.Nil {
		dispute.ID = utils.GenerateUUIDv7()
	}
	if dispute.Status == "" {
		dispute.Status = entities.DisputeStatusOpen
	}
	m := &models.Dispute{
		ID:            dispute.ID,
		TransactionID: dispute.TransactionID,
		InitiatorID:   dispute.InitiatorID,
		Reason:        dispute.Reason,
		Status:        string(dispute.Status),
	}
	if dispute.Evidence.Valid {
		m.Evidence = &dispute.Evidence.String
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	dispute.CreatedAt = m.CreatedAt
	dispute.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a dispute by ID
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Dispute, error) {
	db := GetDB(ctx, r.db)
	var m models.Dispute
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetOpenByTransactionID gets the open dispute on a transaction, if any
func (r *DisputeRepository) GetOpenByTransactionID(ctx context.Context, txID uuid.UUID) (*entities.Dispute, error) {
	db := GetDB(ctx, r.db)
	var m models.Dispute
	if err := db.WithContext(ctx).
		Where("transaction_id = ? AND status = ?", txID, string(entities.DisputeStatusOpen)).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListOpen returns a page of open disputes, oldest first
func (r *DisputeRepository) ListOpen(ctx context.Context, limit, offset int) ([]entities.Dispute, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.WithContext(ctx).Model(&models.Dispute{}).
		Where("status = ?", string(entities.DisputeStatusOpen)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.WithContext(ctx).
		Where("status = ?", string(entities.DisputeStatusOpen)).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var ms []models.Dispute
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	out := make([]entities.Dispute, 0, len(ms))
	for i := range ms {
		out = append(out, *r.toEntity(&ms[i]))
	}
	return out, total, nil
}

// Resolve closes an OPEN dispute with the admin's ruling. Guarded on status
// so a dispute cannot be resolved twice.
func (r *DisputeRepository) Resolve(ctx context.Context, id uuid.UUID, resolution entities.DisputeResolution, note string, adminID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	now := time.Now()
	stored := string(resolution)
	if note != "" {
		stored = stored + ": " + note
	}
	res := db.WithContext(ctx).Model(&models.Dispute{}).
		Where("id = ? AND status = ?", id, string(entities.DisputeStatusOpen)).
		Updates(map[string]interface{}{
			"status":      string(entities.DisputeStatusResolved),
			"resolution":  stored,
			"resolved_by": adminID,
			"resolved_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrInvalidState
	}
	return nil
}
