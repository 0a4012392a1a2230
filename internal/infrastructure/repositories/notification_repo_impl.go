package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// NotificationRepository implements inbox data operations
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts an inbox message
func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	db := GetDB(ctx, r.db)
	if n.ID == uuid.Nil {
		n.ID = utils.GenerateUUIDv7()
	}
	m := &models.Notification{
		ID:     n.ID,
		UserID: n.UserID,
		Type:   n.Type,
		Title:  n.Title,
		Body:   n.Body,
	}
	if n.Metadata != nil {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return err
		}
		s := string(raw)
		m.Metadata = &s
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	n.CreatedAt = m.CreatedAt
	return nil
}

// ListByUser returns a page of inbox messages, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Notification, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var ms []models.Notification
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]entities.Notification, 0, len(ms))
	for i := range ms {
		n := entities.Notification{
			ID:        ms[i].ID,
			UserID:    ms[i].UserID,
			Type:      ms[i].Type,
			Title:     ms[i].Title,
			Body:      ms[i].Body,
			Read:      ms[i].Read,
			CreatedAt: ms[i].CreatedAt,
		}
		if ms[i].Metadata != nil {
			if err := json.Unmarshal([]byte(*ms[i].Metadata), &n.Metadata); err != nil {
				return nil, 0, err
			}
		}
		out = append(out, n)
	}
	return out, total, nil
}

// MarkRead flags a message as read; scoped to the owner
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	res := db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
