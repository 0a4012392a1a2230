package repositories

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
)

// NotificationRepository persists user inbox messages
type NotificationRepository interface {
	Create(ctx context.Context, n *entities.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}
