package usecases

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/utils"
)

// NotificationUsecase serves a user's inbox
type NotificationUsecase struct {
	repo repositories.NotificationRepository
}

// NewNotificationUsecase creates a new notification usecase
func NewNotificationUsecase(repo repositories.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{repo: repo}
}

// List returns a page of the caller's notifications, newest first
func (u *NotificationUsecase) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]entities.Notification, utils.PaginationMeta, error) {
	page, limit = clampPage(page, limit)
	items, total, err := u.repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, page, limit), nil
}

// MarkRead flags one of the caller's notifications as read
func (u *NotificationUsecase) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return u.repo.MarkRead(ctx, notificationID, userID)
}
