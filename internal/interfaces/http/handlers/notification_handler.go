package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/internal/usecases"
	"campus-market.backend/pkg/utils"
)

type notificationService interface {
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]entities.Notification, utils.PaginationMeta, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// NotificationHandler handles the inbox endpoints
type NotificationHandler struct {
	notifications notificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationUsecase *usecases.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{notifications: notificationUsecase}
}

// List lists the caller's notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	items, meta, err := h.notifications.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"notifications": items,
		"meta":          meta,
	})
}

// MarkRead marks one notification as read
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "notification read"})
}
