// Package notifications delivers inbox messages and live events to users.
// Everything here is best-effort: failures are logged and swallowed so a
// ledger operation can never fail because a notification did.
package notifications

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/internal/realtime"
	"campus-market.backend/pkg/logger"
)

// Broadcaster pushes live events into user rooms
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{})
}

// Notifier persists inbox messages and mirrors them over the live channel
type Notifier struct {
	repo repositories.NotificationRepository
	hub  Broadcaster
}

// NewNotifier creates a notifier. hub may be nil when live delivery is
// disabled.
func NewNotifier(repo repositories.NotificationRepository, hub Broadcaster) *Notifier {
	return &Notifier{repo: repo, hub: hub}
}

// Notify writes an inbox message and pushes a new_notification event
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) {
	msg := &entities.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Body:     body,
		Metadata: metadata,
	}
	if err := n.repo.Create(ctx, msg); err != nil {
		logger.Warn(ctx, "failed to persist notification",
			zap.String("user_id", userID.String()),
			zap.String("type", notifType),
			zap.Error(err))
		return
	}
	if n.hub != nil {
		n.hub.BroadcastToUser(userID, realtime.EventNewNotification, msg)
	}
}

// Emit pushes a live event without an inbox entry
func (n *Notifier) Emit(userID uuid.UUID, event string, data interface{}) {
	if n.hub != nil {
		n.hub.BroadcastToUser(userID, event, data)
	}
}
