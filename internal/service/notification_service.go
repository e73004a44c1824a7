package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"moim/internal/models"
	"moim/internal/notifications"
	"moim/internal/observability"
	"moim/internal/repository"
)

// NotificationService persists notifications and pushes them toward live
// connections. The row is always written first; the push is best-effort
// and its failure never fails the triggering operation.
type NotificationService struct {
	repo       repository.NotificationRepository
	dispatcher *notifications.Dispatcher
}

// NewNotificationService creates a new NotificationService. dispatcher
// may be nil; notifications are then stored without a live push.
func NewNotificationService(
	repo repository.NotificationRepository,
	dispatcher *notifications.Dispatcher,
) *NotificationService {
	return &NotificationService{repo: repo, dispatcher: dispatcher}
}

// Notify stores n, then attempts the live push. The returned outcome is
// informational; callers already hold a committed row by the time it is
// produced.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) (notifications.DeliveryOutcome, error) {
	if err := s.repo.Create(ctx, n); err != nil {
		return "", models.NewInternalError(err)
	}

	outcome := notifications.OutcomeNoLiveChannel
	if s.dispatcher != nil {
		payload, err := json.Marshal(n)
		if err != nil {
			observability.GlobalLogger.LogAttrs(ctx, slog.LevelError, "encode notification payload",
				slog.Uint64("notification_id", uint64(n.ID)), slog.String("error", err.Error()))
			return notifications.OutcomePublishError, nil
		}
		outcome = s.dispatcher.Deliver(ctx, n.UserID, string(payload))
	}

	observability.GlobalLogger.LogAttrs(ctx, slog.LevelInfo, "notification dispatched",
		slog.Uint64("user_id", uint64(n.UserID)),
		slog.String("type", string(n.Type)),
		slog.String("outcome", string(outcome)))
	return outcome, nil
}

// List returns a page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// Recent returns the latest limit notifications oldest-first, used to
// preload a freshly opened websocket.
func (s *NotificationService) Recent(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	list, err := s.repo.Recent(ctx, userID, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkRead marks one notification read. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Notification", id)
		}
		return models.NewInternalError(err)
	}
	if n.UserID != userID {
		return models.NewUnauthorizedError("Only the recipient can mark a notification read")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
