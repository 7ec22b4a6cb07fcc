package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
)

// SendNotificationRequest broadcasts an arbitrary event on a channel.
type SendNotificationRequest struct {
	Channel string          `json:"channel" binding:"required"`
	Event   string          `json:"event" binding:"required"`
	Data    json.RawMessage `json:"data"`
}

// NotificationService manages the staff inbox and ad-hoc broadcasts.
type NotificationService interface {
	Send(ctx context.Context, principal Principal, req SendNotificationRequest) error
	ListMine(ctx context.Context, principal Principal) ([]models.Notification, error)
	MarkRead(ctx context.Context, principal Principal, notificationID int64) (*models.Notification, error)
	Delete(ctx context.Context, principal Principal, notificationID int64) error
}

type notificationService struct {
	tx            repositories.TxManager
	notifications repositories.NotificationRepository
	outbox        repositories.OutboxRepository
	now           func() time.Time
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(tx repositories.TxManager, notifications repositories.NotificationRepository, outbox repositories.OutboxRepository) NotificationService {
	return &notificationService{tx: tx, notifications: notifications, outbox: outbox, now: time.Now}
}

// Send enqueues the event. Data defaults to an empty object.
func (s *notificationService) Send(ctx context.Context, principal Principal, req SendNotificationRequest) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	verr := &ValidationError{}
	channel, event := strings.TrimSpace(req.Channel), strings.TrimSpace(req.Event)
	if channel == "" {
		verr.Add("channel", "is required")
	}
	if event == "" {
		verr.Add("event", "is required")
	}
	data := req.Data
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	} else if !json.Valid(data) {
		verr.Add("data", "must be valid JSON")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return enqueueBroadcast(ctx, exec, s.outbox, channel, event, data)
	})
}

// ListMine returns notifications addressed to the principal in any role.
func (s *notificationService) ListMine(ctx context.Context, principal Principal) ([]models.Notification, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	list, err := s.notifications.ListNotificationsForRecipient(ctx, principal.UserID, "")
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return list, nil
}

// owned loads a notification the principal may act on. Admins may act on any.
func (s *notificationService) owned(ctx context.Context, principal Principal, notificationID int64) (*models.Notification, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	n, err := s.notifications.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return nil, notFoundOr(err, ErrNotificationNotFound, fmt.Sprintf("loading notification %d", notificationID))
	}
	if n.RecipientID != principal.UserID && !principal.IsAdmin() {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, principal Principal, notificationID int64) (*models.Notification, error) {
	n, err := s.owned(ctx, principal, notificationID)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.UpdateNotificationStatus(ctx, nil, n.ID, models.NotificationStatusRead); err != nil {
		return nil, notFoundOr(err, ErrNotificationNotFound, fmt.Sprintf("updating notification %d", n.ID))
	}
	n.Status = models.NotificationStatusRead
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, principal Principal, notificationID int64) error {
	n, err := s.owned(ctx, principal, notificationID)
	if err != nil {
		return err
	}
	if err := s.notifications.DeleteNotification(ctx, nil, n.ID); err != nil {
		return notFoundOr(err, ErrNotificationNotFound, fmt.Sprintf("deleting notification %d", n.ID))
	}
	return nil
}
