package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
)

// NotificationRepository persists the staff inbox.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, exec SQLExecutor, notification *models.Notification) error
	GetNotificationByID(ctx context.Context, notificationID int64) (*models.Notification, error)
	ListNotificationsForRecipient(ctx context.Context, recipientID int64, recipientType string) ([]models.Notification, error)
	UpdateNotificationStatus(ctx context.Context, exec SQLExecutor, notificationID int64, status string) error
	DeleteNotification(ctx context.Context, exec SQLExecutor, notificationID int64) error
}

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, recipient_type, recipient_id, order_id, title, message, status, sent_at`

func scanNotification(s scanner, n *models.Notification) error {
	return s.Scan(&n.ID, &n.RecipientType, &n.RecipientID, &n.OrderID, &n.Title, &n.Message, &n.Status, &n.SentAt)
}

func (r *notificationRepository) CreateNotification(ctx context.Context, exec SQLExecutor, n *models.Notification) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO notifications (recipient_type, recipient_id, order_id, title, message, status, sent_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	err := exec.QueryRowContext(ctx, query,
		n.RecipientType, n.RecipientID, n.OrderID, n.Title, n.Message, n.Status, n.SentAt,
	).Scan(&n.ID)
	return wrapDBError(err, "creating notification")
}

func (r *notificationRepository) GetNotificationByID(ctx context.Context, notificationID int64) (*models.Notification, error) {
	n := &models.Notification{}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	if err := scanNotification(r.db.QueryRowContext(ctx, query, notificationID), n); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting notification by ID %d", notificationID))
	}
	return n, nil
}

// ListNotificationsForRecipient returns the newest first. An empty recipientType matches any role.
func (r *notificationRepository) ListNotificationsForRecipient(ctx context.Context, recipientID int64, recipientType string) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
	          WHERE recipient_id = $1 AND ($2::text = '' OR recipient_type = $2)
	          ORDER BY sent_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, recipientID, recipientType)
	if err != nil {
		return nil, wrapDBError(err, "querying notifications")
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := scanNotification(rows, &n); err != nil {
			return nil, wrapDBError(err, "scanning notification")
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating notification rows")
	}
	return notifications, nil
}

func (r *notificationRepository) UpdateNotificationStatus(ctx context.Context, exec SQLExecutor, notificationID int64, status string) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `UPDATE notifications SET status = $1 WHERE id = $2`, status, notificationID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating notification ID %d", notificationID))
	}
	return expectAffected(result, fmt.Sprintf("notification update ID %d", notificationID))
}

func (r *notificationRepository) DeleteNotification(ctx context.Context, exec SQLExecutor, notificationID int64) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, notificationID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting notification ID %d", notificationID))
	}
	return expectAffected(result, fmt.Sprintf("notification delete ID %d", notificationID))
}
