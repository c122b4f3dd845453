package repository

import (
	"context"
	"fmt"

	"github.com/untibullet/hackathon-platform/internal/models"
)

// CreateNotification записывает уведомление пользователю.
// Вызывается после коммита основной операции: сбой здесь логируется
// вызывающей стороной и никогда не роняет исходный запрос.
func (r *Repository) CreateNotification(ctx context.Context, userID int64, ntype, title, message string, payload map[string]any) error {
	query := `
        INSERT INTO notifications (user_id, type, title, message, payload)
        VALUES ($1, $2, $3, $4, $5)
    `
	if _, err := r.pool.Exec(ctx, query, userID, ntype, title, message, payload); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications получает уведомления пользователя (новые первыми) и число непрочитанных
func (r *Repository) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, int, error) {
	query := `
        SELECT id, user_id, type, title, message, payload, is_read, created_at
        FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	unread := 0
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Payload, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		if !n.IsRead {
			unread++
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, unread, nil
}

// MarkNotificationRead помечает уведомление прочитанным (только свое)
func (r *Repository) MarkNotificationRead(ctx context.Context, notificationID, userID int64) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными
func (r *Repository) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// DeleteNotification удаляет уведомление (только свое)
func (r *Repository) DeleteNotification(ctx context.Context, notificationID, userID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
