package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"go.uber.org/zap"
)

// ListNotifications возвращает уведомления текущего пользователя
func (h *Handler) ListNotifications(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	notifications, unread, err := h.store.ListNotifications(c.Request().Context(), caller.UserID)
	if err != nil {
		return h.handleError(c, "ListNotifications", err, zap.Int64("user_id", caller.UserID))
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	return respond(c, http.StatusOK, "notifications", map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkNotificationRead помечает уведомление прочитанным
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	notificationID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
	}

	if err := h.store.MarkNotificationRead(c.Request().Context(), notificationID, caller.UserID); err != nil {
		return h.handleError(c, "MarkNotificationRead", err,
			zap.Int64("notification_id", notificationID), zap.Int64("user_id", caller.UserID))
	}

	return respond(c, http.StatusOK, "notification marked as read", nil)
}

// MarkAllNotificationsRead помечает все уведомления пользователя прочитанными
func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	if err := h.store.MarkAllNotificationsRead(c.Request().Context(), caller.UserID); err != nil {
		return h.handleError(c, "MarkAllNotificationsRead", err, zap.Int64("user_id", caller.UserID))
	}

	return respond(c, http.StatusOK, "all notifications marked as read", nil)
}

// DeleteNotification удаляет уведомление пользователя
func (h *Handler) DeleteNotification(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	notificationID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
	}

	if err := h.store.DeleteNotification(c.Request().Context(), notificationID, caller.UserID); err != nil {
		return h.handleError(c, "DeleteNotification", err,
			zap.Int64("notification_id", notificationID), zap.Int64("user_id", caller.UserID))
	}

	return respond(c, http.StatusOK, "notification deleted", nil)
}
