package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"go.uber.org/zap"
)

// GetAdminStats возвращает сводную статистику платформы.
// Доступно только пользователям из конфигурируемого списка администраторов.
func (h *Handler) GetAdminStats(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	if !caller.IsAdmin {
		h.logger.Warn("GetAdminStats: доступ запрещен", zap.Int64("user_id", caller.UserID))
		return respondError(c, http.StatusForbidden, ErrCodeForbidden, "admin access required")
	}

	stats, err := h.store.GetAdminStats(c.Request().Context())
	if err != nil {
		return h.handleError(c, "GetAdminStats", err, zap.Int64("user_id", caller.UserID))
	}

	return respond(c, http.StatusOK, "platform statistics", map[string]interface{}{"stats": stats})
}
