package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"github.com/untibullet/hackathon-platform/internal/repository"
	"go.uber.org/zap"
)

// GetProjectSettings возвращает настройки проекта
func (h *Handler) GetProjectSettings(c echo.Context) error {
	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "project not found")
	}

	settings, err := h.store.GetProjectSettings(c.Request().Context(), ideaID)
	if err != nil {
		return h.handleError(c, "GetProjectSettings", err, zap.Int64("idea_id", ideaID))
	}

	return respond(c, http.StatusOK, "project settings", map[string]interface{}{"settings": settings})
}

// UpdateProjectSettings создает или обновляет настройки проекта (только автор идеи)
func (h *Handler) UpdateProjectSettings(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "project not found")
	}

	h.logger.Info("UpdateProjectSettings: начало обработки запроса",
		zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))

	var req struct {
		Recruiting   *bool   `json:"recruiting"`
		ExternalLink *string `json:"external_link"`
		MaxMembers   *int    `json:"max_members"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("UpdateProjectSettings: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	settings, err := h.store.UpsertProjectSettings(c.Request().Context(), ideaID, caller.UserID, repository.SettingsParams{
		Recruiting:   req.Recruiting,
		ExternalLink: req.ExternalLink,
		MaxMembers:   req.MaxMembers,
	})
	if err != nil {
		return h.handleError(c, "UpdateProjectSettings", err,
			zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("UpdateProjectSettings: настройки сохранены", zap.Int64("idea_id", ideaID))
	return respond(c, http.StatusOK, "project settings updated", map[string]interface{}{"settings": settings})
}

// ProcessProjectApplication рассматривает заявку через проектный маршрут.
// При существующей команде одобренный заявитель добавляется в нее, а не
// получает конфликт, как при прямом рассмотрении.
func (h *Handler) ProcessProjectApplication(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "project not found")
	}
	appID, ok := parseID(c, "appId")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "application not found")
	}

	h.logger.Info("ProcessProjectApplication: начало обработки запроса",
		zap.Int64("idea_id", ideaID), zap.Int64("application_id", appID), zap.Int64("user_id", caller.UserID))

	var req struct {
		Action  string `json:"action"`
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("ProcessProjectApplication: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}
	if req.Action != "approve" && req.Action != "reject" {
		h.logger.Warn("ProcessProjectApplication: неизвестное действие", zap.String("action", req.Action))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "action must be approve or reject")
	}
	approve := req.Action == "approve"

	app, team, err := h.store.ProcessProjectApplication(c.Request().Context(), ideaID, appID, caller.UserID, approve, req.Message)
	if err != nil {
		return h.handleError(c, "ProcessProjectApplication", err,
			zap.Int64("idea_id", ideaID), zap.Int64("application_id", appID), zap.Int64("user_id", caller.UserID))
	}

	if approve && team != nil {
		h.notify(c.Request().Context(), app.ApplicantID, models.NotificationApplicationApproved,
			"Application approved",
			fmt.Sprintf("Your application was approved, you joined %q", team.Name),
			map[string]any{"idea_id": ideaID, "application_id": app.ID, "team_id": team.ID},
		)
	} else if !approve {
		h.notify(c.Request().Context(), app.ApplicantID, models.NotificationApplicationRejected,
			"Application rejected",
			"Your application was rejected",
			map[string]any{"idea_id": ideaID, "application_id": app.ID},
		)
	}

	h.logger.Info("ProcessProjectApplication: заявка рассмотрена",
		zap.Int64("application_id", app.ID), zap.String("status", app.Status))

	payload := map[string]interface{}{"status": app.Status}
	if team != nil {
		payload["team"] = team
	}
	return respond(c, http.StatusOK, "application processed", payload)
}
