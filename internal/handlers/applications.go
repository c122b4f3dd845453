package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"go.uber.org/zap"
)

// SubmitApplication подает заявку текущего пользователя на идею
func (h *Handler) SubmitApplication(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "idea not found")
	}

	h.logger.Info("SubmitApplication: начало обработки запроса",
		zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))

	var req struct {
		Message    string `json:"message"`
		Motivation string `json:"motivation"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("SubmitApplication: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	app, err := h.store.CreateApplication(c.Request().Context(), ideaID, caller.UserID, req.Message, req.Motivation)
	if err != nil {
		return h.handleError(c, "SubmitApplication", err,
			zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("SubmitApplication: заявка подана",
		zap.Int64("application_id", app.ID), zap.Int64("idea_id", ideaID))
	return respond(c, http.StatusOK, "application submitted", map[string]interface{}{
		"application_id": app.ID,
		"status":         app.Status,
	})
}

// ListIdeaApplications возвращает заявки идеи автору
func (h *Handler) ListIdeaApplications(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "idea not found")
	}

	apps, err := h.store.ListIdeaApplications(c.Request().Context(), ideaID, caller.UserID)
	if err != nil {
		return h.handleError(c, "ListIdeaApplications", err,
			zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))
	}
	if apps == nil {
		apps = []models.Application{}
	}

	return respond(c, http.StatusOK, "applications", map[string]interface{}{"applications": apps})
}

// ListMyApplications возвращает заявки текущего пользователя
func (h *Handler) ListMyApplications(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	apps, err := h.store.ListUserApplications(c.Request().Context(), caller.UserID)
	if err != nil {
		return h.handleError(c, "ListMyApplications", err, zap.Int64("user_id", caller.UserID))
	}
	if apps == nil {
		apps = []models.Application{}
	}

	return respond(c, http.StatusOK, "applications", map[string]interface{}{"applications": apps})
}

// ReviewApplication рассматривает заявку (approve/reject) от имени автора идеи.
// Одобрение в той же транзакции собирает команду; уведомление заявителю
// уходит после коммита по принципу best-effort.
func (h *Handler) ReviewApplication(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "idea not found")
	}
	appID, ok := parseID(c, "appId")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "application not found")
	}

	h.logger.Info("ReviewApplication: начало обработки запроса",
		zap.Int64("idea_id", ideaID), zap.Int64("application_id", appID), zap.Int64("user_id", caller.UserID))

	var req struct {
		Action  string `json:"action"`
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("ReviewApplication: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}
	if req.Action != "approve" && req.Action != "reject" {
		h.logger.Warn("ReviewApplication: неизвестное действие", zap.String("action", req.Action))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "action must be approve or reject")
	}
	approve := req.Action == "approve"

	app, team, err := h.store.ReviewApplication(c.Request().Context(), ideaID, appID, caller.UserID, approve, req.Message)
	if err != nil {
		return h.handleError(c, "ReviewApplication", err,
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

	h.logger.Info("ReviewApplication: заявка рассмотрена",
		zap.Int64("application_id", app.ID), zap.String("status", app.Status))

	payload := map[string]interface{}{"status": app.Status}
	if team != nil {
		payload["team"] = team
	}
	return respond(c, http.StatusOK, "application reviewed", payload)
}

// CreateTeamFromApplication явно создает команду из одобренной заявки.
// Доступно автору идеи и самому заявителю.
func (h *Handler) CreateTeamFromApplication(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	appID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "application not found")
	}

	h.logger.Info("CreateTeamFromApplication: начало обработки запроса",
		zap.Int64("application_id", appID), zap.Int64("user_id", caller.UserID))

	team, err := h.store.CreateTeamFromApplication(c.Request().Context(), appID, caller.UserID)
	if err != nil {
		return h.handleError(c, "CreateTeamFromApplication", err,
			zap.Int64("application_id", appID), zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("CreateTeamFromApplication: команда создана",
		zap.Int64("team_id", team.ID), zap.String("team_name", team.Name))
	return respond(c, http.StatusCreated, "team created", map[string]interface{}{
		"team_id": team.ID,
		"name":    team.Name,
	})
}
