package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"go.uber.org/zap"
)

// GetTeam возвращает команду с составом
func (h *Handler) GetTeam(c echo.Context) error {
	teamID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "team not found")
	}

	team, err := h.store.GetTeam(c.Request().Context(), teamID)
	if err != nil {
		return h.handleError(c, "GetTeam", err, zap.Int64("team_id", teamID))
	}

	return respond(c, http.StatusOK, "team", map[string]interface{}{"team": team})
}

// UpdateTeam обновляет команду от имени лидера
func (h *Handler) UpdateTeam(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	teamID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "team not found")
	}

	h.logger.Info("UpdateTeam: начало обработки запроса",
		zap.Int64("team_id", teamID), zap.Int64("user_id", caller.UserID))

	var req struct {
		Name             *string `json:"name"`
		Description      *string `json:"description"`
		DiscordInviteURL *string `json:"discord_invite_url"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("UpdateTeam: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	team, err := h.store.UpdateTeam(c.Request().Context(), teamID, caller.UserID, req.Name, req.Description, req.DiscordInviteURL)
	if err != nil {
		return h.handleError(c, "UpdateTeam", err,
			zap.Int64("team_id", teamID), zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("UpdateTeam: команда обновлена", zap.Int64("team_id", teamID))
	return respond(c, http.StatusOK, "team updated", map[string]interface{}{"team": team})
}

// DisbandTeam распускает команду от имени лидера.
// Идея безусловно возвращается в open; участники получают уведомления
// после коммита по принципу best-effort.
func (h *Handler) DisbandTeam(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	teamID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "team not found")
	}

	h.logger.Info("DisbandTeam: начало обработки запроса",
		zap.Int64("team_id", teamID), zap.Int64("user_id", caller.UserID))

	team, memberIDs, err := h.store.DisbandTeam(c.Request().Context(), teamID, caller.UserID)
	if err != nil {
		return h.handleError(c, "DisbandTeam", err,
			zap.Int64("team_id", teamID), zap.Int64("user_id", caller.UserID))
	}

	for _, memberID := range memberIDs {
		if memberID == caller.UserID {
			continue
		}
		h.notify(c.Request().Context(), memberID, models.NotificationTeamDisbanded,
			"Team disbanded",
			fmt.Sprintf("Team %q has been disbanded", team.Name),
			map[string]any{"team_id": team.ID, "idea_id": team.IdeaID},
		)
	}

	h.logger.Info("DisbandTeam: команда распущена",
		zap.Int64("team_id", team.ID), zap.Int("members_count", len(memberIDs)))
	return respond(c, http.StatusOK, "team disbanded", map[string]interface{}{
		"team_id": team.ID,
		"status":  team.Status,
	})
}
