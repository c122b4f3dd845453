package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"github.com/untibullet/hackathon-platform/internal/repository"
	"go.uber.org/zap"
)

// ListIdeas возвращает страницу идей с учетом фильтров.
// Для вошедшего пользователя каждая идея дополняется флагами liked/has_applied.
func (h *Handler) ListIdeas(c echo.Context) error {
	page := parsePagination(c)

	filter := repository.IdeaFilter{
		Status: c.QueryParam("status"),
		Skill:  c.QueryParam("skill"),
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if raw := c.QueryParam("author_id"); raw != "" {
		authorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid author_id parameter")
		}
		filter.AuthorID = &authorID
	}

	var callerID *int64
	if caller, ok := auth.CallerFrom(c); ok {
		callerID = &caller.UserID
	}

	ideas, total, err := h.store.ListIdeas(c.Request().Context(), filter, callerID)
	if err != nil {
		return h.handleError(c, "ListIdeas", err)
	}
	if ideas == nil {
		ideas = []models.Idea{}
	}

	payload := map[string]interface{}{"ideas": ideas}
	for key, value := range paginationPayload(total, page) {
		payload[key] = value
	}
	return respond(c, http.StatusOK, "ideas", payload)
}

// CreateIdea создает новую идею
func (h *Handler) CreateIdea(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)
	h.logger.Info("CreateIdea: начало обработки запроса", zap.Int64("user_id", caller.UserID))

	var req struct {
		Title          string   `json:"title"`
		Description    string   `json:"description"`
		RequiredSkills []string `json:"required_skills"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("CreateIdea: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		h.logger.Warn("CreateIdea: пустой заголовок идеи", zap.Int64("user_id", caller.UserID))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "title is required")
	}

	idea, err := h.store.CreateIdea(c.Request().Context(), caller.UserID, req.Title, req.Description, req.RequiredSkills)
	if err != nil {
		return h.handleError(c, "CreateIdea", err, zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("CreateIdea: идея создана", zap.Int64("idea_id", idea.ID), zap.Int64("user_id", caller.UserID))
	return respond(c, http.StatusCreated, "idea created", map[string]interface{}{"idea": idea})
}

// GetIdea возвращает идею для детального просмотра
func (h *Handler) GetIdea(c echo.Context) error {
	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "idea not found")
	}

	var callerID *int64
	if caller, ok := auth.CallerFrom(c); ok {
		callerID = &caller.UserID
	}

	idea, err := h.store.GetIdea(c.Request().Context(), ideaID, callerID)
	if err != nil {
		return h.handleError(c, "GetIdea", err, zap.Int64("idea_id", ideaID))
	}

	return respond(c, http.StatusOK, "idea", map[string]interface{}{"idea": idea})
}

// UpdateIdea обновляет идею от имени автора
func (h *Handler) UpdateIdea(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "idea not found")
	}

	h.logger.Info("UpdateIdea: начало обработки запроса", zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))

	var req struct {
		Title          *string    `json:"title"`
		Description    *string    `json:"description"`
		RequiredSkills *[]string  `json:"required_skills"`
		Status         *string    `json:"status"`
		Progress       *int       `json:"progress_percentage"`
		StartDate      *time.Time `json:"start_date"`
		Deadline       *time.Time `json:"deadline"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("UpdateIdea: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	idea, err := h.store.UpdateIdea(c.Request().Context(), ideaID, caller.UserID, repository.IdeaUpdate{
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Status:         req.Status,
		Progress:       req.Progress,
		StartDate:      req.StartDate,
		Deadline:       req.Deadline,
	})
	if err != nil {
		return h.handleError(c, "UpdateIdea", err, zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("UpdateIdea: идея обновлена", zap.Int64("idea_id", ideaID))
	return respond(c, http.StatusOK, "idea updated", map[string]interface{}{"idea": idea})
}

// ToggleIdeaLike переключает лайк текущего пользователя на идее
func (h *Handler) ToggleIdeaLike(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	ideaID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "idea not found")
	}

	liked, count, err := h.store.ToggleIdeaLike(c.Request().Context(), ideaID, caller.UserID)
	if err != nil {
		return h.handleError(c, "ToggleIdeaLike", err, zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("ToggleIdeaLike: лайк переключен",
		zap.Int64("idea_id", ideaID), zap.Int64("user_id", caller.UserID), zap.Bool("liked", liked))
	return respond(c, http.StatusOK, "like toggled", map[string]interface{}{
		"liked":      liked,
		"like_count": count,
	})
}
