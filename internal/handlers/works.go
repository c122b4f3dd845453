package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"github.com/untibullet/hackathon-platform/internal/repository"
	"go.uber.org/zap"
)

// ListWorks возвращает страницу опубликованных работ
func (h *Handler) ListWorks(c echo.Context) error {
	page := parsePagination(c)

	filter := repository.WorkFilter{
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if raw := c.QueryParam("idea_id"); raw != "" {
		ideaID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid idea_id parameter")
		}
		filter.IdeaID = &ideaID
	}

	var callerID *int64
	if caller, ok := auth.CallerFrom(c); ok {
		callerID = &caller.UserID
	}

	works, total, err := h.store.ListWorks(c.Request().Context(), filter, callerID)
	if err != nil {
		return h.handleError(c, "ListWorks", err)
	}
	if works == nil {
		works = []models.Work{}
	}

	payload := map[string]interface{}{"works": works}
	for key, value := range paginationPayload(total, page) {
		payload[key] = value
	}
	return respond(c, http.StatusOK, "works", payload)
}

// CreateWork публикует работу
func (h *Handler) CreateWork(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)
	h.logger.Info("CreateWork: начало обработки запроса", zap.Int64("user_id", caller.UserID))

	var req struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Technologies []string `json:"technologies"`
		ImageURL     string   `json:"image_url"`
		LiveURL      string   `json:"live_url"`
		GithubURL    string   `json:"github_url"`
		IdeaID       *int64   `json:"idea_id"`
		MemberIDs    []int64  `json:"member_ids"`
	}
	if err := c.Bind(&req); err != nil {
		h.logger.Error("CreateWork: ошибка парсинга тела запроса", zap.Error(err))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "invalid request body")
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		h.logger.Warn("CreateWork: пустой заголовок работы", zap.Int64("user_id", caller.UserID))
		return respondError(c, http.StatusBadRequest, ErrCodeInvalidOperation, "title is required")
	}

	work, err := h.store.CreateWork(c.Request().Context(), caller.UserID, repository.WorkParams{
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		ImageURL:     req.ImageURL,
		LiveURL:      req.LiveURL,
		GithubURL:    req.GithubURL,
		IdeaID:       req.IdeaID,
		MemberIDs:    req.MemberIDs,
	})
	if err != nil {
		return h.handleError(c, "CreateWork", err, zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("CreateWork: работа опубликована", zap.Int64("work_id", work.ID))
	return respond(c, http.StatusCreated, "work published", map[string]interface{}{"work": work})
}

// GetWork возвращает работу с контрибьюторами
func (h *Handler) GetWork(c echo.Context) error {
	workID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "work not found")
	}

	var callerID *int64
	if caller, ok := auth.CallerFrom(c); ok {
		callerID = &caller.UserID
	}

	work, err := h.store.GetWork(c.Request().Context(), workID, callerID)
	if err != nil {
		return h.handleError(c, "GetWork", err, zap.Int64("work_id", workID))
	}

	return respond(c, http.StatusOK, "work", map[string]interface{}{"work": work})
}

// ToggleWorkVote переключает голос текущего пользователя за работу
func (h *Handler) ToggleWorkVote(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	workID, ok := parseID(c, "id")
	if !ok {
		return respondError(c, http.StatusNotFound, ErrCodeNotFound, "work not found")
	}

	voted, count, err := h.store.ToggleWorkVote(c.Request().Context(), workID, caller.UserID)
	if err != nil {
		return h.handleError(c, "ToggleWorkVote", err,
			zap.Int64("work_id", workID), zap.Int64("user_id", caller.UserID))
	}

	h.logger.Info("ToggleWorkVote: голос переключен",
		zap.Int64("work_id", workID), zap.Int64("user_id", caller.UserID), zap.Bool("voted", voted))
	return respond(c, http.StatusOK, "vote toggled", map[string]interface{}{
		"voted":      voted,
		"vote_count": count,
	})
}
