package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"github.com/untibullet/hackathon-platform/internal/repository"
	"go.uber.org/zap"
)

// Коды ошибок для API
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"
	ErrCodeInternal         = "INTERNAL"
)

// Store описывает слой данных, который нужен обработчикам
type Store interface {
	CreateUser(ctx context.Context, email, username, passHash, bio string, skills []string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID int64, bio string, skills []string, avatarURL string) (*models.User, error)

	CreateIdea(ctx context.Context, authorID int64, title, description string, requiredSkills []string) (*models.Idea, error)
	ListIdeas(ctx context.Context, filter repository.IdeaFilter, callerID *int64) ([]models.Idea, int, error)
	GetIdea(ctx context.Context, ideaID int64, callerID *int64) (*models.Idea, error)
	UpdateIdea(ctx context.Context, ideaID, authorID int64, upd repository.IdeaUpdate) (*models.Idea, error)
	ToggleIdeaLike(ctx context.Context, ideaID, userID int64) (bool, int, error)

	CreateApplication(ctx context.Context, ideaID, applicantID int64, message, motivation string) (*models.Application, error)
	ListIdeaApplications(ctx context.Context, ideaID, callerID int64) ([]models.Application, error)
	ListUserApplications(ctx context.Context, userID int64) ([]models.Application, error)
	ReviewApplication(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error)
	ProcessProjectApplication(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error)

	CreateTeamFromApplication(ctx context.Context, appID, requesterID int64) (*models.Team, error)
	GetTeam(ctx context.Context, teamID int64) (*models.Team, error)
	UpdateTeam(ctx context.Context, teamID, requesterID int64, name, description, discordInviteURL *string) (*models.Team, error)
	DisbandTeam(ctx context.Context, teamID, requesterID int64) (*models.Team, []int64, error)

	CreateWork(ctx context.Context, creatorID int64, params repository.WorkParams) (*models.Work, error)
	ListWorks(ctx context.Context, filter repository.WorkFilter, callerID *int64) ([]models.Work, int, error)
	GetWork(ctx context.Context, workID int64, callerID *int64) (*models.Work, error)
	ToggleWorkVote(ctx context.Context, workID, userID int64) (bool, int, error)

	CreateNotification(ctx context.Context, userID int64, ntype, title, message string, payload map[string]any) error
	ListNotifications(ctx context.Context, userID int64) ([]models.Notification, int, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, notificationID, userID int64) error

	GetProjectSettings(ctx context.Context, ideaID int64) (*models.ProjectSettings, error)
	UpsertProjectSettings(ctx context.Context, ideaID, requesterID int64, params repository.SettingsParams) (*models.ProjectSettings, error)

	GetAdminStats(ctx context.Context) (*models.AdminStats, error)
}

type Handler struct {
	store  Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

// New создает новый экземпляр обработчика
func New(store Store, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// respond отправляет успешный ответ в едином конверте {success, message, ...payload}
func respond(c echo.Context, status int, message string, payload map[string]interface{}) error {
	body := map[string]interface{}{
		"success": true,
		"message": message,
	}
	for key, value := range payload {
		body[key] = value
	}
	return c.JSON(status, body)
}

// respondError отправляет ответ с ошибкой в едином конверте
func respondError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]interface{}{
		"success": false,
		"message": message,
		"error":   code,
	})
}

// mapError переводит ошибку слоя данных в HTTP-статус, код и сообщение для пользователя.
// Неизвестные ошибки становятся INTERNAL с общим сообщением, детали остаются только в логах.
func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "resource not found"
	case errors.Is(err, repository.ErrNotAuthorized):
		return http.StatusForbidden, ErrCodeForbidden, "not authorized to perform this action"
	case errors.Is(err, repository.ErrNotLeader):
		return http.StatusForbidden, ErrCodeForbidden, "only the team leader can do this"
	case errors.Is(err, repository.ErrSelfApplication):
		return http.StatusBadRequest, ErrCodeInvalidOperation, "cannot apply to own idea"
	case errors.Is(err, repository.ErrIdeaNotOpen):
		return http.StatusBadRequest, ErrCodeInvalidOperation, "idea is not accepting applications"
	case errors.Is(err, repository.ErrAlreadyReviewed):
		return http.StatusBadRequest, ErrCodeInvalidOperation, "application already reviewed"
	case errors.Is(err, repository.ErrNotApproved):
		return http.StatusBadRequest, ErrCodeInvalidOperation, "application is not approved"
	case errors.Is(err, repository.ErrInvalidTransition):
		return http.StatusBadRequest, ErrCodeInvalidOperation, "invalid status transition"
	case errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeInvalidOperation, "invalid input"
	case errors.Is(err, repository.ErrAlreadyApplied):
		return http.StatusConflict, ErrCodeConflict, "already applied to this idea"
	case errors.Is(err, repository.ErrTeamExists):
		return http.StatusConflict, ErrCodeConflict, "team already exists for this idea"
	case errors.Is(err, repository.ErrAlreadyMember):
		return http.StatusConflict, ErrCodeConflict, "user is already a team member"
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, ErrCodeConflict, "resource already exists"
	}
	return http.StatusInternalServerError, ErrCodeInternal, "internal server error"
}

// handleError логирует ошибку операции и отвечает единым конвертом.
// Нарушения инвариантов логируются как warn, внутренние сбои как error с контекстом операции.
func (h *Handler) handleError(c echo.Context, operation string, err error, fields ...zap.Field) error {
	status, code, message := mapError(err)

	fields = append(fields, zap.Error(err))
	if status == http.StatusInternalServerError {
		h.logger.Error(operation+": внутренняя ошибка", fields...)
	} else {
		h.logger.Warn(operation+": отказ по бизнес-правилу", fields...)
	}

	return respondError(c, status, code, message)
}

// notify записывает уведомление по принципу best-effort: сбой логируется
// и никогда не влияет на результат вызвавшей операции
func (h *Handler) notify(ctx context.Context, userID int64, ntype, title, message string, payload map[string]any) {
	if err := h.store.CreateNotification(ctx, userID, ntype, title, message, payload); err != nil {
		h.logger.Warn("notify: не удалось записать уведомление",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("type", ntype),
		)
	}
}

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(e *echo.Echo, mw *auth.Middleware) {
	// Auth
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.GET("/auth/me", h.GetProfile, mw.Required)
	e.PUT("/auth/me", h.UpdateProfile, mw.Required)

	// Ideas
	e.GET("/ideas", h.ListIdeas, mw.Optional)
	e.POST("/ideas", h.CreateIdea, mw.Required)
	e.GET("/ideas/:id", h.GetIdea, mw.Optional)
	e.PUT("/ideas/:id", h.UpdateIdea, mw.Required)
	e.POST("/ideas/:id/like", h.ToggleIdeaLike, mw.Required)

	// Applications
	e.POST("/ideas/:id/apply", h.SubmitApplication, mw.Required)
	e.GET("/ideas/:id/applications", h.ListIdeaApplications, mw.Required)
	e.PUT("/ideas/:id/applications/:appId", h.ReviewApplication, mw.Required)
	e.GET("/applications/my", h.ListMyApplications, mw.Required)
	e.POST("/applications/:id/create-team", h.CreateTeamFromApplication, mw.Required)

	// Teams
	e.GET("/teams/:id", h.GetTeam, mw.Optional)
	e.PUT("/teams/:id", h.UpdateTeam, mw.Required)
	e.DELETE("/teams/:id", h.DisbandTeam, mw.Required)

	// Works
	e.GET("/works", h.ListWorks, mw.Optional)
	e.POST("/works", h.CreateWork, mw.Required)
	e.GET("/works/:id", h.GetWork, mw.Optional)
	e.POST("/works/:id/vote", h.ToggleWorkVote, mw.Required)

	// Notifications
	e.GET("/notifications", h.ListNotifications, mw.Required)
	e.PUT("/notifications/read-all", h.MarkAllNotificationsRead, mw.Required)
	e.PUT("/notifications/:id/read", h.MarkNotificationRead, mw.Required)
	e.DELETE("/notifications/:id", h.DeleteNotification, mw.Required)

	// Projects
	e.GET("/projects/:id/settings", h.GetProjectSettings, mw.Optional)
	e.PUT("/projects/:id/settings", h.UpdateProjectSettings, mw.Required)
	e.PUT("/projects/:id/applications/:appId", h.ProcessProjectApplication, mw.Required)

	// Admin
	e.GET("/admin/stats", h.GetAdminStats, mw.Required)
}
