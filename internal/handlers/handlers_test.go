package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untibullet/hackathon-platform/internal/auth"
	"github.com/untibullet/hackathon-platform/internal/models"
	"github.com/untibullet/hackathon-platform/internal/repository"
	"go.uber.org/zap"
)

type sentNotification struct {
	UserID int64
	Type   string
}

// stubStore реализует Store через настраиваемые функции.
// Неинициализированные методы возвращают ErrNotFound.
type stubStore struct {
	CreateUserFn                func(ctx context.Context, email, username, passHash, bio string, skills []string) (*models.User, error)
	GetUserByEmailFn            func(ctx context.Context, email string) (*models.User, error)
	GetUserFn                   func(ctx context.Context, userID int64) (*models.User, error)
	UpdateUserProfileFn         func(ctx context.Context, userID int64, bio string, skills []string, avatarURL string) (*models.User, error)
	CreateIdeaFn                func(ctx context.Context, authorID int64, title, description string, requiredSkills []string) (*models.Idea, error)
	ListIdeasFn                 func(ctx context.Context, filter repository.IdeaFilter, callerID *int64) ([]models.Idea, int, error)
	GetIdeaFn                   func(ctx context.Context, ideaID int64, callerID *int64) (*models.Idea, error)
	UpdateIdeaFn                func(ctx context.Context, ideaID, authorID int64, upd repository.IdeaUpdate) (*models.Idea, error)
	ToggleIdeaLikeFn            func(ctx context.Context, ideaID, userID int64) (bool, int, error)
	CreateApplicationFn         func(ctx context.Context, ideaID, applicantID int64, message, motivation string) (*models.Application, error)
	ListIdeaApplicationsFn      func(ctx context.Context, ideaID, callerID int64) ([]models.Application, error)
	ListUserApplicationsFn      func(ctx context.Context, userID int64) ([]models.Application, error)
	ReviewApplicationFn         func(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error)
	ProcessProjectApplicationFn func(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error)
	CreateTeamFromApplicationFn func(ctx context.Context, appID, requesterID int64) (*models.Team, error)
	GetTeamFn                   func(ctx context.Context, teamID int64) (*models.Team, error)
	UpdateTeamFn                func(ctx context.Context, teamID, requesterID int64, name, description, discordInviteURL *string) (*models.Team, error)
	DisbandTeamFn               func(ctx context.Context, teamID, requesterID int64) (*models.Team, []int64, error)
	CreateWorkFn                func(ctx context.Context, creatorID int64, params repository.WorkParams) (*models.Work, error)
	ListWorksFn                 func(ctx context.Context, filter repository.WorkFilter, callerID *int64) ([]models.Work, int, error)
	GetWorkFn                   func(ctx context.Context, workID int64, callerID *int64) (*models.Work, error)
	ToggleWorkVoteFn            func(ctx context.Context, workID, userID int64) (bool, int, error)
	ListNotificationsFn         func(ctx context.Context, userID int64) ([]models.Notification, int, error)
	MarkNotificationReadFn      func(ctx context.Context, notificationID, userID int64) error
	MarkAllNotificationsReadFn  func(ctx context.Context, userID int64) error
	DeleteNotificationFn        func(ctx context.Context, notificationID, userID int64) error
	GetProjectSettingsFn        func(ctx context.Context, ideaID int64) (*models.ProjectSettings, error)
	UpsertProjectSettingsFn     func(ctx context.Context, ideaID, requesterID int64, params repository.SettingsParams) (*models.ProjectSettings, error)
	GetAdminStatsFn             func(ctx context.Context) (*models.AdminStats, error)

	notifications []sentNotification
}

func (s *stubStore) CreateUser(ctx context.Context, email, username, passHash, bio string, skills []string) (*models.User, error) {
	if s.CreateUserFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.CreateUserFn(ctx, email, username, passHash, bio, skills)
}

func (s *stubStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.GetUserByEmailFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.GetUserByEmailFn(ctx, email)
}

func (s *stubStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if s.GetUserFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.GetUserFn(ctx, userID)
}

func (s *stubStore) UpdateUserProfile(ctx context.Context, userID int64, bio string, skills []string, avatarURL string) (*models.User, error) {
	if s.UpdateUserProfileFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.UpdateUserProfileFn(ctx, userID, bio, skills, avatarURL)
}

func (s *stubStore) CreateIdea(ctx context.Context, authorID int64, title, description string, requiredSkills []string) (*models.Idea, error) {
	if s.CreateIdeaFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.CreateIdeaFn(ctx, authorID, title, description, requiredSkills)
}

func (s *stubStore) ListIdeas(ctx context.Context, filter repository.IdeaFilter, callerID *int64) ([]models.Idea, int, error) {
	if s.ListIdeasFn == nil {
		return nil, 0, nil
	}
	return s.ListIdeasFn(ctx, filter, callerID)
}

func (s *stubStore) GetIdea(ctx context.Context, ideaID int64, callerID *int64) (*models.Idea, error) {
	if s.GetIdeaFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.GetIdeaFn(ctx, ideaID, callerID)
}

func (s *stubStore) UpdateIdea(ctx context.Context, ideaID, authorID int64, upd repository.IdeaUpdate) (*models.Idea, error) {
	if s.UpdateIdeaFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.UpdateIdeaFn(ctx, ideaID, authorID, upd)
}

func (s *stubStore) ToggleIdeaLike(ctx context.Context, ideaID, userID int64) (bool, int, error) {
	if s.ToggleIdeaLikeFn == nil {
		return false, 0, repository.ErrNotFound
	}
	return s.ToggleIdeaLikeFn(ctx, ideaID, userID)
}

func (s *stubStore) CreateApplication(ctx context.Context, ideaID, applicantID int64, message, motivation string) (*models.Application, error) {
	if s.CreateApplicationFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.CreateApplicationFn(ctx, ideaID, applicantID, message, motivation)
}

func (s *stubStore) ListIdeaApplications(ctx context.Context, ideaID, callerID int64) ([]models.Application, error) {
	if s.ListIdeaApplicationsFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.ListIdeaApplicationsFn(ctx, ideaID, callerID)
}

func (s *stubStore) ListUserApplications(ctx context.Context, userID int64) ([]models.Application, error) {
	if s.ListUserApplicationsFn == nil {
		return nil, nil
	}
	return s.ListUserApplicationsFn(ctx, userID)
}

func (s *stubStore) ReviewApplication(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error) {
	if s.ReviewApplicationFn == nil {
		return nil, nil, repository.ErrNotFound
	}
	return s.ReviewApplicationFn(ctx, ideaID, appID, reviewerID, approve, reviewMessage)
}

func (s *stubStore) ProcessProjectApplication(ctx context.Context, ideaID, appID, reviewerID int64, approve bool, reviewMessage string) (*models.Application, *models.Team, error) {
	if s.ProcessProjectApplicationFn == nil {
		return nil, nil, repository.ErrNotFound
	}
	return s.ProcessProjectApplicationFn(ctx, ideaID, appID, reviewerID, approve, reviewMessage)
}

func (s *stubStore) CreateTeamFromApplication(ctx context.Context, appID, requesterID int64) (*models.Team, error) {
	if s.CreateTeamFromApplicationFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.CreateTeamFromApplicationFn(ctx, appID, requesterID)
}

func (s *stubStore) GetTeam(ctx context.Context, teamID int64) (*models.Team, error) {
	if s.GetTeamFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.GetTeamFn(ctx, teamID)
}

func (s *stubStore) UpdateTeam(ctx context.Context, teamID, requesterID int64, name, description, discordInviteURL *string) (*models.Team, error) {
	if s.UpdateTeamFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.UpdateTeamFn(ctx, teamID, requesterID, name, description, discordInviteURL)
}

func (s *stubStore) DisbandTeam(ctx context.Context, teamID, requesterID int64) (*models.Team, []int64, error) {
	if s.DisbandTeamFn == nil {
		return nil, nil, repository.ErrNotFound
	}
	return s.DisbandTeamFn(ctx, teamID, requesterID)
}

func (s *stubStore) CreateWork(ctx context.Context, creatorID int64, params repository.WorkParams) (*models.Work, error) {
	if s.CreateWorkFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.CreateWorkFn(ctx, creatorID, params)
}

func (s *stubStore) ListWorks(ctx context.Context, filter repository.WorkFilter, callerID *int64) ([]models.Work, int, error) {
	if s.ListWorksFn == nil {
		return nil, 0, nil
	}
	return s.ListWorksFn(ctx, filter, callerID)
}

func (s *stubStore) GetWork(ctx context.Context, workID int64, callerID *int64) (*models.Work, error) {
	if s.GetWorkFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.GetWorkFn(ctx, workID, callerID)
}

func (s *stubStore) ToggleWorkVote(ctx context.Context, workID, userID int64) (bool, int, error) {
	if s.ToggleWorkVoteFn == nil {
		return false, 0, repository.ErrNotFound
	}
	return s.ToggleWorkVoteFn(ctx, workID, userID)
}

func (s *stubStore) CreateNotification(_ context.Context, userID int64, ntype, _, _ string, _ map[string]any) error {
	s.notifications = append(s.notifications, sentNotification{UserID: userID, Type: ntype})
	return nil
}

func (s *stubStore) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, int, error) {
	if s.ListNotificationsFn == nil {
		return nil, 0, nil
	}
	return s.ListNotificationsFn(ctx, userID)
}

func (s *stubStore) MarkNotificationRead(ctx context.Context, notificationID, userID int64) error {
	if s.MarkNotificationReadFn == nil {
		return repository.ErrNotFound
	}
	return s.MarkNotificationReadFn(ctx, notificationID, userID)
}

func (s *stubStore) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	if s.MarkAllNotificationsReadFn == nil {
		return nil
	}
	return s.MarkAllNotificationsReadFn(ctx, userID)
}

func (s *stubStore) DeleteNotification(ctx context.Context, notificationID, userID int64) error {
	if s.DeleteNotificationFn == nil {
		return repository.ErrNotFound
	}
	return s.DeleteNotificationFn(ctx, notificationID, userID)
}

func (s *stubStore) GetProjectSettings(ctx context.Context, ideaID int64) (*models.ProjectSettings, error) {
	if s.GetProjectSettingsFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.GetProjectSettingsFn(ctx, ideaID)
}

func (s *stubStore) UpsertProjectSettings(ctx context.Context, ideaID, requesterID int64, params repository.SettingsParams) (*models.ProjectSettings, error) {
	if s.UpsertProjectSettingsFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.UpsertProjectSettingsFn(ctx, ideaID, requesterID, params)
}

func (s *stubStore) GetAdminStats(ctx context.Context) (*models.AdminStats, error) {
	if s.GetAdminStatsFn == nil {
		return nil, repository.ErrNotFound
	}
	return s.GetAdminStatsFn(ctx)
}

var testTokens = auth.NewTokenManager("test-secret", 1)

func newTestServer(t *testing.T, store Store) *echo.Echo {
	t.Helper()
	e := echo.New()
	mw := auth.NewMiddleware(testTokens, []int64{99})
	h := New(store, testTokens, zap.NewNop())
	h.RegisterRoutes(e, mw)
	return e
}

func tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := testTokens.CreateToken(userID, "user")
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func TestSubmitApplicationRequiresAuth(t *testing.T) {
	e := newTestServer(t, &stubStore{})

	rec, envelope := doRequest(t, e, http.MethodPost, "/ideas/1/apply", "", map[string]string{"message": "hi"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "UNAUTHENTICATED", envelope["error"])
}

func TestSubmitApplicationSuccess(t *testing.T) {
	store := &stubStore{
		CreateApplicationFn: func(_ context.Context, ideaID, applicantID int64, message, motivation string) (*models.Application, error) {
			assert.Equal(t, int64(7), ideaID)
			assert.Equal(t, int64(2), applicantID)
			assert.Equal(t, "hi", message)
			return &models.Application{ID: 11, IdeaID: ideaID, ApplicantID: applicantID, Status: models.ApplicationStatusPending}, nil
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPost, "/ideas/7/apply", tokenFor(t, 2),
		map[string]string{"message": "hi", "motivation": "let me in"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, float64(11), envelope["application_id"])
	assert.Equal(t, "pending", envelope["status"])
}

func TestSubmitApplicationErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"idea not found", repository.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"own idea", repository.ErrSelfApplication, http.StatusBadRequest, "INVALID_OPERATION"},
		{"idea closed", repository.ErrIdeaNotOpen, http.StatusBadRequest, "INVALID_OPERATION"},
		{"duplicate", repository.ErrAlreadyApplied, http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{
				CreateApplicationFn: func(context.Context, int64, int64, string, string) (*models.Application, error) {
					return nil, tt.err
				},
			}
			e := newTestServer(t, store)

			rec, envelope := doRequest(t, e, http.MethodPost, "/ideas/7/apply", tokenFor(t, 2), map[string]string{})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, false, envelope["success"])
			assert.Equal(t, tt.wantCode, envelope["error"])
			assert.NotEmpty(t, envelope["message"])
		})
	}
}

func TestReviewApplicationApproveCreatesTeamAndNotifies(t *testing.T) {
	store := &stubStore{}
	store.ReviewApplicationFn = func(_ context.Context, ideaID, appID, reviewerID int64, approve bool, _ string) (*models.Application, *models.Team, error) {
		assert.Equal(t, int64(7), ideaID)
		assert.Equal(t, int64(11), appID)
		assert.Equal(t, int64(1), reviewerID)
		assert.True(t, approve)
		app := &models.Application{ID: appID, IdeaID: ideaID, ApplicantID: 2, Status: models.ApplicationStatusApproved}
		team := &models.Team{ID: 5, IdeaID: ideaID, Name: "AI Chess team", Status: models.TeamStatusActive}
		return app, team, nil
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPut, "/ideas/7/applications/11", tokenFor(t, 1),
		map[string]string{"action": "approve"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "approved", envelope["status"])
	require.Contains(t, envelope, "team")

	require.Len(t, store.notifications, 1)
	assert.Equal(t, int64(2), store.notifications[0].UserID)
	assert.Equal(t, models.NotificationApplicationApproved, store.notifications[0].Type)
}

func TestReviewApplicationRejectNotifies(t *testing.T) {
	store := &stubStore{}
	store.ReviewApplicationFn = func(_ context.Context, ideaID, appID, _ int64, approve bool, message string) (*models.Application, *models.Team, error) {
		assert.False(t, approve)
		assert.Equal(t, "not a fit", message)
		return &models.Application{ID: appID, IdeaID: ideaID, ApplicantID: 2, Status: models.ApplicationStatusRejected}, nil, nil
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPut, "/ideas/7/applications/11", tokenFor(t, 1),
		map[string]string{"action": "reject", "message": "not a fit"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", envelope["status"])
	assert.NotContains(t, envelope, "team")

	require.Len(t, store.notifications, 1)
	assert.Equal(t, models.NotificationApplicationRejected, store.notifications[0].Type)
}

func TestReviewApplicationInvalidAction(t *testing.T) {
	e := newTestServer(t, &stubStore{})

	rec, envelope := doRequest(t, e, http.MethodPut, "/ideas/7/applications/11", tokenFor(t, 1),
		map[string]string{"action": "maybe"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OPERATION", envelope["error"])
}

func TestReviewApplicationAlreadyReviewed(t *testing.T) {
	store := &stubStore{
		ReviewApplicationFn: func(context.Context, int64, int64, int64, bool, string) (*models.Application, *models.Team, error) {
			return nil, nil, repository.ErrAlreadyReviewed
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPut, "/ideas/7/applications/11", tokenFor(t, 1),
		map[string]string{"action": "approve"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OPERATION", envelope["error"])
	assert.Empty(t, store.notifications)
}

func TestReviewApplicationForbiddenForNonAuthor(t *testing.T) {
	store := &stubStore{
		ReviewApplicationFn: func(context.Context, int64, int64, int64, bool, string) (*models.Application, *models.Team, error) {
			return nil, nil, repository.ErrNotAuthorized
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPut, "/ideas/7/applications/11", tokenFor(t, 3),
		map[string]string{"action": "approve"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", envelope["error"])
}

func TestCreateTeamFromApplicationConflict(t *testing.T) {
	store := &stubStore{
		CreateTeamFromApplicationFn: func(context.Context, int64, int64) (*models.Team, error) {
			return nil, repository.ErrTeamExists
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPost, "/applications/11/create-team", tokenFor(t, 2), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", envelope["error"])
	assert.Equal(t, "team already exists for this idea", envelope["message"])
}

func TestCreateTeamFromApplicationSuccess(t *testing.T) {
	store := &stubStore{
		CreateTeamFromApplicationFn: func(_ context.Context, appID, requesterID int64) (*models.Team, error) {
			assert.Equal(t, int64(11), appID)
			assert.Equal(t, int64(2), requesterID)
			return &models.Team{ID: 5, Name: "AI Chess team"}, nil
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPost, "/applications/11/create-team", tokenFor(t, 2), nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(5), envelope["team_id"])
	assert.Equal(t, "AI Chess team", envelope["name"])
}

func TestDisbandTeamForbiddenForMember(t *testing.T) {
	store := &stubStore{
		DisbandTeamFn: func(context.Context, int64, int64) (*models.Team, []int64, error) {
			return nil, nil, repository.ErrNotLeader
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodDelete, "/teams/5", tokenFor(t, 2), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", envelope["error"])
}

func TestDisbandTeamNotifiesMembers(t *testing.T) {
	store := &stubStore{}
	store.DisbandTeamFn = func(_ context.Context, teamID, requesterID int64) (*models.Team, []int64, error) {
		assert.Equal(t, int64(5), teamID)
		assert.Equal(t, int64(1), requesterID)
		team := &models.Team{ID: 5, IdeaID: 7, Name: "AI Chess team", Status: models.TeamStatusDisbanded}
		return team, []int64{1, 2, 3}, nil
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodDelete, "/teams/5", tokenFor(t, 1), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "disbanded", envelope["status"])

	// Лидер не уведомляет сам себя
	require.Len(t, store.notifications, 2)
	assert.Equal(t, int64(2), store.notifications[0].UserID)
	assert.Equal(t, int64(3), store.notifications[1].UserID)
	for _, n := range store.notifications {
		assert.Equal(t, models.NotificationTeamDisbanded, n.Type)
	}
}

func TestToggleIdeaLikeSymmetry(t *testing.T) {
	liked := false
	count := 0
	store := &stubStore{
		ToggleIdeaLikeFn: func(context.Context, int64, int64) (bool, int, error) {
			liked = !liked
			if liked {
				count++
			} else {
				count--
			}
			return liked, count, nil
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodPost, "/ideas/7/like", tokenFor(t, 3), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["liked"])
	assert.Equal(t, float64(1), envelope["like_count"])

	rec, envelope = doRequest(t, e, http.MethodPost, "/ideas/7/like", tokenFor(t, 3), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, envelope["liked"])
	assert.Equal(t, float64(0), envelope["like_count"])
}

func TestToggleWorkVoteNotFound(t *testing.T) {
	e := newTestServer(t, &stubStore{})

	rec, envelope := doRequest(t, e, http.MethodPost, "/works/404/vote", tokenFor(t, 3), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", envelope["error"])
}

func TestListIdeasPaginationPayload(t *testing.T) {
	store := &stubStore{
		ListIdeasFn: func(_ context.Context, filter repository.IdeaFilter, callerID *int64) ([]models.Idea, int, error) {
			assert.Equal(t, 20, filter.Limit)
			assert.Equal(t, 40, filter.Offset)
			assert.Equal(t, "open", filter.Status)
			assert.Nil(t, callerID)
			return []models.Idea{{ID: 1}, {ID: 2}}, 45, nil
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodGet, "/ideas?page=3&status=open", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, float64(45), envelope["total"])
	assert.Equal(t, float64(3), envelope["total_pages"])
	assert.Equal(t, float64(3), envelope["page"])
	assert.Equal(t, float64(20), envelope["limit"])
}

func TestListIdeasPassesCallerIdentity(t *testing.T) {
	store := &stubStore{
		ListIdeasFn: func(_ context.Context, _ repository.IdeaFilter, callerID *int64) ([]models.Idea, int, error) {
			require.NotNil(t, callerID)
			assert.Equal(t, int64(3), *callerID)
			return nil, 0, nil
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodGet, "/ideas", tokenFor(t, 3), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), envelope["total_pages"])
	assert.NotNil(t, envelope["ideas"])
}

func TestAdminStatsForbiddenForRegularUser(t *testing.T) {
	e := newTestServer(t, &stubStore{})

	rec, envelope := doRequest(t, e, http.MethodGet, "/admin/stats", tokenFor(t, 3), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", envelope["error"])
}

func TestAdminStatsAllowedForConfiguredAdmin(t *testing.T) {
	store := &stubStore{
		GetAdminStatsFn: func(context.Context) (*models.AdminStats, error) {
			return &models.AdminStats{Users: 10, Ideas: 4, IdeasByStatus: map[string]int64{"open": 3, "development": 1}}, nil
		},
	}
	e := newTestServer(t, store)

	// Пользователь 99 входит в список администраторов тестового middleware
	rec, envelope := doRequest(t, e, http.MethodGet, "/admin/stats", tokenFor(t, 99), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
	require.Contains(t, envelope, "stats")
}

func TestInternalErrorIsGeneric(t *testing.T) {
	store := &stubStore{
		GetIdeaFn: func(context.Context, int64, *int64) (*models.Idea, error) {
			return nil, assert.AnError
		},
	}
	e := newTestServer(t, store)

	rec, envelope := doRequest(t, e, http.MethodGet, "/ideas/7", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", envelope["error"])
	assert.Equal(t, "internal server error", envelope["message"])
}
