package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/app/services"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.Setup(); err != nil {
		panic(err)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// withClaims stands in for JWTAuth
func withClaims(claims *auth.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.ContextWithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

type fakeSectionService struct {
	services.SectionService
	enrolled []int64
	enrollFn func(id int64, ids []int64) (*dto.EnrollmentResult, error)
	filter   repositories.SectionFilter
}

func (f *fakeSectionService) Enroll(_ context.Context, id int64, ids []int64) (*dto.EnrollmentResult, error) {
	f.enrolled = ids
	return f.enrollFn(id, ids)
}

func (f *fakeSectionService) List(_ context.Context, filter repositories.SectionFilter) (*dto.PaginatedResponse, error) {
	f.filter = filter
	return &dto.PaginatedResponse{Items: []*models.Section{}}, nil
}

func TestEnrollStudents(t *testing.T) {
	svc := &fakeSectionService{}
	c := NewSectionController(svc)
	r := gin.New()
	r.POST("/sections/:id/students", c.EnrollStudents)

	t.Run("success", func(t *testing.T) {
		svc.enrollFn = func(id int64, ids []int64) (*dto.EnrollmentResult, error) {
			return &dto.EnrollmentResult{Requested: len(ids), Enrolled: 2, Total: 12}, nil
		}
		w, env := perform(t, r, http.MethodPost, "/sections/9/students", dto.EnrollStudentsRequest{StudentIDs: []int64{31, 32}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, []int64{31, 32}, svc.enrolled)

		var result dto.EnrollmentResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.EqualValues(t, 12, result.Total)
	})

	t.Run("empty list rejected before the service", func(t *testing.T) {
		svc.enrolled = nil
		w, env := perform(t, r, http.MethodPost, "/sections/9/students", map[string]interface{}{"studentIds": []int64{}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(dto.ErrorCodeValidationFailed), env.Error.Code)
		assert.Contains(t, env.Error.Details, "studentIds")
		assert.Nil(t, svc.enrolled)
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		svc.enrollFn = func(int64, []int64) (*dto.EnrollmentResult, error) {
			return nil, apperrors.NewCustomError(apperrors.ErrSectionFull, "Section capacity exceeded").
				WithDetails(map[string]interface{}{"capacity": 30, "enrolled": 30, "requested": 1})
		}
		w, env := perform(t, r, http.MethodPost, "/sections/9/students", dto.EnrollStudentsRequest{StudentIDs: []int64{40}})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, string(dto.ErrorCodeCapacityExceeded), env.Error.Code)
		assert.EqualValues(t, 30, env.Error.Details["capacity"])
	})

	t.Run("bad id", func(t *testing.T) {
		w, _ := perform(t, r, http.MethodPost, "/sections/nine/students", dto.EnrollStudentsRequest{StudentIDs: []int64{1}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListSectionsFilters(t *testing.T) {
	svc := &fakeSectionService{}
	r := gin.New()
	r.GET("/sections", NewSectionController(svc).ListSections)

	w, _ := perform(t, r, http.MethodGet, "/sections?sessionId=2&courseId=5&facultyId=x&page=3&size=20", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.filter.SessionID)
	assert.EqualValues(t, 2, *svc.filter.SessionID)
	assert.EqualValues(t, 5, *svc.filter.CourseID)
	assert.Nil(t, svc.filter.FacultyID)
	assert.Equal(t, 3, svc.filter.Page)
	assert.Equal(t, 20, svc.filter.Size)
}

type fakeAttendanceService struct {
	services.AttendanceService
	day  models.Date
	mark *dto.MarkAttendanceRequest
	err  error
}

func (f *fakeAttendanceService) SectionAttendance(_ context.Context, sectionID int64, date models.Date) (*dto.SectionAttendanceResponse, error) {
	f.day = date
	return &dto.SectionAttendanceResponse{}, f.err
}

func (f *fakeAttendanceService) Mark(_ context.Context, sectionID int64, req *dto.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error) {
	f.mark = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.MarkAttendanceResponse{SectionID: sectionID, Date: req.Date}, nil
}

func TestSectionAttendanceDate(t *testing.T) {
	svc := &fakeAttendanceService{}
	r := gin.New()
	r.GET("/sections/:id/attendance", NewAttendanceController(svc).SectionAttendance)

	w, _ := perform(t, r, http.MethodGet, "/sections/9/attendance?date=2025-10-06", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-10-06", svc.day.String())

	w, env := perform(t, r, http.MethodGet, "/sections/9/attendance?date=06/10/2025", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid date", env.Error.Message)
}

func TestMarkAttendance(t *testing.T) {
	svc := &fakeAttendanceService{}
	r := gin.New()
	r.POST("/sections/:id/attendance", NewAttendanceController(svc).MarkAttendance)

	body := map[string]interface{}{
		"date":    "2025-10-06",
		"records": []map[string]interface{}{{"studentId": 31, "status": "PRESENT"}},
	}

	t.Run("binds the date", func(t *testing.T) {
		svc.err = nil
		w, _ := perform(t, r, http.MethodPost, "/sections/9/attendance", body)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.mark)
		assert.Equal(t, "2025-10-06", svc.mark.Date.String())
		assert.Len(t, svc.mark.Records, 1)
	})

	t.Run("unknown status", func(t *testing.T) {
		bad := map[string]interface{}{
			"date":    "2025-10-06",
			"records": []map[string]interface{}{{"studentId": 31, "status": "SICK"}},
		}
		w, _ := perform(t, r, http.MethodPost, "/sections/9/attendance", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("forbidden for another faculty's section", func(t *testing.T) {
		svc.err = apperrors.NewForbiddenError("Only the assigned faculty member can mark attendance")
		w, env := perform(t, r, http.MethodPost, "/sections/9/attendance", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Only the assigned faculty member can mark attendance", env.Error.Message)
	})
}

type fakeAuthService struct {
	services.AuthService
	loginErr  error
	profileID int64
}

func (f *fakeAuthService) Login(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}, nil
}

func (f *fakeAuthService) ForgotPassword(context.Context, string) error {
	return errors.New("smtp down")
}

func (f *fakeAuthService) GetProfile(_ context.Context, userID int64) (*dto.ProfileResponse, error) {
	f.profileID = userID
	return &dto.ProfileResponse{Permissions: []string{"students:read"}}, nil
}

func newAuthRouter(svc services.AuthService, claims *auth.Claims) *gin.Engine {
	c := NewAuthController(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/auth/login", c.Login)
	r.POST("/auth/forgot-password", c.ForgotPassword)
	if claims != nil {
		r.GET("/auth/me", withClaims(claims), c.Me)
	} else {
		r.GET("/auth/me", c.Me)
	}
	return r
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := newAuthRouter(&fakeAuthService{}, nil)
		w, env := perform(t, r, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "a@uni.edu", Password: "secret123"})

		require.Equal(t, http.StatusOK, w.Code)
		var tokens dto.TokenResponse
		require.NoError(t, json.Unmarshal(env.Data, &tokens))
		assert.Equal(t, "access", tokens.AccessToken)
	})

	t.Run("invalid email format", func(t *testing.T) {
		r := newAuthRouter(&fakeAuthService{}, nil)
		w, env := perform(t, r, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "nope", Password: "x"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Error.Details, "email")
	})

	t.Run("wrong password", func(t *testing.T) {
		r := newAuthRouter(&fakeAuthService{loginErr: apperrors.ErrInvalidCredentials}, nil)
		w, env := perform(t, r, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "a@uni.edu", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, string(dto.ErrorCodeInvalidCredentials), env.Error.Code)
	})

	t.Run("suspended account", func(t *testing.T) {
		r := newAuthRouter(&fakeAuthService{loginErr: apperrors.ErrAccountDisabled}, nil)
		w, _ := perform(t, r, http.MethodPost, "/auth/login", dto.LoginRequest{Email: "a@uni.edu", Password: "secret123"})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestForgotPasswordNeverLeaksFailures(t *testing.T) {
	r := newAuthRouter(&fakeAuthService{}, nil)
	w, env := perform(t, r, http.MethodPost, "/auth/forgot-password", dto.ForgotPasswordRequest{Email: "ghost@uni.edu"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestMe(t *testing.T) {
	svc := &fakeAuthService{}
	r := newAuthRouter(svc, &auth.Claims{UserID: 42, Email: "me@uni.edu"})
	w, _ := perform(t, r, http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 42, svc.profileID)

	w, _ = perform(t, newAuthRouter(svc, nil), http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeDepartmentService struct {
	services.DepartmentService
	created *dto.DepartmentRequest
}

func (f *fakeDepartmentService) GetByID(_ context.Context, id int64) (*models.Department, error) {
	return nil, apperrors.ErrDepartmentNotFound
}

func (f *fakeDepartmentService) Create(_ context.Context, req *dto.DepartmentRequest) (*models.Department, error) {
	f.created = req
	return &models.Department{ID: 1, Name: req.Name, Code: req.Code}, nil
}

func (f *fakeDepartmentService) Delete(context.Context, int64) error {
	return apperrors.ErrDepartmentHasRelations
}

func TestDepartmentController(t *testing.T) {
	svc := &fakeDepartmentService{}
	c := NewDepartmentController(svc)
	r := gin.New()
	r.GET("/departments/:id", c.GetDepartment)
	r.POST("/departments", c.CreateDepartment)
	r.DELETE("/departments/:id", c.DeleteDepartment)

	w, env := perform(t, r, http.MethodGet, "/departments/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Department not found", env.Error.Message)

	w, _ = perform(t, r, http.MethodPost, "/departments", map[string]string{"name": "Computer Science", "code": "CS"})
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "CS", svc.created.Code)

	w, env = perform(t, r, http.MethodDelete, "/departments/3", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(dto.ErrorCodeResourceInUse), env.Error.Code)
}

type fakeNotificationService struct {
	services.NotificationService
	unread bool
	count  int64
}

func (f *fakeNotificationService) List(_ context.Context, unreadOnly bool, page, size int) (*dto.PaginatedResponse, error) {
	f.unread = unreadOnly
	return &dto.PaginatedResponse{Items: []*models.Notification{}}, nil
}

func (f *fakeNotificationService) UnreadCount(context.Context) (int64, error) {
	return f.count, nil
}

func (f *fakeNotificationService) Send(_ context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationSentResponse, error) {
	return nil, apperrors.NewBadRequestError("Provide either userIds or role, not both")
}

func TestNotificationController(t *testing.T) {
	svc := &fakeNotificationService{count: 4}
	c := NewNotificationController(svc)
	r := gin.New()
	r.GET("/notifications", c.ListNotifications)
	r.GET("/notifications/unread-count", c.UnreadCount)
	r.POST("/notifications", c.SendNotification)

	w, _ := perform(t, r, http.MethodGet, "/notifications?unread=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.unread)

	w, env := perform(t, r, http.MethodGet, "/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count dto.CountResponse
	require.NoError(t, json.Unmarshal(env.Data, &count))
	assert.EqualValues(t, 4, count.Count)

	w, env = perform(t, r, http.MethodPost, "/notifications", dto.CreateNotificationRequest{
		Title: "Exam", Message: "Moved", UserIDs: []int64{1}, Role: "STUDENT",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(dto.ErrorCodeBadRequest), env.Error.Code)
}

type fakeDashboardService struct {
	services.DashboardService
	days int
}

func (f *fakeDashboardService) AttendanceTrend(_ context.Context, days int) ([]dto.AttendanceTrendPoint, error) {
	f.days = days
	return []dto.AttendanceTrendPoint{}, nil
}

func TestAttendanceTrendDays(t *testing.T) {
	svc := &fakeDashboardService{}
	r := gin.New()
	r.GET("/dashboard/attendance-trend", NewDashboardController(svc).AttendanceTrend)

	perform(t, r, http.MethodGet, "/dashboard/attendance-trend", nil)
	assert.Equal(t, services.DefaultTrendDays, svc.days)

	perform(t, r, http.MethodGet, "/dashboard/attendance-trend?days=30", nil)
	assert.Equal(t, 30, svc.days)

	perform(t, r, http.MethodGet, "/dashboard/attendance-trend?days=many", nil)
	assert.Equal(t, services.DefaultTrendDays, svc.days)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/up", NewHealthController(fakePinger{}).Health)
	r.GET("/down", NewHealthController(fakePinger{err: errors.New("refused")}).Health)

	w, _ := perform(t, r, http.MethodGet, "/up", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := perform(t, r, http.MethodGet, "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(dto.ErrorCodeDatabaseError), env.Error.Code)
}
