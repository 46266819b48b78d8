package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"wrapped not found", fmt.Errorf("loading section: %w", apperrors.ErrSectionNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Section not found"},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"disabled account", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
		{"forbidden with message", apperrors.NewForbiddenError("Students may only view their own record"), http.StatusForbidden, dto.ErrorCodeForbidden, "Students may only view their own record"},
		{"validation", apperrors.NewValidationError("startDate must be before endDate"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "startDate must be before endDate"},
		{"bad request", apperrors.NewBadRequestError("Batch required"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "Batch required"},
		{"relations", apperrors.ErrDepartmentHasRelations, http.StatusConflict, dto.ErrorCodeResourceInUse, "Department has associated data and cannot be deleted"},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
		{"otp attempts", apperrors.ErrOTPAttemptsExceeded, http.StatusTooManyRequests, dto.ErrorCodeInvalidOTP, "Too many one-time password attempts"},
		{"future date", apperrors.ErrAttendanceDateInFuture, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Attendance cannot be marked for a future date"},
		{"expired jwt", auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, string(tt.code), body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestHandleAPIErrorCarriesDetails(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrSectionFull, "Section capacity exceeded").
		WithDetails(map[string]interface{}{"capacity": 30, "enrolled": 29, "requested": 2})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	HandleAPIError(c, fmt.Errorf("enrolling: %w", err))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, string(dto.ErrorCodeCapacityExceeded), body.Error.Code)
	assert.EqualValues(t, 30, body.Error.Details["capacity"])
	assert.EqualValues(t, 2, body.Error.Details["requested"])
}

type fakeValidator struct {
	claims *auth.Claims
	err    error
	got    string
}

func (f *fakeValidator) ValidateAndExtractClaims(token string) (*auth.Claims, error) {
	f.got = token
	return f.claims, f.err
}

type fakePermissions struct {
	granted map[string]bool
	calls   int
	err     error
}

func (f *fakePermissions) HasPermission(_ context.Context, _ int64, code string) (bool, error) {
	f.calls++
	return f.granted[code], f.err
}

func newAuthRouter(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{m.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := auth.ClaimsFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID, "ip": auth.ClientIPFromContext(c.Request.Context())})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	claims := &auth.Claims{UserID: 7, Email: "a@uni.edu", Roles: []string{models.RoleFaculty}}

	t.Run("missing header", func(t *testing.T) {
		r := newAuthRouter(NewAuthMiddleware(&fakeValidator{claims: claims}, &fakePermissions{}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, string(dto.ErrorCodeUnauthorized), decodeError(t, w).Error.Code)
	})

	t.Run("bearer header stores claims", func(t *testing.T) {
		v := &fakeValidator{claims: claims}
		r := newAuthRouter(NewAuthMiddleware(v, &fakePermissions{}))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc.def.ghi", v.got)
		assert.Contains(t, w.Body.String(), `"userId":7`)
	})

	t.Run("query token", func(t *testing.T) {
		v := &fakeValidator{claims: claims}
		r := newAuthRouter(NewAuthMiddleware(v, &fakePermissions{}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?token=abc.def.ghi", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc.def.ghi", v.got)
	})

	t.Run("expired token", func(t *testing.T) {
		r := newAuthRouter(NewAuthMiddleware(&fakeValidator{err: auth.ErrExpiredToken}, &fakePermissions{}))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, string(dto.ErrorCodeExpiredToken), decodeError(t, w).Error.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		r := newAuthRouter(NewAuthMiddleware(&fakeValidator{claims: claims}, &fakePermissions{}))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPermissionRequired(t *testing.T) {
	serve := func(claims *auth.Claims, perms *fakePermissions) int {
		m := NewAuthMiddleware(&fakeValidator{claims: claims}, perms)
		r := newAuthRouter(m, m.PermissionRequired("students:write"))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("admin resolved from the store", func(t *testing.T) {
		perms := &fakePermissions{granted: map[string]bool{"students:write": true}}
		code := serve(&auth.Claims{UserID: 1, Email: "root@uni.edu", Roles: []string{models.RoleAdmin}}, perms)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1, perms.calls)
	})

	t.Run("demoted admin token is refused", func(t *testing.T) {
		perms := &fakePermissions{}
		code := serve(&auth.Claims{UserID: 1, Email: "root@uni.edu", Roles: []string{models.RoleAdmin}}, perms)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, 1, perms.calls)
	})

	t.Run("granted through role", func(t *testing.T) {
		perms := &fakePermissions{granted: map[string]bool{"students:write": true}}
		code := serve(&auth.Claims{UserID: 2, Email: "reg@uni.edu", Roles: []string{"REGISTRAR"}}, perms)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1, perms.calls)
	})

	t.Run("missing permission", func(t *testing.T) {
		perms := &fakePermissions{granted: map[string]bool{"students:read": true}}
		code := serve(&auth.Claims{UserID: 3, Email: "f@uni.edu", Roles: []string{models.RoleFaculty}}, perms)
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("lookup failure", func(t *testing.T) {
		perms := &fakePermissions{err: errors.New("db down")}
		code := serve(&auth.Claims{UserID: 3, Email: "f@uni.edu", Roles: []string{models.RoleFaculty}}, perms)
		assert.Equal(t, http.StatusInternalServerError, code)
	})
}

func TestRoleRequired(t *testing.T) {
	m := NewAuthMiddleware(&fakeValidator{claims: &auth.Claims{UserID: 5, Email: "s@uni.edu", Roles: []string{models.RoleStudent}}}, &fakePermissions{})

	for role, want := range map[string]int{models.RoleStudent: http.StatusOK, models.RoleAdmin: http.StatusForbidden} {
		r := newAuthRouter(m, m.RoleRequired(role))
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://portal.uni.edu"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://portal.uni.edu")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://portal.uni.edu", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://portal.uni.edu")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestParamID(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := ParamID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(dto.ErrorCodeValidationFailed), decodeError(t, w).Error.Code)
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow?x=1", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}
