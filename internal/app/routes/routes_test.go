package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/unicampus/internal/app/controllers"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

type staticTokens map[string]*auth.Claims

func (s staticTokens) ValidateAndExtractClaims(token string) (*auth.Claims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

type grants map[string]bool

func (g grants) HasPermission(_ context.Context, _ int64, code string) (bool, error) {
	return g[code], nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	tokens := staticTokens{
		"student": {UserID: 7, Roles: []string{models.RoleStudent}},
	}
	studentGrants := grants{"students:read": true, "departments:read": true}

	c := &Controllers{
		Auth:         controllers.NewAuthController(nil, zerolog.Nop()),
		User:         controllers.NewUserController(nil),
		Role:         controllers.NewRoleController(nil),
		Department:   controllers.NewDepartmentController(nil),
		Program:      controllers.NewProgramController(nil),
		Batch:        controllers.NewBatchController(nil),
		Course:       controllers.NewCourseController(nil),
		Session:      controllers.NewSessionController(nil),
		Faculty:      controllers.NewFacultyController(nil),
		Student:      controllers.NewStudentController(nil),
		Section:      controllers.NewSectionController(nil),
		Timetable:    controllers.NewTimetableController(nil),
		Attendance:   controllers.NewAttendanceController(nil),
		Notification: controllers.NewNotificationController(nil),
		Audit:        controllers.NewAuditController(nil),
		Dashboard:    controllers.NewDashboardController(nil),
		Health:       controllers.NewHealthController(nil),
	}
	SetupRouter(router, c, middleware.NewAuthMiddleware(tokens, studentGrants), nil)
	return router
}

func TestSetupRouter(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"ping is public", http.MethodGet, "/ping", "", http.StatusOK},
		{"missing token", http.MethodGet, "/api/v1/departments/1", "", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/api/v1/departments/1", "nope", http.StatusUnauthorized},
		{"write permission missing", http.MethodPost, "/api/v1/departments", "student", http.StatusForbidden},
		{"student directory restricted by role", http.MethodGet, "/api/v1/students", "student", http.StatusForbidden},
		{"dashboard needs permission", http.MethodGet, "/api/v1/dashboard/stats", "student", http.StatusForbidden},
		{"audit log needs permission", http.MethodGet, "/api/v1/audit-logs", "student", http.StatusForbidden},
		{"bad id reaches controller", http.MethodGet, "/api/v1/departments/abc", "student", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/v1/nothing", "student", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
