package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/controllers"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/middleware"
	"github.com/yigit/unicampus/internal/pkg/websocket"
)

// Controllers groups every HTTP controller mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Role         *controllers.RoleController
	Department   *controllers.DepartmentController
	Program      *controllers.ProgramController
	Batch        *controllers.BatchController
	Course       *controllers.CourseController
	Session      *controllers.SessionController
	Faculty      *controllers.FacultyController
	Student      *controllers.StudentController
	Section      *controllers.SectionController
	Timetable    *controllers.TimetableController
	Attendance   *controllers.AttendanceController
	Notification *controllers.NotificationController
	Audit        *controllers.AuditController
	Dashboard    *controllers.DashboardController
	Health       *controllers.HealthController
}

// SetupRouter configures all the routes for the application
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware, ws *websocket.Handler) {
	router.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	// The websocket handler authenticates the upgrade request itself
	if ws != nil {
		router.GET("/ws/notifications", ws.HandleConnection)
	}

	v1 := router.Group("/api/v1")

	v1.GET("/health", c.Health.Health)

	// Public auth routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/login", c.Auth.Login)
		authRoutes.POST("/refresh", c.Auth.RefreshToken)
		authRoutes.POST("/logout", c.Auth.Logout)
		authRoutes.POST("/forgot-password", c.Auth.ForgotPassword)
		authRoutes.POST("/verify-otp", c.Auth.VerifyOTP)
		authRoutes.POST("/reset-password", c.Auth.ResetPassword)
	}

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	read := func(resource string) gin.HandlerFunc {
		return authMiddleware.PermissionRequired(resource + ":read")
	}
	write := func(resource string) gin.HandlerFunc {
		return authMiddleware.PermissionRequired(resource + ":write")
	}

	me := authenticated.Group("/auth")
	{
		me.GET("/me", c.Auth.Me)
		me.PUT("/change-password", c.Auth.ChangePassword)
	}

	users := authenticated.Group("/users")
	{
		users.GET("", read("users"), c.User.ListUsers)
		users.GET("/:id", read("users"), c.User.GetUser)
		users.POST("", write("users"), c.User.CreateUser)
		users.PUT("/:id", write("users"), c.User.UpdateUser)
		users.PATCH("/:id/status", write("users"), c.User.UpdateUserStatus)
		users.DELETE("/:id", write("users"), c.User.DeleteUser)
		users.PUT("/:id/roles", write("roles"), c.User.AssignRoles)
	}

	roles := authenticated.Group("/roles")
	{
		roles.GET("", read("roles"), c.Role.ListRoles)
		roles.POST("", write("roles"), c.Role.CreateRole)
		roles.PUT("/:id/permissions", write("roles"), c.Role.SetPermissions)
		roles.DELETE("/:id", write("roles"), c.Role.DeleteRole)
	}
	authenticated.GET("/permissions", read("roles"), c.Role.ListPermissions)

	departments := authenticated.Group("/departments")
	{
		departments.GET("", read("departments"), c.Department.ListDepartments)
		departments.GET("/:id", read("departments"), c.Department.GetDepartment)
		departments.POST("", write("departments"), c.Department.CreateDepartment)
		departments.PUT("/:id", write("departments"), c.Department.UpdateDepartment)
		departments.DELETE("/:id", write("departments"), c.Department.DeleteDepartment)
		departments.PUT("/:id/head", write("departments"), c.Department.SetDepartmentHead)
	}

	programs := authenticated.Group("/programs")
	{
		programs.GET("", read("programs"), c.Program.ListPrograms)
		programs.GET("/:id", read("programs"), c.Program.GetProgram)
		programs.POST("", write("programs"), c.Program.CreateProgram)
		programs.PUT("/:id", write("programs"), c.Program.UpdateProgram)
		programs.DELETE("/:id", write("programs"), c.Program.DeleteProgram)
		programs.GET("/:id/plos", read("programs"), c.Program.ListPLOs)
		programs.POST("/:id/plos", write("programs"), c.Program.CreatePLO)
	}

	plos := authenticated.Group("/plos")
	{
		plos.PUT("/:id", write("programs"), c.Program.UpdatePLO)
		plos.DELETE("/:id", write("programs"), c.Program.DeletePLO)
	}

	batches := authenticated.Group("/batches")
	{
		batches.GET("", read("batches"), c.Batch.ListBatches)
		batches.GET("/:id", read("batches"), c.Batch.GetBatch)
		batches.POST("", write("batches"), c.Batch.CreateBatch)
		batches.PUT("/:id", write("batches"), c.Batch.UpdateBatch)
		batches.PATCH("/:id/status", write("batches"), c.Batch.UpdateBatchStatus)
		batches.DELETE("/:id", write("batches"), c.Batch.DeleteBatch)
	}

	courses := authenticated.Group("/courses")
	{
		courses.GET("", read("courses"), c.Course.ListCourses)
		courses.GET("/:id", read("courses"), c.Course.GetCourse)
		courses.POST("", write("courses"), c.Course.CreateCourse)
		courses.PUT("/:id", write("courses"), c.Course.UpdateCourse)
		courses.DELETE("/:id", write("courses"), c.Course.DeleteCourse)
		courses.GET("/:id/clos", read("courses"), c.Course.ListCLOs)
		courses.POST("/:id/clos", write("courses"), c.Course.CreateCLO)
		courses.GET("/:id/outcome-matrix", read("courses"), c.Course.OutcomeMatrix)
	}

	clos := authenticated.Group("/clos")
	{
		clos.PUT("/:id", write("courses"), c.Course.UpdateCLO)
		clos.DELETE("/:id", write("courses"), c.Course.DeleteCLO)
		clos.PUT("/:id/plos", write("courses"), c.Course.MapCLOToPLOs)
	}

	sessions := authenticated.Group("/sessions")
	{
		sessions.GET("", read("sessions"), c.Session.ListSessions)
		sessions.GET("/active", read("sessions"), c.Session.GetActiveSession)
		sessions.GET("/:id", read("sessions"), c.Session.GetSession)
		sessions.POST("", write("sessions"), c.Session.CreateSession)
		sessions.PUT("/:id", write("sessions"), c.Session.UpdateSession)
		sessions.PUT("/:id/activate", write("sessions"), c.Session.ActivateSession)
		sessions.DELETE("/:id", write("sessions"), c.Session.DeleteSession)
	}

	faculty := authenticated.Group("/faculty")
	{
		faculty.GET("", read("faculty"), c.Faculty.ListFaculty)
		faculty.GET("/:id", read("faculty"), c.Faculty.GetFaculty)
		faculty.POST("", write("faculty"), c.Faculty.CreateFaculty)
		faculty.PUT("/:id", write("faculty"), c.Faculty.UpdateFaculty)
		faculty.DELETE("/:id", write("faculty"), c.Faculty.DeleteFaculty)
		faculty.GET("/:id/sections", read("sections"), c.Faculty.FacultySections)
	}

	students := authenticated.Group("/students")
	{
		// Students may read their own record but not browse the directory
		students.GET("", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty), read("students"), c.Student.ListStudents)
		students.GET("/:id", read("students"), c.Student.GetStudent)
		students.POST("", write("students"), c.Student.CreateStudent)
		students.PUT("/:id", write("students"), c.Student.UpdateStudent)
		students.PATCH("/:id/status", write("students"), c.Student.UpdateStudentStatus)
		students.DELETE("/:id", write("students"), c.Student.DeleteStudent)
		students.GET("/:id/sections", read("sections"), c.Student.StudentSections)
		students.GET("/:id/attendance-summary", read("attendance"), c.Attendance.StudentSummary)
	}

	sections := authenticated.Group("/sections")
	{
		sections.GET("", read("sections"), c.Section.ListSections)
		sections.GET("/:id", read("sections"), c.Section.GetSection)
		sections.POST("", write("sections"), c.Section.CreateSection)
		sections.PUT("/:id", write("sections"), c.Section.UpdateSection)
		sections.DELETE("/:id", write("sections"), c.Section.DeleteSection)
		sections.GET("/:id/students", read("sections"), c.Section.Roster)
		sections.POST("/:id/students", write("sections"), c.Section.EnrollStudents)
		sections.POST("/:id/enroll-batch", write("sections"), c.Section.EnrollBatch)
		sections.DELETE("/:id/students/:studentId", write("sections"), c.Section.UnenrollStudent)
		sections.GET("/:id/attendance", read("attendance"), c.Attendance.SectionAttendance)
		sections.POST("/:id/attendance", write("attendance"), c.Attendance.MarkAttendance)
		sections.POST("/:id/attendance/shortage-alerts", write("attendance"), c.Attendance.ShortageAlerts)
	}

	timetable := authenticated.Group("/timetable")
	{
		timetable.GET("", read("timetable"), c.Timetable.ListSlots)
		timetable.GET("/:id", read("timetable"), c.Timetable.GetSlot)
		timetable.POST("", write("timetable"), c.Timetable.CreateSlot)
		timetable.PUT("/:id", write("timetable"), c.Timetable.UpdateSlot)
		timetable.DELETE("/:id", write("timetable"), c.Timetable.DeleteSlot)
	}

	authenticated.GET("/attendance", read("attendance"), c.Attendance.ListAttendance)

	// A caller's own inbox needs no permission beyond being signed in
	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", c.Notification.ListNotifications)
		notifications.GET("/unread-count", c.Notification.UnreadCount)
		notifications.PATCH("/read-all", c.Notification.MarkAllRead)
		notifications.PATCH("/:id/read", c.Notification.MarkRead)
		notifications.POST("", write("notifications"), c.Notification.SendNotification)
	}

	authenticated.GET("/audit-logs", read("audit"), c.Audit.ListAuditLogs)

	dashboard := authenticated.Group("/dashboard", read("dashboard"))
	{
		dashboard.GET("/stats", c.Dashboard.Stats)
		dashboard.GET("/attendance-trend", c.Dashboard.AttendanceTrend)
		dashboard.GET("/department-breakdown", c.Dashboard.DepartmentBreakdown)
	}
}
