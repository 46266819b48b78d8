package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")
	ErrInvalidReference      = errors.New("referenced resource does not exist")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrCannotDeleteSelf   = errors.New("users cannot delete their own account")
)

// Role errors
var (
	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleAlreadyExists = errors.New("role with this name already exists")
	ErrSystemRole        = errors.New("system roles cannot be modified or deleted")
)

// Student errors
var (
	ErrStudentNotFound           = errors.New("student not found")
	ErrRegistrationNoExists      = errors.New("registration number already exists")
	ErrStudentProgramMismatch    = errors.New("batch, program and department do not match")
	ErrStudentNotEnrolledSection = errors.New("student is not enrolled in this section")
)

// Faculty member errors
var (
	ErrFacultyNotFound        = errors.New("faculty member not found")
	ErrEmployeeCodeExists     = errors.New("employee code already exists")
	ErrFacultyNotInDepartment = errors.New("faculty member does not belong to this department")
)

// Department errors
var (
	ErrDepartmentNotFound      = errors.New("department not found")
	ErrDepartmentAlreadyExists = errors.New("department with this name or code already exists")
	ErrDepartmentHasRelations  = errors.New("department has associated data and cannot be deleted")
)

// Program and outcome errors
var (
	ErrProgramNotFound      = errors.New("program not found")
	ErrProgramAlreadyExists = errors.New("program with this code already exists")
	ErrProgramHasRelations  = errors.New("program has associated data and cannot be deleted")
	ErrPLONotFound          = errors.New("program learning outcome not found")
	ErrPLOAlreadyExists     = errors.New("program learning outcome code already exists")
	ErrCLONotFound          = errors.New("course learning outcome not found")
	ErrCLOAlreadyExists     = errors.New("course learning outcome code already exists")
	ErrPLOOutsideDepartment = errors.New("program learning outcome does not belong to the course department")
)

// Batch errors
var (
	ErrBatchNotFound      = errors.New("batch not found")
	ErrBatchAlreadyExists = errors.New("batch for this program and intake year already exists")
	ErrBatchHasRelations  = errors.New("batch has associated students and cannot be deleted")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseAlreadyExists = errors.New("course with this code already exists")
	ErrCourseHasRelations  = errors.New("course has associated sections and cannot be deleted")
)

// Academic session errors
var (
	ErrSessionNotFound      = errors.New("academic session not found")
	ErrSessionAlreadyExists = errors.New("academic session with this name already exists")
	ErrSessionActive        = errors.New("the active academic session cannot be deleted")
	ErrNoActiveSession      = errors.New("no academic session is active")
)

// Section errors
var (
	ErrSectionNotFound      = errors.New("section not found")
	ErrSectionAlreadyExists = errors.New("section with this name already exists for the course and session")
	ErrSectionFull          = errors.New("section capacity exceeded")
)

// Timetable errors
var (
	ErrSlotNotFound = errors.New("timetable slot not found")
	ErrSlotConflict = errors.New("timetable slot conflicts with an existing slot")
)

// Attendance errors
var (
	ErrAttendanceDateInFuture   = errors.New("attendance cannot be marked for a future date")
	ErrAttendanceOutsideSession = errors.New("attendance date is outside the academic session")
)

// Notification errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// Password reset errors
var (
	ErrInvalidOTP                = errors.New("invalid or expired one-time password")
	ErrOTPAttemptsExceeded       = errors.New("too many one-time password attempts")
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
	ErrPasswordResetTokenUsed    = errors.New("password reset token has already been used")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// DetailsOf returns the details attached to the first CustomError in the chain
func DetailsOf(err error) map[string]interface{} {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Details
	}
	return nil
}
