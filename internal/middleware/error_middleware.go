package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

type errorMapping struct {
	err    error
	status int
	code   dto.ErrorCode
}

// errorMappings is checked in order; the first sentinel found in the chain wins
var errorMappings = []errorMapping{
	// Authentication
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
	{auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	{auth.ErrInvalidToken, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	{auth.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},

	// Password reset
	{apperrors.ErrOTPAttemptsExceeded, http.StatusTooManyRequests, dto.ErrorCodeInvalidOTP},
	{apperrors.ErrInvalidOTP, http.StatusBadRequest, dto.ErrorCodeInvalidOTP},
	{apperrors.ErrInvalidPasswordResetToken, http.StatusBadRequest, dto.ErrorCodeInvalidToken},
	{apperrors.ErrPasswordResetTokenUsed, http.StatusBadRequest, dto.ErrorCodeInvalidToken},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword},

	// Business rule violations
	{apperrors.ErrSectionFull, http.StatusConflict, dto.ErrorCodeCapacityExceeded},
	{apperrors.ErrSlotConflict, http.StatusConflict, dto.ErrorCodeScheduleConflict},
	{apperrors.ErrPLOOutsideDepartment, http.StatusBadRequest, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrStudentProgramMismatch, http.StatusBadRequest, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrStudentNotEnrolledSection, http.StatusBadRequest, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrFacultyNotInDepartment, http.StatusBadRequest, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrAttendanceDateInFuture, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	{apperrors.ErrAttendanceOutsideSession, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	{apperrors.ErrInvalidReference, http.StatusBadRequest, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest},

	// Referenced data blocks the change
	{apperrors.ErrDepartmentHasRelations, http.StatusConflict, dto.ErrorCodeResourceInUse},
	{apperrors.ErrProgramHasRelations, http.StatusConflict, dto.ErrorCodeResourceInUse},
	{apperrors.ErrBatchHasRelations, http.StatusConflict, dto.ErrorCodeResourceInUse},
	{apperrors.ErrCourseHasRelations, http.StatusConflict, dto.ErrorCodeResourceInUse},
	{apperrors.ErrSessionActive, http.StatusConflict, dto.ErrorCodeResourceInUse},
	{apperrors.ErrSystemRole, http.StatusConflict, dto.ErrorCodeResourceInUse},
	{apperrors.ErrCannotDeleteSelf, http.StatusConflict, dto.ErrorCodeResourceInUse},

	// Uniqueness
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrRegistrationNoExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrEmployeeCodeExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrRoleAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrDepartmentAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrProgramAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrPLOAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrCLOAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrBatchAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrCourseAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrSessionAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrSectionAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},

	// Not found
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrRoleNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrFacultyNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrDepartmentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrProgramNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrPLONotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrCLONotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrBatchNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrNoActiveSession, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrSectionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrSlotNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
}

// HandleAPIError maps a service error onto the standard error envelope
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, messageFor(err, m.err))
		if details := apperrors.DetailsOf(err); len(details) > 0 {
			detail = detail.WithDetails(details)
		}
		if m.status == http.StatusTooManyRequests {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		}
		c.AbortWithStatusJSON(m.status, dto.NewErrorResponse(detail))
		return
	}

	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
}

// messageFor prefers a CustomError message and falls back to the sentinel's text
func messageFor(err, sentinel error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return capitalize(sentinel.Error())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
