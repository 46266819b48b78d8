package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/pkg/auth"
	"github.com/yigit/unicampus/internal/pkg/logger"
)

// Gin context keys set by JWTAuth
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRoles  = "roles"
)

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateAndExtractClaims(tokenString string) (*auth.Claims, error)
}

// PermissionChecker resolves a user's permissions through their roles. ADMIN holds every permission;
// inactive accounts hold none.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID int64, code string) (bool, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens      TokenValidator
	permissions PermissionChecker
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator, permissions PermissionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:      tokens,
		permissions: permissions,
	}
}

// JWTAuth validates the access token and stores the caller on the request context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Swagger UI and browsers opening websockets pass the token as a query parameter
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		if authHeader == "" {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		claims, err := m.tokens.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			reason := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
				reason = "Token has expired"
			}

			detail := dto.NewErrorDetail(code, "Authentication failed").WithDetails(reason)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		ctx := auth.ContextWithClaims(c.Request.Context(), claims)
		ctx = auth.ContextWithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRoles, claims.Roles)

		c.Next()
	}
}

// RoleRequired admits callers holding any of the given roles
func (m *AuthMiddleware) RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			abortUnauthenticated(c)
			return
		}

		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}

		abortForbidden(c, "You don't have the role required for this operation")
	}
}

// PermissionRequired admits callers whose current roles grant the permission code. Roles are read
// from the store on every request, so revoking ADMIN or suspending the account applies immediately.
func (m *AuthMiddleware) PermissionRequired(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFromContext(c.Request.Context())
		if !ok {
			abortUnauthenticated(c)
			return
		}

		allowed, err := m.permissions.HasPermission(c.Request.Context(), claims.UserID, code)
		if err != nil {
			logger.Error().Err(err).Int64("userID", claims.UserID).Str("permission", code).Msg("Error checking permission")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
			return
		}
		if !allowed {
			abortForbidden(c, "Missing permission "+code)
			return
		}

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
		WithDetails("User information not found")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
}

func abortForbidden(c *gin.Context, reason string) {
	detail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").WithDetails(reason)
	c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
}
