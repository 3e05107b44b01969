package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID        = "userID"
	ContextPrincipalKind = "principalKind"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		// Some clients wrap the header value in quotes
		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
			return
		}

		claims, principalID, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			details := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				code = dto.ErrorCodeExpiredToken
				details = "Token has expired"
			}
			abortUnauthorized(c, code, details)
			return
		}

		c.Set(ContextUserID, principalID)
		c.Set(ContextPrincipalKind, claims.Kind)

		c.Next()
	}
}

// KindRequired restricts a route to one principal kind. JWTAuth must run first.
func (m *AuthMiddleware) KindRequired(required models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, kind, ok := Principal(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}

		if kind != required {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("This operation is only available to " + string(required) + " users")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// Principal returns the authenticated principal stored by JWTAuth
func Principal(c *gin.Context) (uuid.UUID, models.PrincipalKind, bool) {
	rawID, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, "", false
	}
	id, ok := rawID.(uuid.UUID)
	if !ok {
		return uuid.Nil, "", false
	}
	rawKind, ok := c.Get(ContextPrincipalKind)
	if !ok {
		return uuid.Nil, "", false
	}
	kind, ok := rawKind.(models.PrincipalKind)
	if !ok {
		return uuid.Nil, "", false
	}
	return id, kind, true
}
