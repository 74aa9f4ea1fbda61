package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/apperrors"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextKeyClaims    = "claims"
	ContextKeySubjectID = "subjectID"
	ContextKeyRole      = "role"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// JWTAuth middleware for JWT token validation. Browsers cannot set headers
// on a WebSocket handshake, so the token may also be sent as ?token=.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrTokenNotFound, "Authorization header missing"))
			c.Abort()
			return
		}

		// Some clients wrap the header value in quotes
		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid token format"))
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrTokenExpired, "Token has expired"))
			} else {
				HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid token"))
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeySubjectID, claims.SubjectID)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// RoleRequired aborts with 403 unless the caller has one of roles
func (m *AuthMiddleware) RoleRequired(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrTokenNotFound, "Authentication required"))
			c.Abort()
			return
		}

		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}

		HandleAPIError(c, apperrors.NewForbiddenError("You don't have sufficient permissions for this operation"))
		c.Abort()
	}
}

// ClaimsFrom returns the claims stored by JWTAuth
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}
