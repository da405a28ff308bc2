package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/auth"
	"github.com/lucidpath/wellness-api/pkg/response"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// authenticateAccess validates the bearer access token and stores the
// caller's identity in the gin context. It aborts with 401 and reports false
// on failure; it never advances the handler chain itself, so role checks can
// run before any guarded handler.
func authenticateAccess(c *gin.Context) bool {
	token, ok := bearerToken(c)
	if !ok {
		response.Unauthorized(c, "authentication required", nil)
		c.Abort()
		return false
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		logger.Warnf("invalid token: %v", err)
		response.Unauthorized(c, "invalid token", err)
		c.Abort()
		return false
	}
	if claims.Type != auth.AccessToken {
		response.Unauthorized(c, "access token required", errors.New("wrong token type"))
		c.Abort()
		return false
	}

	c.Set("userID", claims.UserID)
	c.Set("userRole", claims.Role)
	c.Set("tokenID", claims.TokenID)
	return true
}

// JWTAuth requires a valid access token and stores the caller's identity in
// the gin context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticateAccess(c) {
			return
		}
		c.Next()
	}
}

// RefreshAuth requires a valid refresh token.
func RefreshAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "refresh token required", nil)
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			logger.Warnf("invalid refresh token: %v", err)
			response.Unauthorized(c, "invalid refresh token", err)
			c.Abort()
			return
		}
		if claims.Type != auth.RefreshToken {
			response.Unauthorized(c, "refresh token required", errors.New("wrong token type"))
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("tokenID", claims.TokenID)
		c.Next()
	}
}

// AdminAuth requires an access token carrying the admin role. Non-admin
// callers get 403 regardless of whether the guarded resource exists, so the
// guard leaks nothing about it.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticateAccess(c) {
			return
		}

		role, exists := c.Get("userRole")
		if !exists || role != model.RoleAdmin {
			response.Forbidden(c, "admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ProviderAuth requires an access token carrying the provider role.
func ProviderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticateAccess(c) {
			return
		}

		role, exists := c.Get("userRole")
		if !exists || role != model.RoleProvider {
			response.Forbidden(c, "provider access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the caller's identity when a valid access token is
// provided but never blocks the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil || claims.Type != auth.AccessToken {
			c.Next()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("tokenID", claims.TokenID)
		c.Next()
	}
}

// GetUserID reads the caller's id from the context.
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// GetUserRole reads the caller's role from the context.
func GetUserRole(c *gin.Context) (string, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	return userRole.(string), true
}
