package middleware

import (
	"errors"
	"strings"

	"porkbun_console/internal/auth"
	"porkbun_console/internal/httpx"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthRequired is a middleware that validates JWT token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httpx.FailErr(c, httpx.ErrUnauthorized("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httpx.FailErr(c, httpx.ErrUnauthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				httpx.FailErr(c, httpx.ErrTokenExpired("token expired"))
			} else {
				httpx.FailErr(c, httpx.ErrInvalidToken("invalid token"))
			}
			c.Abort()
			return
		}

		c.Set("uid", claims.UID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// MutationAllowed rejects viewers on endpoints that change DNS state.
// Must run after AuthRequired.
func MutationAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if !auth.CanMutate(role) {
			httpx.FailErr(c, httpx.ErrForbidden("role is not allowed to modify DNS"))
			c.Abort()
			return
		}
		c.Next()
	}
}
