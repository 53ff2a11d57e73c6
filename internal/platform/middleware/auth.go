package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gymclass/service-booking/internal/platform/auth"
	"github.com/gymclass/service-booking/internal/platform/response"
)

const principalKey = "principal"

// AuthMiddleware verifies the bearer token and stores the principal.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			response.Unauthorized(c, "invalid authorization format")
			return
		}

		principal, err := jwtManager.Verify(strings.TrimSpace(header[len(prefix):]))
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole rejects principals whose role is not in roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			response.Unauthorized(c, "unauthorized")
			return
		}
		for _, r := range roles {
			if principal.Role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient permissions")
	}
}

// GetPrincipal returns the principal set by AuthMiddleware.
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
