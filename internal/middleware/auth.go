package middleware

import (
	"strings"

	"learnlink_backend/internal/config"
	"learnlink_backend/internal/model"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware rejects requests without a valid Bearer token and stores
// the parsed claims in the request context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, cfg)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Set("user", claims)
		c.Next()
	}
}

// TryAuthMiddleware parses the token when present but lets anonymous
// requests through. Public listings use it to personalize when possible.
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, cfg); ok {
			c.Set("user", claims)
		}
		c.Next()
	}
}

// RoleMiddleware allows only the listed roles. A super admin passes every
// check.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if claims.Role == model.SuperAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		util.Forbidden(c)
		c.Abort()
	}
}

func parseBearer(c *gin.Context, cfg *config.Config) (*util.Claims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := util.ParseJWT(strings.TrimPrefix(header, "Bearer "), cfg.JWT.Secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}
