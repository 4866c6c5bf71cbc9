package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-notify/internal/service"
	appErrors "github.com/noah-isme/lms-notify/pkg/errors"
	"github.com/noah-isme/lms-notify/pkg/response"
)

// ContextServiceKey is the gin context key storing validated service claims.
const ContextServiceKey = "callerService"

// ServiceAuth protects trigger routes by requiring a valid service token.
func ServiceAuth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextServiceKey, claims)
		c.Next()
	}
}
