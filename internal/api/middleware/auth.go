package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storefront/pkg/response"
	"github.com/d60-Lab/storefront/pkg/token"
)

const (
	ctxKeyUserID = "user_id"
	ctxKeyRole   = "role"
)

// TokenParser JWT 校验
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// JWTAuth 校验 Authorization: Bearer <token>，成功后写入 user_id 与 role
func JWTAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "authorization header required")
			return
		}
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			response.Unauthorized(c, "bearer token required")
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole 仅允许指定角色，需在 JWTAuth 之后使用
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[GetRole(c)]; !ok {
			response.Forbidden(c, "insufficient role")
			return
		}
		c.Next()
	}
}

// GetUserID 已认证的用户 ID
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxKeyUserID)
}

func GetRole(c *gin.Context) string {
	return c.GetString(ctxKeyRole)
}
