package middleware

import (
	"net/http"
	"strings"

	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/jwt"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(context.CtxUserID, claims.UserID)
	c.Set(context.CtxRole, claims.Role)
}

// Auth 必须登录
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			response.Abort(c, http.StatusUnauthorized, "缺少 Authorization")
			return
		}
		token, ok := bearer(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "Authorization 格式错误")
			return
		}

		claims, err := jwt.ParseToken(secret, jwt.TypeAccess, token)
		if err != nil {
			log.L.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			response.Abort(c, http.StatusUnauthorized, "登录已失效，请重新登录")
			return
		}
		setClaims(c, claims)

		c.Next()
	}
}

// OptionalAuth 携带有效 token 时解析身份，否则按匿名处理
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearer(c); ok {
			if claims, err := jwt.ParseToken(secret, jwt.TypeAccess, token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AdminOnly 需放在 Auth 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := context.GetActor(c)
		if actor.IsAnonymous() {
			response.Abort(c, http.StatusUnauthorized, "需要登录")
			return
		}
		if actor.Role != types.RoleAdmin {
			log.L.Warn("non-admin access", zap.Int64("user_id", actor.UserID), zap.String("path", c.Request.URL.Path))
			response.Abort(c, http.StatusForbidden, "需要管理员权限")
			return
		}
		c.Next()
	}
}
