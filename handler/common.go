package handler

import (
	"strconv"
	"strings"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/middleware"
	"github.com/3xSu/FilmComment/pkg/response"

	"github.com/gin-gonic/gin"
)

// routes 三类前缀：/api 可选登录，/user 必须登录，/admin 需要管理员
type routes struct {
	public *gin.RouterGroup
	user   *gin.RouterGroup
	admin  *gin.RouterGroup
}

func newRoutes(r gin.IRouter, conf *config.Config) routes {
	secret := []byte(conf.Jwt.Secret)
	return routes{
		public: r.Group("/api", middleware.OptionalAuth(secret)),
		user:   r.Group("/user", middleware.Auth(secret)),
		admin:  r.Group("/admin", middleware.Auth(secret), middleware.AdminOnly()),
	}
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, response.Invalid("无效的" + name)
	}
	return id, nil
}

func queryInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// queryIntPtr 参数缺省时返回 nil
func queryIntPtr(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, response.Invalid(name + " 参数格式错误")
	}
	return &v, nil
}

// queryIDs 逗号分隔的 id 列表
func queryIDs(c *gin.Context, name string) ([]int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, response.Invalid(name + " 不能为空")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, response.Invalid(name + " 参数格式错误")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return response.Invalid("参数格式错误")
	}
	return nil
}
