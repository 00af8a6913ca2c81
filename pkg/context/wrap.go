package context

import (
	"errors"

	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// Wrap 把处理函数返回的错误交给 response.ErrorMiddleware 渲染
func Wrap(h func(*gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {
			_ = c.Error(err)
		}
	}
}

func GetUserID(c *gin.Context) (int64, error) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, errors.New("user_id 不存在")
	}

	uid, ok := v.(int64)
	if !ok {
		return 0, errors.New("user_id 类型错误")
	}

	return uid, nil
}

// GetActor 当前请求的调用者，未登录时返回匿名 Actor
func GetActor(c *gin.Context) types.Actor {
	uid, err := GetUserID(c)
	if err != nil {
		return types.Actor{}
	}
	role, _ := c.Get(CtxRole)
	r, _ := role.(int)
	return types.Actor{UserID: uid, Role: r}
}
