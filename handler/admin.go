package handler

import (
	gocontext "context"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

// Admin 帖子、评论的管理端软删、恢复、永久删除与定时清理
type Admin struct {
	Config           *config.Config
	RetentionService service.IRetentionService
}

type moderation struct {
	entity  string
	del     func(ctx gocontext.Context, id int64) (*types.ModerationVO, error)
	restore func(ctx gocontext.Context, id int64) (*types.ModerationVO, error)
	purge   func(ctx gocontext.Context, id int64) error
}

func (a *Admin) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, a.Config)

	a.mount(g.admin.Group("/post"), moderation{
		entity:  types.EntityPosts,
		del:     a.RetentionService.DeletePost,
		restore: a.RetentionService.RestorePost,
		purge:   a.RetentionService.PurgePost,
	})
	a.mount(g.admin.Group("/comment"), moderation{
		entity:  types.EntityComments,
		del:     a.RetentionService.DeleteComment,
		restore: a.RetentionService.RestoreComment,
		purge:   a.RetentionService.PurgeComment,
	})
}

func (a *Admin) mount(g *gin.RouterGroup, m moderation) {
	g.DELETE("/:id", context.Wrap(func(c *gin.Context) error {
		return moderate(c, m.del)
	}))
	g.PUT("/:id/restore", context.Wrap(func(c *gin.Context) error {
		return moderate(c, m.restore)
	}))
	g.DELETE("/:id/permanent", context.Wrap(func(c *gin.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return err
		}
		if err := m.purge(c.Request.Context(), id); err != nil {
			return err
		}
		response.Success(c, nil)
		return nil
	}))

	g.POST("/cleanup/trigger", context.Wrap(func(c *gin.Context) error {
		n, err := a.RetentionService.Cleanup(c.Request.Context(), m.entity)
		if err != nil {
			return err
		}
		response.Success(c, types.CleanupResultVO{CleanedCount: n})
		return nil
	}))
	g.GET("/cleanup/config", context.Wrap(func(c *gin.Context) error {
		vo, err := a.RetentionService.GetConfig(m.entity)
		if err != nil {
			return err
		}
		response.Success(c, vo)
		return nil
	}))
	g.PUT("/cleanup/config", context.Wrap(func(c *gin.Context) error {
		var req types.UpdateRetentionRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		vo, err := a.RetentionService.UpdateConfig(m.entity, &req)
		if err != nil {
			return err
		}
		response.Success(c, vo)
		return nil
	}))
}

func moderate(c *gin.Context, fn func(gocontext.Context, int64) (*types.ModerationVO, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	vo, err := fn(c.Request.Context(), id)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}
