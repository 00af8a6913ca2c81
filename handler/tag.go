package handler

import (
	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"

	"github.com/gin-gonic/gin"
)

type Tag struct {
	Config     *config.Config
	TagService service.ITagService
}

func (t *Tag) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, t.Config).public.Group("/tag")
	g.GET("/list", context.Wrap(t.List))
	g.GET("/search", context.Wrap(t.Search))
	g.GET("/hot", context.Wrap(t.Hot))
	g.GET("/hot/batch", context.Wrap(t.BatchHotInfo))
	g.GET("/:id/hot", context.Wrap(t.HotInfo))
}

// List 关键字包含匹配
func (t *Tag) List(c *gin.Context) error {
	page, err := t.TagService.ListTags(c.Request.Context(), c.Query("keyword"), queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

// Search 前缀匹配
func (t *Tag) Search(c *gin.Context) error {
	page, err := t.TagService.ListTagsPrefix(c.Request.Context(), c.Query("keyword"), queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (t *Tag) Hot(c *gin.Context) error {
	list, err := t.TagService.HotTags(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		return err
	}
	response.Success(c, list)
	return nil
}

func (t *Tag) HotInfo(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	info, err := t.TagService.GetHotInfo(c.Request.Context(), id)
	if err != nil {
		return err
	}
	response.Success(c, info)
	return nil
}

func (t *Tag) BatchHotInfo(c *gin.Context) error {
	ids, err := queryIDs(c, "ids")
	if err != nil {
		return err
	}
	list, err := t.TagService.BatchGetHotInfo(c.Request.Context(), ids)
	if err != nil {
		return err
	}
	response.Success(c, list)
	return nil
}
