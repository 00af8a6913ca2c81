package handler

import (
	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

type AI struct {
	Config         *config.Config
	SummaryService service.ISummaryService
}

func (a *AI) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, a.Config)
	g.user.GET("/ai/movie/:id/summary", context.Wrap(a.Summary))
	g.public.GET("/ai/health", context.Wrap(a.Health))
}

func (a *AI) Summary(c *gin.Context) error {
	movieID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	postType, err := queryIntPtr(c, "postType")
	if err != nil {
		return err
	}
	threshold, err := queryIntPtr(c, "threshold")
	if err != nil {
		return err
	}

	req := &types.SummaryRequest{
		MovieID:      movieID,
		PostType:     postType,
		Threshold:    threshold,
		ForceRefresh: c.Query("forceRefresh") == "true",
		SummaryStyle: queryInt(c, "summaryStyle", 0),
		MaxLength:    queryInt(c, "maxLength", 0),
	}
	vo, err := a.SummaryService.Summarize(c.Request.Context(), context.GetActor(c), req)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (a *AI) Health(c *gin.Context) error {
	response.Success(c, a.SummaryService.CheckAvailability(c.Request.Context()))
	return nil
}
