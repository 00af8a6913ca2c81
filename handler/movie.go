package handler

import (
	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

type Movie struct {
	Config       *config.Config
	MovieService service.IMovieService
}

func (m *Movie) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, m.Config)
	g.public.GET("/movies/page", context.Wrap(m.Page))
	g.public.GET("/movies/search", context.Wrap(m.Search))
	g.public.GET("/movies/:id", context.Wrap(m.Detail))

	g.admin.POST("/movie", context.Wrap(m.Create))
	g.admin.PUT("/movie/:id", context.Wrap(m.Update))
	g.admin.DELETE("/movie/:id", context.Wrap(m.Delete))
}

func (m *Movie) Page(c *gin.Context) error {
	page, err := m.MovieService.Page(c.Request.Context(), queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (m *Movie) Search(c *gin.Context) error {
	var q types.MovieSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return response.Invalid("参数格式错误")
	}
	page, err := m.MovieService.Search(c.Request.Context(), &q)
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (m *Movie) Detail(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := m.MovieService.Detail(c.Request.Context(), context.GetActor(c), id)
	if err != nil {
		return err
	}
	response.Success(c, detail)
	return nil
}

func (m *Movie) Create(c *gin.Context) error {
	var req types.MovieSaveRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	movie, err := m.MovieService.Create(c.Request.Context(), &req)
	if err != nil {
		return err
	}
	response.Success(c, movie)
	return nil
}

func (m *Movie) Update(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req types.MovieSaveRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	movie, err := m.MovieService.Update(c.Request.Context(), id, &req)
	if err != nil {
		return err
	}
	response.Success(c, movie)
	return nil
}

func (m *Movie) Delete(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := m.MovieService.Delete(c.Request.Context(), id); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}
