package handler

import (
	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

// Relation 想看/看过与评分
type Relation struct {
	Config          *config.Config
	RelationService service.IRelationService
	RatingService   service.IRatingService
}

func (h *Relation) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, h.Config).user.Group("/movie/relation")
	g.POST("/mark", context.Wrap(h.Mark))
	g.DELETE("/:movieId", context.Wrap(h.Unmark))
	g.GET("/list", context.Wrap(h.List))
	g.GET("/stats", context.Wrap(h.Stats))
	g.GET("/check/:movieId", context.Wrap(h.Check))

	g.POST("/rating", context.Wrap(h.SubmitRating))
	g.GET("/rating/:movieId", context.Wrap(h.GetRating))
	g.GET("/ratings", context.Wrap(h.ListRatings))
}

func (h *Relation) Mark(c *gin.Context) error {
	var req types.MarkRelationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	vo, err := h.RelationService.Mark(c.Request.Context(), uid, &req)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (h *Relation) Unmark(c *gin.Context) error {
	movieID, err := pathID(c, "movieId")
	if err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	if err := h.RelationService.Unmark(c.Request.Context(), uid, movieID); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}

func (h *Relation) List(c *gin.Context) error {
	uid, _ := context.GetUserID(c)
	list, err := h.RelationService.List(c.Request.Context(), uid, queryInt(c, "relationType", 0))
	if err != nil {
		return err
	}
	response.Success(c, list)
	return nil
}

func (h *Relation) Stats(c *gin.Context) error {
	uid, _ := context.GetUserID(c)
	stats, err := h.RelationService.Stats(c.Request.Context(), uid)
	if err != nil {
		return err
	}
	response.Success(c, stats)
	return nil
}

func (h *Relation) Check(c *gin.Context) error {
	movieID, err := pathID(c, "movieId")
	if err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	vo, err := h.RelationService.Check(c.Request.Context(), uid, movieID)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (h *Relation) SubmitRating(c *gin.Context) error {
	var req types.SubmitRatingRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	vo, err := h.RatingService.SubmitRating(c.Request.Context(), uid, &req)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (h *Relation) GetRating(c *gin.Context) error {
	movieID, err := pathID(c, "movieId")
	if err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	vo, err := h.RatingService.GetRating(c.Request.Context(), uid, movieID)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (h *Relation) ListRatings(c *gin.Context) error {
	uid, _ := context.GetUserID(c)
	list, err := h.RatingService.ListUserRatings(c.Request.Context(), uid)
	if err != nil {
		return err
	}
	response.Success(c, list)
	return nil
}
