package handler

import (
	gocontext "context"
	"strconv"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

type Post struct {
	Config          *config.Config
	PostService     service.IPostService
	FeedService     service.IFeedService
	PostStatService service.IPostStatService
	UploadService   service.IUploadService
}

func (p *Post) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, p.Config)

	pub := g.public.Group("/post")
	pub.GET("/list", context.Wrap(p.List))
	pub.GET("/user/:userId", context.Wrap(p.UserPosts))
	pub.GET("/:id", context.Wrap(p.Detail))
	pub.GET("/:id/stats", context.Wrap(p.Stats))

	u := g.user.Group("/post")
	u.POST("/publish", context.Wrap(p.Publish))
	u.POST("/:id/upload-image", context.Wrap(p.UploadImage))
	u.POST("/:id/upload-video", context.Wrap(p.UploadVideo))
	u.POST("/like", context.Wrap(p.interact(p.PostStatService.Like)))
	u.POST("/unlike", context.Wrap(p.interact(p.PostStatService.Unlike)))
	u.POST("/collect", context.Wrap(p.interact(p.PostStatService.Collect)))
	u.POST("/uncollect", context.Wrap(p.interact(p.PostStatService.Uncollect)))
	u.GET("/collections", context.Wrap(p.Collections))
	u.DELETE("/:id", context.Wrap(p.Delete))
}

func (p *Post) List(c *gin.Context) error {
	var q types.PostListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return response.Invalid("参数格式错误")
	}
	page, err := p.FeedService.ListPosts(c.Request.Context(), context.GetActor(c), &q)
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (p *Post) UserPosts(c *gin.Context) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	page, err := p.FeedService.ListUserPosts(c.Request.Context(), uid, queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (p *Post) Detail(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	detail, err := p.PostService.Detail(c.Request.Context(), context.GetActor(c), id)
	if err != nil {
		return err
	}
	response.Success(c, detail)
	return nil
}

func (p *Post) Stats(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	stat, err := p.PostStatService.GetStats(c.Request.Context(), id)
	if err != nil {
		return err
	}
	response.Success(c, stat)
	return nil
}

func (p *Post) Publish(c *gin.Context) error {
	var req types.PostPublishRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	vo, err := p.PostService.Publish(c.Request.Context(), context.GetActor(c), &req)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (p *Post) UploadImage(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return response.Invalid("请选择图片")
	}
	sortOrder, _ := strconv.Atoi(c.PostForm("sortOrder"))

	uid, _ := context.GetUserID(c)
	resp, err := p.UploadService.UploadPostImage(c.Request.Context(), uid, id, header, sortOrder)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (p *Post) UploadVideo(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return response.Invalid("请选择视频")
	}

	uid, _ := context.GetUserID(c)
	resp, err := p.UploadService.UploadPostVideo(c.Request.Context(), uid, id, header)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

// interact 点赞、收藏四个接口共用
func (p *Post) interact(fn func(ctx gocontext.Context, userID, postID int64) error) func(*gin.Context) error {
	return func(c *gin.Context) error {
		var req types.PostInteractRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		uid, _ := context.GetUserID(c)
		if err := fn(c.Request.Context(), uid, req.PostID); err != nil {
			return err
		}
		response.Success(c, nil)
		return nil
	}
}

func (p *Post) Collections(c *gin.Context) error {
	uid, _ := context.GetUserID(c)
	page, err := p.FeedService.ListCollections(c.Request.Context(), uid, queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (p *Post) Delete(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	if err := p.PostService.Delete(c.Request.Context(), uid, id); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}
