package handler

import (
	"strconv"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

type Comment struct {
	Config         *config.Config
	CommentService service.ICommentService
	FeedService    service.IFeedService
	UploadService  service.IUploadService
}

func (h *Comment) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, h.Config)
	g.public.GET("/comment/list", context.Wrap(h.List))
	g.public.GET("/comment/replies", context.Wrap(h.Replies))

	g.user.POST("/comment/publish", context.Wrap(h.Publish))
	g.user.DELETE("/comment/:id", context.Wrap(h.Delete))
	g.user.POST("/comment/:id/upload-image", context.Wrap(h.UploadImage))
}

func (h *Comment) List(c *gin.Context) error {
	postID := queryInt64(c, "postId")
	if postID <= 0 {
		return response.Invalid("postId 不能为空")
	}
	page, err := h.FeedService.ListComments(c.Request.Context(), postID, queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (h *Comment) Replies(c *gin.Context) error {
	commentID := queryInt64(c, "commentId")
	if commentID <= 0 {
		return response.Invalid("commentId 不能为空")
	}
	page, err := h.FeedService.ListReplies(c.Request.Context(), commentID, queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (h *Comment) Publish(c *gin.Context) error {
	var req types.PublishCommentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	vo, err := h.CommentService.Publish(c.Request.Context(), uid, &req)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (h *Comment) Delete(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	if err := h.CommentService.Delete(c.Request.Context(), uid, id); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}

func (h *Comment) UploadImage(c *gin.Context) error {
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
	resp, err := h.UploadService.UploadCommentImage(c.Request.Context(), uid, id, header, sortOrder)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}
