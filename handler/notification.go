package handler

import (
	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"

	"github.com/gin-gonic/gin"
)

type Notification struct {
	Config              *config.Config
	NotificationService service.INotificationService
}

func (n *Notification) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, n.Config).user.Group("/notification")
	g.GET("/list", context.Wrap(n.List))
	g.GET("/unread-count", context.Wrap(n.UnreadCount))
	g.PUT("/:id/read", context.Wrap(n.MarkRead))
	g.PUT("/read-all", context.Wrap(n.MarkAllRead))
}

func (n *Notification) List(c *gin.Context) error {
	uid, _ := context.GetUserID(c)
	page, err := n.NotificationService.List(c.Request.Context(), uid, queryInt64(c, "cursor"), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	response.Success(c, page)
	return nil
}

func (n *Notification) UnreadCount(c *gin.Context) error {
	uid, _ := context.GetUserID(c)
	vo, err := n.NotificationService.UnreadCount(c.Request.Context(), uid)
	if err != nil {
		return err
	}
	response.Success(c, vo)
	return nil
}

func (n *Notification) MarkRead(c *gin.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	uid, _ := context.GetUserID(c)
	if err := n.NotificationService.MarkRead(c.Request.Context(), uid, id); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}

func (n *Notification) MarkAllRead(c *gin.Context) error {
	uid, _ := context.GetUserID(c)
	if err := n.NotificationService.MarkAllRead(c.Request.Context(), uid); err != nil {
		return err
	}
	response.Success(c, nil)
	return nil
}
