package server

import (
	"github.com/3xSu/FilmComment/handler"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth         *handler.Auth
	Movie        *handler.Movie
	Relation     *handler.Relation
	Post         *handler.Post
	Comment      *handler.Comment
	Tag          *handler.Tag
	AI           *handler.AI
	Notification *handler.Notification
	Admin        *handler.Admin
	WebSocket    *handler.WebSocket
}

type router interface {
	RegisterRouter(r gin.IRouter)
}

func (h *Handlers) all() []router {
	return []router{
		h.Auth,
		h.Movie,
		h.Relation,
		h.Post,
		h.Comment,
		h.Tag,
		h.AI,
		h.Notification,
		h.Admin,
		h.WebSocket,
	}
}
