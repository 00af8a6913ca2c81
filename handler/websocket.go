package handler

import (
	"net/http"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/jwt"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocket 通知推送连接
type WebSocket struct {
	Config *config.Config
	Hub    *socket.Hub
}

func (h *WebSocket) RegisterRouter(r gin.IRouter) {
	r.GET("/ws/notification", h.Connect)
}

// Connect 先完成握手，token 无效时以 1008 关闭
func (h *WebSocket) Connect(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.L.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	claims, err := jwt.ParseToken([]byte(h.Config.Jwt.Secret), jwt.TypeAccess, c.Query("token"))
	if err != nil {
		socket.Reject(conn, "invalid token")
		return
	}
	h.Hub.Serve(claims.UserID, conn)
}
