package handler

import (
	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
)

type Auth struct {
	Config      *config.Config
	AuthService service.IAuthService
}

func (a *Auth) RegisterRouter(r gin.IRouter) {
	g := newRoutes(r, a.Config)
	g.public.POST("/register", context.Wrap(a.Register))
	g.public.POST("/login", context.Wrap(a.Login))
	g.user.GET("/profile", context.Wrap(a.Profile))
}

func (a *Auth) Register(c *gin.Context) error {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	resp, err := a.AuthService.Register(c.Request.Context(), &req)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (a *Auth) Login(c *gin.Context) error {
	var req types.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	resp, err := a.AuthService.Login(c.Request.Context(), &req)
	if err != nil {
		return err
	}
	response.Success(c, resp)
	return nil
}

func (a *Auth) Profile(c *gin.Context) error {
	uid, err := context.GetUserID(c)
	if err != nil {
		return response.Unauthorized("未登录")
	}
	profile, err := a.AuthService.Profile(c.Request.Context(), uid)
	if err != nil {
		return err
	}
	response.Success(c, profile)
	return nil
}
