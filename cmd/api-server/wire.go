//go:build wireinject
// +build wireinject

package main

import (
	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/handler"
	"github.com/3xSu/FilmComment/job"
	"github.com/3xSu/FilmComment/pkg/client"
	"github.com/3xSu/FilmComment/pkg/database"
	"github.com/3xSu/FilmComment/pkg/llm"
	"github.com/3xSu/FilmComment/pkg/lock"
	"github.com/3xSu/FilmComment/pkg/oss"
	"github.com/3xSu/FilmComment/pkg/server"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/socket"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	database.NewDB,
	client.NewRedisClient,
	lock.NewLocker,
	config.ProvideJwtConfig,
	config.ProvideOssConfig,
	config.ProvideOllamaConfig,
	config.ProvideAIConfig,
	config.ProvideRetentionConfig,

	oss.NewStore,
	wire.Bind(new(service.ObjectStore), new(*oss.Store)),
	llm.NewClient,
	wire.Bind(new(service.Summarizer), new(*llm.Client)),

	socket.ProviderSet,
	wire.Bind(new(service.Pusher), new(*socket.Hub)),

	dao.ProviderSet,
	cache.ProviderSet,
	service.ProviderSet,
)

func InitServer(cfg *config.Config) (*server.AppProvider, error) {
	wire.Build(
		infraSet,
		job.ProviderSet,
		server.NewGinEngine,

		wire.Struct(new(handler.Auth), "*"),
		wire.Struct(new(handler.Movie), "*"),
		wire.Struct(new(handler.Relation), "*"),
		wire.Struct(new(handler.Post), "*"),
		wire.Struct(new(handler.Comment), "*"),
		wire.Struct(new(handler.Tag), "*"),
		wire.Struct(new(handler.AI), "*"),
		wire.Struct(new(handler.Notification), "*"),
		wire.Struct(new(handler.Admin), "*"),
		wire.Struct(new(handler.WebSocket), "*"),

		wire.Struct(new(server.AppProvider), "*"),
		wire.Struct(new(server.Handlers), "*"),
	)
	return nil, nil
}

func InitRetention(cfg *config.Config) (service.IRetentionService, error) {
	wire.Build(infraSet)
	return nil, nil
}
