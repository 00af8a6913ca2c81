package main

import (
	"fmt"
	"os"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/pkg/database"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/server"
	"github.com/3xSu/FilmComment/types"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	path := fmt.Sprintf("configs/config.%s.yaml", env)
	cfg := config.New(path)

	cliApp := &cli.App{
		Name:  "api-server",
		Usage: "film comment backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http server",
				Action: func(ctx *cli.Context) error {
					app, err := InitServer(cfg)
					if err != nil {
						return err
					}
					return server.Run(ctx, app)
				},
			},
			{
				Name:  "migrate",
				Usage: "create or update tables",
				Action: func(ctx *cli.Context) error {
					if err := database.Migrate(database.NewDB(cfg)); err != nil {
						return err
					}
					log.L.Info("migrate done")
					return nil
				},
			},
			{
				Name:  "cleanup",
				Usage: "run one retention sweep",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "entity",
						Usage:    "posts or comments",
						Required: true,
					},
				},
				Action: func(ctx *cli.Context) error {
					entity := ctx.String("entity")
					if entity != types.EntityPosts && entity != types.EntityComments {
						return cli.Exit("entity must be posts or comments", 2)
					}
					retention, err := InitRetention(cfg)
					if err != nil {
						return err
					}
					n, err := retention.Cleanup(ctx.Context, entity)
					if err != nil {
						return err
					}
					log.L.Info("cleanup done", zap.String("entity", entity), zap.Int("cleaned", n))
					return nil
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("command failed", zap.Error(err))
	}
}
