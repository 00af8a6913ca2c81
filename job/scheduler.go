package job

import (
	"context"
	"time"

	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout 单次清理的最长执行时间，与清理租约持有时间一致
var runTimeout = 30 * time.Minute

// Scheduler 每日凌晨执行评论、帖子的过期清理
type Scheduler struct {
	cron      *cron.Cron
	Retention service.IRetentionService
}

func NewScheduler(retention service.IRetentionService) (*Scheduler, error) {
	logger := cronLogger{l: log.L.Sugar()}
	s := &Scheduler{
		cron:      cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		Retention: retention,
	}
	if _, err := s.cron.AddFunc(service.CommentCleanupSpec, s.task(types.EntityComments)); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(service.PostCleanupSpec, s.task(types.EntityPosts)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) task(entity string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		start := time.Now()
		n, err := s.Retention.Cleanup(ctx, entity)
		if err != nil {
			log.L.Error("scheduled cleanup failed", zap.String("entity", entity), zap.Error(err))
			return
		}
		log.L.Info("scheduled cleanup done", zap.String("entity", entity), zap.Int("cleaned", n), zap.Duration("cost", time.Since(start)))
	}
}

// Start 阻塞直到 ctx 结束，退出前等待进行中的任务完成
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	log.L.Info("cleanup scheduler started", zap.Int("jobs", len(s.cron.Entries())))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	log.L.Info("cleanup scheduler stopped")
	return nil
}

type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
