package service

import (
	"context"
	"strconv"
	"time"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var _ IPostStatService = (*PostStatService)(nil)

type IPostStatService interface {
	IncrementView(ctx context.Context, postID int64) error
	SetLikeCount(ctx context.Context, postID, n int64) error
	SetCommentCount(ctx context.Context, postID, n int64) error
	// RecountComments 以存活评论数重写 comment_count
	RecountComments(ctx context.Context, postID int64) error
	Like(ctx context.Context, userID, postID int64) error
	Unlike(ctx context.Context, userID, postID int64) error
	Collect(ctx context.Context, userID, postID int64) error
	Uncollect(ctx context.Context, userID, postID int64) error
	GetStats(ctx context.Context, postID int64) (*types.PostStat, error)
}

type PostStatService struct {
	Tx            *dao.TxManager
	PostDAO       *dao.PostDAO
	PostLikeDAO   *dao.PostLikeDAO
	CollectionDAO *dao.CollectionDAO
	CommentDAO    *dao.CommentDAO
	Cache         *cache.Storage
	Pusher        Pusher
	Notifier      INotificationService

	sf singleflight.Group `wire:"-"`
}

func (s *PostStatService) IncrementView(ctx context.Context, postID int64) error {
	if err := s.PostDAO.AddCounter(ctx, postID, "view_count", 1); err != nil {
		return storeErr(err, "")
	}
	s.publish(ctx, postID)
	return nil
}

func (s *PostStatService) SetLikeCount(ctx context.Context, postID, n int64) error {
	if err := s.PostDAO.SetCounter(ctx, postID, "like_count", n); err != nil {
		return storeErr(err, "")
	}
	s.publish(ctx, postID)
	return nil
}

func (s *PostStatService) SetCommentCount(ctx context.Context, postID, n int64) error {
	if err := s.PostDAO.SetCounter(ctx, postID, "comment_count", n); err != nil {
		return storeErr(err, "")
	}
	s.publish(ctx, postID)
	return nil
}

func (s *PostStatService) RecountComments(ctx context.Context, postID int64) error {
	n, err := s.CommentDAO.CountLiveByPost(ctx, postID)
	if err != nil {
		return storeErr(err, "")
	}
	return s.SetCommentCount(ctx, postID, n)
}

func (s *PostStatService) Like(ctx context.Context, userID, postID int64) error {
	post, err := s.PostDAO.GetLive(ctx, postID)
	if err != nil {
		return storeErr(err, "帖子不存在")
	}
	var like *models.PostLike
	err = s.Tx.Transaction(ctx, func(ctx context.Context) error {
		var created bool
		like, created, err = s.PostLikeDAO.Add(ctx, userID, postID)
		if err != nil || !created {
			return err
		}
		return s.PostDAO.AddCounter(ctx, postID, "like_count", 1)
	})
	if err != nil {
		return storeErr(err, "")
	}
	if like == nil {
		return nil
	}
	s.publish(ctx, postID)
	s.Notifier.SendLikeNotification(ctx, post.UserID, userID, postID, like.ID)
	return nil
}

func (s *PostStatService) Unlike(ctx context.Context, userID, postID int64) error {
	return s.toggle(ctx, postID, "like_count", -1, func(ctx context.Context) (bool, error) {
		return s.PostLikeDAO.Remove(ctx, userID, postID)
	})
}

func (s *PostStatService) Collect(ctx context.Context, userID, postID int64) error {
	return s.toggle(ctx, postID, "collect_count", 1, func(ctx context.Context) (bool, error) {
		return s.CollectionDAO.Add(ctx, userID, postID)
	})
}

func (s *PostStatService) Uncollect(ctx context.Context, userID, postID int64) error {
	return s.toggle(ctx, postID, "collect_count", -1, func(ctx context.Context) (bool, error) {
		return s.CollectionDAO.Remove(ctx, userID, postID)
	})
}

// toggle 关系边与计数器在同一事务内变更，边未变化时不动计数
func (s *PostStatService) toggle(ctx context.Context, postID int64, column string, delta int64, edge func(ctx context.Context) (bool, error)) error {
	if _, err := s.PostDAO.GetLive(ctx, postID); err != nil {
		return storeErr(err, "帖子不存在")
	}
	var changed bool
	err := s.Tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if changed, err = edge(ctx); err != nil || !changed {
			return err
		}
		return s.PostDAO.AddCounter(ctx, postID, column, delta)
	})
	if err != nil {
		return storeErr(err, "")
	}
	if changed {
		s.publish(ctx, postID)
	}
	return nil
}

// GetStats 先读缓存，未命中回源并回填
func (s *PostStatService) GetStats(ctx context.Context, postID int64) (*types.PostStat, error) {
	var stat types.PostStat
	hit, err := s.Cache.Get(ctx, cache.PostStatKey(postID), &stat)
	if err != nil {
		log.L.Warn("post stat cache read failed", zap.Int64("post_id", postID), zap.Error(err))
	}
	if hit {
		return &stat, nil
	}

	// 共享的回源不受单个调用方取消影响
	v, err, _ := s.sf.Do(strconv.FormatInt(postID, 10), func() (any, error) {
		return s.load(context.WithoutCancel(ctx), postID)
	})
	if err != nil {
		return nil, storeErr(err, "帖子不存在")
	}
	return v.(*types.PostStat), nil
}

func (s *PostStatService) load(ctx context.Context, postID int64) (*types.PostStat, error) {
	p, err := s.PostDAO.Stat(ctx, postID)
	if err != nil {
		return nil, err
	}
	stat := &types.PostStat{
		PostID:       postID,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		ViewCount:    p.ViewCount,
		CollectCount: p.CollectCount,
		Timestamp:    time.Now().UnixMilli(),
	}
	if err := s.Cache.Set(ctx, cache.PostStatKey(postID), stat, cache.PostStatTTL); err != nil {
		log.L.Warn("post stat cache write failed", zap.Int64("post_id", postID), zap.Error(err))
	}
	return stat, nil
}

// publish 刷新缓存并广播，失败不影响调用方
func (s *PostStatService) publish(ctx context.Context, postID int64) {
	stat, err := s.load(ctx, postID)
	if err != nil {
		log.L.Warn("post stat refresh failed", zap.Int64("post_id", postID), zap.Error(err))
		return
	}
	if s.Pusher == nil {
		return
	}
	s.Pusher.Broadcast(&types.WsFrame{
		Type:      types.FramePostStatUpdate,
		Data:      stat,
		Timestamp: stat.Timestamp,
	})
}
