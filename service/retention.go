package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/lock"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	CommentCleanupSpec = "0 2 * * *"
	PostCleanupSpec    = "0 3 * * *"

	cleanupBatchSize = 500
)

var cleanupLockHold = 30 * time.Minute

// RetentionPolicies 运行期可调整的保留策略
type RetentionPolicies struct {
	mu  sync.RWMutex
	cfg config.RetentionConfig
}

func NewRetentionPolicies(cfg *config.RetentionConfig) *RetentionPolicies {
	return &RetentionPolicies{cfg: *cfg}
}

func (p *RetentionPolicies) Get(entity string) config.RetentionPolicy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if entity == types.EntityComments {
		return p.cfg.Comments
	}
	return p.cfg.Posts
}

func (p *RetentionPolicies) Set(entity string, policy config.RetentionPolicy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entity == types.EntityComments {
		p.cfg.Comments = policy
		return
	}
	p.cfg.Posts = policy
}

func cleanupSpec(entity string) string {
	if entity == types.EntityComments {
		return CommentCleanupSpec
	}
	return PostCleanupSpec
}

var _ IRetentionService = (*RetentionService)(nil)

type IRetentionService interface {
	// Cleanup 清理过期的软删数据，未启用或其他实例正在执行时返回 0
	Cleanup(ctx context.Context, entity string) (int, error)
	GetConfig(entity string) (*types.RetentionConfigVO, error)
	UpdateConfig(entity string, req *types.UpdateRetentionRequest) (*types.RetentionConfigVO, error)

	DeletePost(ctx context.Context, postID int64) (*types.ModerationVO, error)
	RestorePost(ctx context.Context, postID int64) (*types.ModerationVO, error)
	PurgePost(ctx context.Context, postID int64) error
	DeleteComment(ctx context.Context, commentID int64) (*types.ModerationVO, error)
	RestoreComment(ctx context.Context, commentID int64) (*types.ModerationVO, error)
	PurgeComment(ctx context.Context, commentID int64) error
}

type RetentionService struct {
	Tx              *dao.TxManager
	PostDAO         *dao.PostDAO
	PostImageDAO    *dao.PostImageDAO
	PostTagDAO      *dao.PostTagDAO
	PostLikeDAO     *dao.PostLikeDAO
	CollectionDAO   *dao.CollectionDAO
	CommentDAO      *dao.CommentDAO
	CommentImageDAO *dao.CommentImageDAO
	Locker          *lock.Locker
	Policies        *RetentionPolicies
	Stats           IPostStatService
	Tags            ITagService
}

func validEntity(entity string) error {
	if entity != types.EntityPosts && entity != types.EntityComments {
		return response.Invalid("未知的清理对象")
	}
	return nil
}

func (s *RetentionService) Cleanup(ctx context.Context, entity string) (int, error) {
	if err := validEntity(entity); err != nil {
		return 0, err
	}
	policy := s.Policies.Get(entity)
	if !policy.Enabled {
		log.L.Info("retention cleanup disabled", zap.String("entity", entity))
		return 0, nil
	}

	lease, err := s.Locker.TryAcquire(ctx, "lock:job:"+entity+":cleanup", 0, cleanupLockHold)
	if errors.Is(err, lock.ErrNotAcquired) {
		log.L.Info("retention cleanup running elsewhere", zap.String("entity", entity))
		return 0, nil
	}
	if err != nil {
		return 0, response.Transient("清理任务获取锁失败")
	}
	defer func() {
		if err := lease.ReleaseDetached(); err != nil {
			log.L.Warn("release cleanup lock failed", zap.String("key", lease.Key()), zap.Error(err))
		}
	}()

	before := models.Now().AddDate(0, 0, -policy.Days)
	start := time.Now()

	var n int
	if entity == types.EntityComments {
		n, err = s.cleanupComments(ctx, before)
	} else {
		n, err = s.cleanupPosts(ctx, before)
	}
	cleanupRemoved.WithLabelValues(entity).Add(float64(n))
	log.L.Info("retention cleanup finished",
		zap.String("entity", entity),
		zap.Int("days", policy.Days),
		zap.Int("cleaned", n),
		zap.Duration("took", time.Since(start)),
		zap.Error(err))
	return n, err
}

func (s *RetentionService) cleanupComments(ctx context.Context, before time.Time) (int, error) {
	total := 0
	affected := make(map[int64]struct{})
	for {
		expired, err := s.CommentDAO.Expired(ctx, before, cleanupBatchSize)
		if err != nil {
			return total, storeErr(err, "")
		}
		if len(expired) == 0 {
			break
		}
		ids := make([]int64, 0, len(expired))
		for _, c := range expired {
			ids = append(ids, c.CommentID)
			affected[c.PostID] = struct{}{}
		}
		err = s.Tx.Transaction(ctx, func(ctx context.Context) error {
			if _, err := s.CommentImageDAO.DeleteByCommentIDs(ctx, ids); err != nil {
				return err
			}
			_, err := s.CommentDAO.DeleteByIDs(ctx, ids)
			return err
		})
		if err != nil {
			return total, storeErr(err, "")
		}
		total += len(ids)
	}

	for postID := range affected {
		if err := s.Stats.RecountComments(ctx, postID); err != nil {
			log.L.Warn("recount comments after cleanup failed", zap.Int64("post_id", postID), zap.Error(err))
		}
	}
	return total, nil
}

func (s *RetentionService) cleanupPosts(ctx context.Context, before time.Time) (int, error) {
	total := 0
	failed := make(map[int64]struct{})
	var tagIDs []int64
	for {
		ids, err := s.PostDAO.ExpiredIDs(ctx, before, cleanupBatchSize+len(failed))
		if err != nil {
			return total, storeErr(err, "")
		}
		progressed := false
		for _, postID := range ids {
			if _, ok := failed[postID]; ok {
				continue
			}
			progressed = true
			tags, err := s.purgePost(ctx, postID)
			if err != nil {
				failed[postID] = struct{}{}
				log.L.Error("purge expired post failed", zap.Int64("post_id", postID), zap.Error(err))
				continue
			}
			tagIDs = append(tagIDs, tags...)
			total++
		}
		if !progressed {
			break
		}
	}
	s.Tags.InvalidateHot(ctx, tagIDs...)
	return total, nil
}

// purgePost 单个事务内删除帖子及其全部从属数据，返回受影响的标签
func (s *RetentionService) purgePost(ctx context.Context, postID int64) ([]int64, error) {
	var tagIDs []int64
	err := s.Tx.Transaction(ctx, func(ctx context.Context) error {
		commentIDs, err := s.CommentDAO.IDsByPost(ctx, postID)
		if err != nil {
			return err
		}
		if _, err := s.CommentImageDAO.DeleteByCommentIDs(ctx, commentIDs); err != nil {
			return err
		}
		if _, err := s.CommentDAO.DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if _, err := s.PostImageDAO.DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if tagIDs, err = s.PostTagDAO.TagIDsByPost(ctx, postID); err != nil {
			return err
		}
		if _, err := s.PostTagDAO.DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if _, err := s.PostLikeDAO.DeleteByPost(ctx, postID); err != nil {
			return err
		}
		if _, err := s.CollectionDAO.DeleteByPost(ctx, postID); err != nil {
			return err
		}
		_, err = s.PostDAO.Purge(ctx, postID)
		return err
	})
	return tagIDs, err
}

func (s *RetentionService) GetConfig(entity string) (*types.RetentionConfigVO, error) {
	if err := validEntity(entity); err != nil {
		return nil, err
	}
	policy := s.Policies.Get(entity)
	vo := &types.RetentionConfigVO{Days: policy.Days, Enabled: policy.Enabled}
	if sched, err := cron.ParseStandard(cleanupSpec(entity)); err == nil {
		vo.NextCleanupTime = sched.Next(time.Now())
	}
	return vo, nil
}

func (s *RetentionService) UpdateConfig(entity string, req *types.UpdateRetentionRequest) (*types.RetentionConfigVO, error) {
	if err := validEntity(entity); err != nil {
		return nil, err
	}
	policy := s.Policies.Get(entity)
	if req.Days != nil {
		if *req.Days <= 0 {
			return nil, response.Invalid("保留天数必须大于 0")
		}
		policy.Days = *req.Days
	}
	if req.Enabled != nil {
		policy.Enabled = *req.Enabled
	}
	s.Policies.Set(entity, policy)
	log.L.Info("retention config updated",
		zap.String("entity", entity), zap.Int("days", policy.Days), zap.Bool("enabled", policy.Enabled))
	return s.GetConfig(entity)
}

func postModeration(p *models.Post) *types.ModerationVO {
	return &types.ModerationVO{ID: p.PostID, IsDeleted: p.IsDeleted == 1, DeleteTime: p.DeleteTime}
}

func commentModeration(c *models.Comment) *types.ModerationVO {
	return &types.ModerationVO{ID: c.CommentID, IsDeleted: c.IsDeleted == 1, DeleteTime: c.DeleteTime}
}

func (s *RetentionService) DeletePost(ctx context.Context, postID int64) (*types.ModerationVO, error) {
	return s.togglePost(ctx, postID, s.PostDAO.SoftDelete)
}

func (s *RetentionService) RestorePost(ctx context.Context, postID int64) (*types.ModerationVO, error) {
	return s.togglePost(ctx, postID, s.PostDAO.Restore)
}

// togglePost 状态已一致时直接返回当前状态
func (s *RetentionService) togglePost(ctx context.Context, postID int64, apply func(context.Context, int64) (int64, error)) (*types.ModerationVO, error) {
	if _, err := s.PostDAO.GetAny(ctx, postID); err != nil {
		return nil, storeErr(err, "帖子不存在")
	}
	if _, err := apply(ctx, postID); err != nil {
		return nil, storeErr(err, "")
	}
	post, err := s.PostDAO.GetAny(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "帖子不存在")
	}
	if tags, err := s.PostTagDAO.TagIDsByPost(ctx, postID); err == nil {
		s.Tags.InvalidateHot(ctx, tags...)
	}
	return postModeration(post), nil
}

func (s *RetentionService) PurgePost(ctx context.Context, postID int64) error {
	if _, err := s.PostDAO.GetAny(ctx, postID); err != nil {
		return storeErr(err, "帖子不存在")
	}
	tags, err := s.purgePost(ctx, postID)
	if err != nil {
		log.L.Error("purge post failed", zap.Int64("post_id", postID), zap.Error(err))
		return storeErr(err, "")
	}
	s.Tags.InvalidateHot(ctx, tags...)
	cleanupRemoved.WithLabelValues(types.EntityPosts).Inc()
	return nil
}

func (s *RetentionService) DeleteComment(ctx context.Context, commentID int64) (*types.ModerationVO, error) {
	return s.toggleComment(ctx, commentID, s.CommentDAO.SoftDelete)
}

func (s *RetentionService) RestoreComment(ctx context.Context, commentID int64) (*types.ModerationVO, error) {
	return s.toggleComment(ctx, commentID, s.CommentDAO.Restore)
}

func (s *RetentionService) toggleComment(ctx context.Context, commentID int64, apply func(context.Context, int64) (int64, error)) (*types.ModerationVO, error) {
	if _, err := s.CommentDAO.GetAny(ctx, commentID); err != nil {
		return nil, storeErr(err, "评论不存在")
	}
	n, err := apply(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	comment, err := s.CommentDAO.GetAny(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "评论不存在")
	}
	if n > 0 {
		if err := s.Stats.RecountComments(ctx, comment.PostID); err != nil {
			log.L.Warn("recount comments failed", zap.Int64("post_id", comment.PostID), zap.Error(err))
		}
	}
	return commentModeration(comment), nil
}

// PurgeComment 顶级评论连同回复一起删除
func (s *RetentionService) PurgeComment(ctx context.Context, commentID int64) error {
	comment, err := s.CommentDAO.GetAny(ctx, commentID)
	if err != nil {
		return storeErr(err, "评论不存在")
	}
	var removed int64
	err = s.Tx.Transaction(ctx, func(ctx context.Context) error {
		ids := []int64{commentID}
		if comment.ParentID == 0 {
			replies, err := s.CommentDAO.FindAll(ctx, "parent_id = ?", commentID)
			if err != nil {
				return err
			}
			for _, r := range replies {
				ids = append(ids, r.CommentID)
			}
		}
		if _, err := s.CommentImageDAO.DeleteByCommentIDs(ctx, ids); err != nil {
			return err
		}
		removed, err = s.CommentDAO.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return storeErr(err, "")
	}
	cleanupRemoved.WithLabelValues(types.EntityComments).Add(float64(removed))
	if err := s.Stats.RecountComments(ctx, comment.PostID); err != nil {
		log.L.Warn("recount comments failed", zap.Int64("post_id", comment.PostID), zap.Error(err))
	}
	return nil
}
