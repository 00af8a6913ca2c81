package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/llm"
	"github.com/3xSu/FilmComment/pkg/lock"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
)

// 生成锁参数，测试中可调小
var (
	summaryLockWait = 3 * time.Second
	summaryLockHold = 90 * time.Second
)

const defaultSummaryMaxLength = 200

var _ ISummaryService = (*SummaryService)(nil)

type ISummaryService interface {
	Summarize(ctx context.Context, actor types.Actor, req *types.SummaryRequest) (*types.SummaryVO, error)
	CheckAvailability(ctx context.Context) *types.AIHealthVO
}

type SummaryService struct {
	MovieDAO    *dao.MovieDAO
	PostDAO     *dao.PostDAO
	AiRecordDAO *dao.AiRecordDAO
	Locker      *lock.Locker
	Model       Summarizer
	Config      *config.AIConfig
}

func summaryLockKey(title string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(title))
	return fmt.Sprintf("lock:movie:summary:%d", h.Sum32())
}

// countTypes 未指定类型时统计普通帖和深度讨论帖
func countTypes(postType *int) []int {
	if postType == nil {
		return []int{types.PostTypeNormal, types.PostTypeDeepSpoiler}
	}
	return []int{*postType}
}

func typeDesc(postType *int) string {
	if postType == nil {
		return ""
	}
	return types.PostTypeDesc(*postType)
}

func (s *SummaryService) Summarize(ctx context.Context, actor types.Actor, req *types.SummaryRequest) (*types.SummaryVO, error) {
	if req.PostType != nil && !types.ValidPostType(*req.PostType) {
		return nil, response.Invalid("帖子类型不合法")
	}
	movie, err := s.MovieDAO.GetByID(ctx, req.MovieID)
	if err != nil {
		return nil, storeErr(err, "电影不存在")
	}
	// 二创帖不生成总结
	if req.PostType != nil && types.IsCreativePostType(*req.PostType) {
		return &types.SummaryVO{
			MovieID:    movie.MovieID,
			MovieTitle: movie.Title,
			PostType:   *req.PostType,
			CreateTime: models.Now(),
		}, nil
	}

	threshold := s.Config.Summary.UpdateThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold <= 0 {
		return nil, response.Invalid("更新阈值必须大于 0")
	}

	n, err := s.PostDAO.Count(ctx, dao.PostFilter{MovieID: movie.MovieID, PostTypes: countTypes(req.PostType)})
	if err != nil {
		return nil, storeErr(err, "")
	}
	if n < int64(threshold) {
		log.L.Info("not enough posts for summary",
			zap.Int64("movie_id", movie.MovieID), zap.Int64("posts", n), zap.Int("threshold", threshold))
		return s.advisory(movie, req.PostType, n), nil
	}

	postType := 0
	if req.PostType != nil {
		postType = *req.PostType
	}
	latest, err := s.AiRecordDAO.Latest(ctx, movie.MovieID, postType)
	if err != nil {
		return nil, storeErr(err, "")
	}

	onThreshold := n%int64(threshold) == 0
	if !req.ForceRefresh && latest != nil {
		fresh := latest.CreatedAt.After(models.Now().Add(-s.Config.CacheWindow()))
		if fresh || !onThreshold || n == latest.PostCount {
			return s.recordVO(ctx, latest, movie, req.PostType), nil
		}
	}
	if !onThreshold {
		if latest != nil {
			return s.recordVO(ctx, latest, movie, req.PostType), nil
		}
		return s.advisory(movie, req.PostType, n), nil
	}

	return s.regenerate(ctx, actor, movie, req, postType, n, threshold)
}

func (s *SummaryService) regenerate(ctx context.Context, actor types.Actor, movie *models.Movie, req *types.SummaryRequest, postType int, n int64, threshold int) (*types.SummaryVO, error) {
	lease, err := s.Locker.TryAcquire(ctx, summaryLockKey(movie.Title), summaryLockWait, summaryLockHold)
	if errors.Is(err, lock.ErrNotAcquired) {
		summaryGenerations.WithLabelValues("busy").Inc()
		latest, err := s.AiRecordDAO.Latest(ctx, movie.MovieID, postType)
		if err != nil {
			return nil, storeErr(err, "")
		}
		if latest != nil {
			return s.recordVO(ctx, latest, movie, req.PostType), nil
		}
		return &types.SummaryVO{
			MovieID:        movie.MovieID,
			MovieTitle:     movie.Title,
			PostType:       postType,
			SummaryContent: fmt.Sprintf("电影《%s》的AI总结正在生成中，请稍后再试。", movie.Title),
			SummaryStyle:   llm.StyleConcise,
			PostCount:      n,
			CreateTime:     models.Now(),
		}, nil
	}
	if err != nil {
		return nil, response.Transient("AI 总结服务繁忙，请稍后重试")
	}
	defer func() {
		if err := lease.ReleaseDetached(); err != nil {
			log.L.Warn("release summary lock failed", zap.String("key", lease.Key()), zap.Error(err))
		}
	}()

	// 其他实例可能已经生成
	latest, err := s.AiRecordDAO.Latest(ctx, movie.MovieID, postType)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if latest != nil && latest.PostCount == n && !req.ForceRefresh {
		return s.recordVO(ctx, latest, movie, req.PostType), nil
	}

	sampleSize := s.Config.CommentSampleSize
	samples, err := s.PostDAO.SampleForSummary(ctx, movie.MovieID, countTypes(req.PostType), sampleSize)
	if err != nil {
		return nil, storeErr(err, "")
	}
	texts := make([]string, 0, len(samples))
	for _, p := range samples {
		if text := strings.TrimSpace(p.Title + " " + p.Content); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return &types.SummaryVO{
			MovieID:    movie.MovieID,
			MovieTitle: movie.Title,
			PostType:   postType,
			SummaryContent: fmt.Sprintf("电影《%s》的%s帖子目前还没有足够的评论数据来生成AI总结。当前共有%d条帖子，请等待更多用户参与讨论。",
				movie.Title, typeDesc(req.PostType), n),
			SummaryStyle: llm.StyleConcise,
			PostCount:    n,
			CreateTime:   models.Now(),
		}, nil
	}

	style := req.SummaryStyle
	if style != llm.StyleDetailed {
		style = llm.StyleConcise
	}
	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = defaultSummaryMaxLength
	}

	content, err := s.Model.Summarize(ctx, movie.Title, strings.Join(texts, "\n"), style, maxLength)
	if err != nil {
		summaryGenerations.WithLabelValues("fallback").Inc()
		log.L.Error("ai summary generation failed",
			zap.Int64("movie_id", movie.MovieID), zap.Int("post_type", postType), zap.Error(err))
		return &types.SummaryVO{
			MovieID:    movie.MovieID,
			MovieTitle: movie.Title,
			PostType:   postType,
			SummaryContent: fmt.Sprintf("基于%d条%s用户评论，电影《%s》的讨论主要集中在剧情、演技和视觉效果等方面。观众普遍认为这是一部值得观看的作品。",
				len(texts), typeDesc(req.PostType), movie.Title),
			SummaryStyle: style,
			PostCount:    n,
			CreateTime:   models.Now(),
		}, nil
	}

	version := 1
	if latest != nil {
		version = latest.Version + 1
	}
	record := &models.AiRecord{
		UserID:    actor.UserID,
		MovieID:   movie.MovieID,
		PostType:  postType,
		Content:   content,
		PostCount: n,
		Version:   version,
		Threshold: threshold,
	}
	if err := s.AiRecordDAO.Create(ctx, record); err != nil {
		return nil, storeErr(err, "")
	}
	summaryGenerations.WithLabelValues("generated").Inc()
	log.L.Info("ai summary generated",
		zap.Int64("record_id", record.RecordID),
		zap.Int("version", version),
		zap.Int64("post_count", n))

	vo := s.recordVO(ctx, record, movie, req.PostType)
	vo.SummaryStyle = style
	return vo, nil
}

// advisory 帖子数不足时的提示，不落库
func (s *SummaryService) advisory(movie *models.Movie, postType *int, n int64) *types.SummaryVO {
	var msg string
	if n == 0 {
		msg = fmt.Sprintf("当前还没有关于这部电影的%s帖子，快来发表第一个帖子吧！", typeDesc(postType))
	} else {
		msg = fmt.Sprintf("当前%s帖子数量(%d条)较少，快来发表更多帖子参与讨论吧！", typeDesc(postType), n)
	}
	vo := &types.SummaryVO{
		MovieID:        movie.MovieID,
		MovieTitle:     movie.Title,
		SummaryContent: msg,
		SummaryStyle:   llm.StyleConcise,
		PostCount:      n,
		CreateTime:     models.Now(),
	}
	if postType != nil {
		vo.PostType = *postType
	}
	return vo
}

func (s *SummaryService) recordVO(ctx context.Context, r *models.AiRecord, movie *models.Movie, postType *int) *types.SummaryVO {
	return &types.SummaryVO{
		RecordID:       r.RecordID,
		MovieID:        r.MovieID,
		MovieTitle:     movie.Title,
		PostType:       r.PostType,
		SummaryContent: r.Content,
		SummaryStyle:   llm.StyleConcise,
		Version:        r.Version,
		PostCount:      r.PostCount,
		CreateTime:     r.CreatedAt,
		Stats:          s.stats(ctx, movie.MovieID, postType),
	}
}

// stats 统计失败时返回 nil
func (s *SummaryService) stats(ctx context.Context, movieID int64, postType *int) *types.SummaryStats {
	count := func(postTypes ...int) (int64, error) {
		return s.PostDAO.Count(ctx, dao.PostFilter{MovieID: movieID, PostTypes: postTypes})
	}
	total, err := count(countTypes(postType)...)
	if err != nil {
		log.L.Warn("summary stats failed", zap.Int64("movie_id", movieID), zap.Error(err))
		return nil
	}
	stats := &types.SummaryStats{TotalPosts: total}
	if postType == nil || *postType == types.PostTypeNormal {
		if stats.NoSpoilerPosts, err = count(types.PostTypeNormal); err != nil {
			return nil
		}
	}
	if postType == nil || *postType == types.PostTypeDeepSpoiler {
		if stats.SpoilerPosts, err = count(types.PostTypeDeepSpoiler); err != nil {
			return nil
		}
	}
	return stats
}

func (s *SummaryService) CheckAvailability(ctx context.Context) *types.AIHealthVO {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Model.Ping(ctx); err != nil {
		log.L.Warn("ai service unavailable", zap.Error(err))
		return &types.AIHealthVO{Available: false}
	}
	return &types.AIHealthVO{Available: true}
}
