package service

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
)

// 乐观锁重试参数，测试中可调小
var (
	ratingMaxAttempts = 5
	ratingBaseBackoff = 100 * time.Millisecond
	ratingMaxBackoff  = 5 * time.Second
)

var _ IRatingService = (*RatingService)(nil)

type IRatingService interface {
	SubmitRating(ctx context.Context, userID int64, req *types.SubmitRatingRequest) (*types.RatingVO, error)
	GetRating(ctx context.Context, userID, movieID int64) (*types.RatingVO, error)
	ListUserRatings(ctx context.Context, userID int64) ([]types.RatingVO, error)
}

type RatingService struct {
	MovieDAO  *dao.MovieDAO
	RatingDAO *dao.RatingDAO
	Catalog   *MovieCatalog
}

func validRatingValue(v float64) bool {
	if v < 0 || v > 5 || math.IsNaN(v) {
		return false
	}
	scaled := v * 10
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

func (s *RatingService) SubmitRating(ctx context.Context, userID int64, req *types.SubmitRatingRequest) (*types.RatingVO, error) {
	if !validRatingValue(req.RatingValue) {
		return nil, response.Invalid("评分必须在 0 到 5 之间，精度 0.1")
	}
	if utf8.RuneCountInString(req.RatingComment) > 500 {
		return nil, response.Invalid("评分短评不能超过 500 字")
	}

	movie, err := s.MovieDAO.GetByID(ctx, req.MovieID)
	if err != nil {
		return nil, storeErr(err, "电影不存在")
	}

	rating := &models.Rating{
		UserID:        userID,
		MovieID:       req.MovieID,
		RatingValue:   math.Round(req.RatingValue*10) / 10,
		RatingComment: req.RatingComment,
	}
	if err := s.RatingDAO.Insert(ctx, rating); err != nil {
		if errors.Is(err, dao.ErrUniqueViolation) {
			return nil, response.AlreadyExists("您已经评价过该电影")
		}
		return nil, storeErr(err, "")
	}

	avg, count, err := s.refreshAggregate(ctx, req.MovieID)
	if err != nil {
		return nil, err
	}
	return &types.RatingVO{
		RatingID:      rating.RatingID,
		UserID:        userID,
		MovieID:       movie.MovieID,
		MovieTitle:    movie.Title,
		PosterURL:     movie.PosterURL,
		RatingValue:   rating.RatingValue,
		RatingComment: rating.RatingComment,
		AvgRating:     avg,
		RatingCount:   count,
		CreateTime:    rating.CreatedAt,
	}, nil
}

// refreshAggregate 重新计算聚合值并以 updated_at 为版本写回，冲突时退避重试
func (s *RatingService) refreshAggregate(ctx context.Context, movieID int64) (float64, int64, error) {
	backoff := ratingBaseBackoff
	for attempt := 1; attempt <= ratingMaxAttempts; attempt++ {
		gen, err := s.MovieDAO.Generation(ctx, movieID)
		if err != nil {
			return 0, 0, storeErr(err, "电影不存在")
		}
		avg, count, err := s.RatingDAO.Aggregate(ctx, movieID)
		if err != nil {
			return 0, 0, storeErr(err, "")
		}
		n, err := s.MovieDAO.UpdateRatingCAS(ctx, movieID, avg, count, gen)
		if err != nil {
			return 0, 0, storeErr(err, "")
		}
		if n > 0 {
			return avg, count, nil
		}

		ratingCASConflicts.Inc()
		log.L.Warn("rating aggregate conflict",
			zap.Int64("movie_id", movieID),
			zap.Int("attempt", attempt))
		if attempt == ratingMaxAttempts {
			break
		}

		wait := backoff/2 + rand.N(backoff/2+1)
		select {
		case <-ctx.Done():
			return 0, 0, response.Transient("请求已取消")
		case <-time.After(wait):
		}
		backoff = min(backoff*2, ratingMaxBackoff)
	}
	log.L.Error("rating aggregate update exhausted retries", zap.Int64("movie_id", movieID))
	return 0, 0, response.Conflict("评分更新失败，请稍后重试")
}

func (s *RatingService) GetRating(ctx context.Context, userID, movieID int64) (*types.RatingVO, error) {
	r, err := s.RatingDAO.GetByUserMovie(ctx, userID, movieID)
	if err != nil || r == nil {
		return nil, storeErr(err, "")
	}
	vo := ratingVO(r)
	if m, err := s.Catalog.Brief(ctx, movieID); err == nil {
		vo.MovieTitle = m.Title
		vo.PosterURL = m.PosterURL
	}
	return &vo, nil
}

func (s *RatingService) ListUserRatings(ctx context.Context, userID int64) ([]types.RatingVO, error) {
	list, err := s.RatingDAO.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	ids := make([]int64, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.MovieID)
	}
	movies, err := s.Catalog.Briefs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "")
	}

	out := make([]types.RatingVO, 0, len(list))
	for _, r := range list {
		vo := ratingVO(r)
		if m, ok := movies[r.MovieID]; ok {
			vo.MovieTitle = m.Title
			vo.PosterURL = m.PosterURL
		}
		out = append(out, vo)
	}
	return out, nil
}

func ratingVO(r *models.Rating) types.RatingVO {
	return types.RatingVO{
		RatingID:      r.RatingID,
		UserID:        r.UserID,
		MovieID:       r.MovieID,
		RatingValue:   r.RatingValue,
		RatingComment: r.RatingComment,
		CreateTime:    r.CreatedAt,
	}
}
