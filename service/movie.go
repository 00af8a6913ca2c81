package service

import (
	"context"
	"time"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"gorm.io/datatypes"
)

var _ IMovieService = (*MovieService)(nil)

type IMovieService interface {
	Page(ctx context.Context, cursor int64, size int) (*types.CursorPage[types.MovieVO], error)
	Search(ctx context.Context, q *types.MovieSearchQuery) (*types.PageResult[types.MovieVO], error)
	Detail(ctx context.Context, actor types.Actor, movieID int64) (*types.MovieDetailVO, error)
	Create(ctx context.Context, req *types.MovieSaveRequest) (*types.MovieVO, error)
	Update(ctx context.Context, movieID int64, req *types.MovieSaveRequest) (*types.MovieVO, error)
	Delete(ctx context.Context, movieID int64) error
}

type MovieService struct {
	MovieDAO    *dao.MovieDAO
	RatingDAO   *dao.RatingDAO
	RelationDAO *dao.RelationDAO
	Catalog     *MovieCatalog
}

func toMovieVO(m *models.Movie) types.MovieVO {
	vo := types.MovieVO{
		MovieID:     m.MovieID,
		Title:       m.Title,
		Duration:    m.Duration,
		Intro:       m.Intro,
		PosterURL:   m.PosterURL,
		AvgRating:   m.AvgRating,
		RatingCount: m.RatingCount,
		CreateTime:  m.CreatedAt,
	}
	if t := m.ReleaseTime(); !t.IsZero() {
		vo.ReleaseDate = t.Format(time.DateOnly)
	}
	return vo
}

func (s *MovieService) Page(ctx context.Context, cursor int64, size int) (*types.CursorPage[types.MovieVO], error) {
	size = types.ClampSize(size)
	list, err := s.MovieDAO.PageByCursor(ctx, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page := types.NewCursorPage[types.MovieVO](len(list))
	for _, m := range list {
		page.List = append(page.List, toMovieVO(m))
	}
	if cursor <= 0 {
		total, err := s.MovieDAO.CountLive(ctx)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	if len(list) == size {
		page.HasNext = true
		page.NextCursor = list[len(list)-1].CreatedAt.UnixNano()
	}
	return page, nil
}

func (s *MovieService) Search(ctx context.Context, q *types.MovieSearchQuery) (*types.PageResult[types.MovieVO], error) {
	if q.MinDuration > 0 && q.MaxDuration > 0 && q.MinDuration > q.MaxDuration {
		return nil, response.Invalid("时长范围不合法")
	}
	list, total, err := s.MovieDAO.Search(ctx, q)
	if err != nil {
		return nil, storeErr(err, "")
	}
	res := &types.PageResult[types.MovieVO]{Total: total, Records: make([]types.MovieVO, 0, len(list))}
	for _, m := range list {
		res.Records = append(res.Records, toMovieVO(m))
	}
	return res, nil
}

func (s *MovieService) Detail(ctx context.Context, actor types.Actor, movieID int64) (*types.MovieDetailVO, error) {
	movie, err := s.MovieDAO.GetByID(ctx, movieID)
	if err != nil {
		return nil, storeErr(err, "电影不存在")
	}
	dist, err := s.RatingDAO.Distribution(ctx, movieID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	vo := &types.MovieDetailVO{MovieVO: toMovieVO(movie), RatingDistribution: dist}
	if actor.IsAnonymous() {
		return vo, nil
	}

	rel, err := s.RelationDAO.Get(ctx, actor.UserID, movieID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if rel != nil {
		vo.RelationType = rel.RelationType
	}
	rating, err := s.RatingDAO.GetByUserMovie(ctx, actor.UserID, movieID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if rating != nil {
		vo.MyRating = rating.RatingValue
	}
	return vo, nil
}

func parseReleaseDate(s string) (datatypes.Date, error) {
	if s == "" {
		return datatypes.Date{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return datatypes.Date{}, response.Invalid("上映日期格式应为 YYYY-MM-DD")
	}
	return datatypes.Date(t), nil
}

func (s *MovieService) Create(ctx context.Context, req *types.MovieSaveRequest) (*types.MovieVO, error) {
	release, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}
	taken, err := s.MovieDAO.TitleTaken(ctx, req.Title, 0)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if taken {
		return nil, response.AlreadyExists("电影已存在")
	}
	movie := &models.Movie{
		Title:       req.Title,
		Duration:    req.Duration,
		Intro:       req.Intro,
		PosterURL:   req.PosterURL,
		ReleaseDate: release,
	}
	if err := s.MovieDAO.Create(ctx, movie); err != nil {
		return nil, storeErr(err, "")
	}
	vo := toMovieVO(movie)
	return &vo, nil
}

func (s *MovieService) Update(ctx context.Context, movieID int64, req *types.MovieSaveRequest) (*types.MovieVO, error) {
	release, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.MovieDAO.GetByID(ctx, movieID); err != nil {
		return nil, storeErr(err, "电影不存在")
	}
	taken, err := s.MovieDAO.TitleTaken(ctx, req.Title, movieID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if taken {
		return nil, response.AlreadyExists("电影已存在")
	}
	// 评分聚合字段只由评分引擎写入
	_, err = s.MovieDAO.UpdateById(ctx, movieID, map[string]any{
		"title":        req.Title,
		"duration":     req.Duration,
		"intro":        req.Intro,
		"poster_url":   req.PosterURL,
		"release_date": release,
	})
	if err != nil {
		return nil, storeErr(err, "")
	}
	s.Catalog.Invalidate(movieID)

	movie, err := s.MovieDAO.GetByID(ctx, movieID)
	if err != nil {
		return nil, storeErr(err, "电影不存在")
	}
	vo := toMovieVO(movie)
	return &vo, nil
}

func (s *MovieService) Delete(ctx context.Context, movieID int64) error {
	n, err := s.MovieDAO.SoftDelete(ctx, movieID)
	if err != nil {
		return storeErr(err, "")
	}
	if n == 0 {
		return response.NotFound("电影不存在")
	}
	s.Catalog.Invalidate(movieID)
	return nil
}
