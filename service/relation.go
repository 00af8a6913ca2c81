package service

import (
	"context"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"
)

var _ IRelationService = (*RelationService)(nil)

type IRelationService interface {
	Mark(ctx context.Context, userID int64, req *types.MarkRelationRequest) (*types.RelationVO, error)
	Unmark(ctx context.Context, userID, movieID int64) error
	List(ctx context.Context, userID int64, relationType int) ([]types.RelationVO, error)
	Stats(ctx context.Context, userID int64) (*types.RelationStatsVO, error)
	Check(ctx context.Context, userID, movieID int64) (*types.RelationVO, error)
	// CanViewSpoiler 管理员或已看过该电影
	CanViewSpoiler(ctx context.Context, actor types.Actor, movieID int64) (bool, error)
}

type RelationService struct {
	RelationDAO *dao.RelationDAO
	Catalog     *MovieCatalog
}

func (s *RelationService) Mark(ctx context.Context, userID int64, req *types.MarkRelationRequest) (*types.RelationVO, error) {
	if req.RelationType != types.RelationWantToWatch && req.RelationType != types.RelationWatched {
		return nil, response.Invalid("关系类型不合法")
	}
	movie, err := s.Catalog.Live(ctx, req.MovieID)
	if err != nil {
		return nil, storeErr(err, "电影不存在")
	}
	rel, err := s.RelationDAO.Upsert(ctx, userID, req.MovieID, req.RelationType)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &types.RelationVO{
		MovieID:      movie.MovieID,
		Title:        movie.Title,
		PosterURL:    movie.PosterURL,
		RelationType: rel.RelationType,
		UpdateTime:   rel.UpdatedAt,
	}, nil
}

func (s *RelationService) Unmark(ctx context.Context, userID, movieID int64) error {
	_, err := s.RelationDAO.Remove(ctx, userID, movieID)
	return storeErr(err, "")
}

func (s *RelationService) List(ctx context.Context, userID int64, relationType int) ([]types.RelationVO, error) {
	rels, err := s.RelationDAO.ListByUser(ctx, userID, relationType)
	if err != nil {
		return nil, storeErr(err, "")
	}
	ids := make([]int64, 0, len(rels))
	for _, r := range rels {
		ids = append(ids, r.MovieID)
	}
	movies, err := s.Catalog.Briefs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "")
	}

	out := make([]types.RelationVO, 0, len(rels))
	for _, r := range rels {
		m, ok := movies[r.MovieID]
		if !ok {
			// 电影已下架
			continue
		}
		out = append(out, types.RelationVO{
			MovieID:      r.MovieID,
			Title:        m.Title,
			PosterURL:    m.PosterURL,
			RelationType: r.RelationType,
			UpdateTime:   r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *RelationService) Stats(ctx context.Context, userID int64) (*types.RelationStatsVO, error) {
	counts, err := s.RelationDAO.Stats(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &types.RelationStatsVO{
		WantToWatch: counts[types.RelationWantToWatch],
		Watched:     counts[types.RelationWatched],
	}, nil
}

// Check 无关系时返回 nil
func (s *RelationService) Check(ctx context.Context, userID, movieID int64) (*types.RelationVO, error) {
	rel, err := s.RelationDAO.Get(ctx, userID, movieID)
	if err != nil || rel == nil {
		return nil, storeErr(err, "")
	}
	return &types.RelationVO{MovieID: movieID, RelationType: rel.RelationType, UpdateTime: rel.UpdatedAt}, nil
}

func (s *RelationService) CanViewSpoiler(ctx context.Context, actor types.Actor, movieID int64) (bool, error) {
	if actor.IsAnonymous() {
		return false, nil
	}
	if actor.IsAdmin() {
		return true, nil
	}
	rel, err := s.RelationDAO.Get(ctx, actor.UserID, movieID)
	if err != nil {
		return false, storeErr(err, "")
	}
	return rel != nil && rel.RelationType == types.RelationWatched, nil
}
