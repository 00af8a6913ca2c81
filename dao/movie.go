package dao

import (
	"context"
	"time"

	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/types"
	"gorm.io/gorm"
)

type MovieDAO struct {
	Repo[models.Movie]
}

func NewMovieDAO(db *gorm.DB) *MovieDAO {
	return &MovieDAO{Repo: NewRepo[models.Movie](db)}
}

// GetByID 只返回未删除的电影
func (d *MovieDAO) GetByID(ctx context.Context, movieID int64) (*models.Movie, error) {
	return d.FindByWhere(ctx, "movie_id = ? AND is_deleted = 0", movieID)
}

func (d *MovieDAO) GetByIDs(ctx context.Context, ids []int64) ([]*models.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return d.FindAll(ctx, "movie_id IN ? AND is_deleted = 0", ids)
}

// TitleTaken 未删除电影中标题是否已存在
func (d *MovieDAO) TitleTaken(ctx context.Context, title string, excludeID int64) (bool, error) {
	return d.IsExist(ctx, "title = ? AND is_deleted = 0 AND movie_id <> ?", title, excludeID)
}

func (d *MovieDAO) PageByCursor(ctx context.Context, cursor *time.Time, limit int) ([]*models.Movie, error) {
	var list []*models.Movie
	query := d.DB(ctx).Where("is_deleted = 0")
	if cursor != nil {
		query = query.Where("created_at < ?", *cursor)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

func (d *MovieDAO) CountLive(ctx context.Context) (int64, error) {
	return d.FindCount(ctx, "is_deleted = 0")
}

// Search 关键字、时长、年份筛选，offset 分页
func (d *MovieDAO) Search(ctx context.Context, q *types.MovieSearchQuery) ([]*models.Movie, int64, error) {
	query := d.Model(ctx).Where("is_deleted = 0")
	if q.Keyword != "" {
		query = query.Where("title LIKE ?", "%"+q.Keyword+"%")
	}
	if q.MinDuration > 0 {
		query = query.Where("duration >= ?", q.MinDuration)
	}
	if q.MaxDuration > 0 {
		query = query.Where("duration <= ?", q.MaxDuration)
	}
	if q.ReleaseYear > 0 {
		from := time.Date(q.ReleaseYear, 1, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("release_date >= ? AND release_date < ?", from, from.AddDate(1, 0, 0))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	switch q.SortType {
	case types.SortByRating:
		query = query.Order("avg_rating DESC").Order("rating_count DESC")
	default:
		query = query.Order("release_date DESC")
	}
	size := types.ClampSize(q.Size)
	page := q.Page
	if page < 1 {
		page = 1
	}

	var list []*models.Movie
	err := query.Offset((page - 1) * size).Limit(size).Find(&list).Error
	return list, total, translate(err)
}

// Generation 当前版本，即 updated_at
func (d *MovieDAO) Generation(ctx context.Context, movieID int64) (time.Time, error) {
	m, err := d.GetByID(ctx, movieID)
	if err != nil {
		return time.Time{}, err
	}
	return m.UpdatedAt, nil
}

// UpdateRatingCAS 仅当 updated_at 未变化时写入聚合值，返回影响行数
func (d *MovieDAO) UpdateRatingCAS(ctx context.Context, movieID int64, avg float64, count int64, expected time.Time) (int64, error) {
	tx := d.Model(ctx).
		Where("movie_id = ? AND updated_at = ? AND is_deleted = 0", movieID, expected).
		Updates(map[string]any{
			"avg_rating":   avg,
			"rating_count": count,
			"updated_at":   models.NextGeneration(expected),
		})
	return tx.RowsAffected, translate(tx.Error)
}

func (d *MovieDAO) SoftDelete(ctx context.Context, movieID int64) (int64, error) {
	return d.Updates(ctx, map[string]any{"is_deleted": 1}, "movie_id = ? AND is_deleted = 0", movieID)
}
