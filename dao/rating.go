package dao

import (
	"context"
	"errors"
	"math"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type RatingDAO struct {
	Repo[models.Rating]
}

func NewRatingDAO(db *gorm.DB) *RatingDAO {
	return &RatingDAO{Repo: NewRepo[models.Rating](db)}
}

// Insert 唯一键冲突返回 ErrUniqueViolation
func (d *RatingDAO) Insert(ctx context.Context, r *models.Rating) error {
	return d.Create(ctx, r)
}

// GetByUserMovie 未评分时返回 nil
func (d *RatingDAO) GetByUserMovie(ctx context.Context, userID, movieID int64) (*models.Rating, error) {
	r, err := d.FindByWhere(ctx, "user_id = ? AND movie_id = ?", userID, movieID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (d *RatingDAO) ListByUser(ctx context.Context, userID int64) ([]*models.Rating, error) {
	var list []*models.Rating
	err := d.DB(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, translate(err)
}

type ratingAggregate struct {
	Avg float64
	Cnt int64
}

// Aggregate 返回两位小数的平均分和评分人数
func (d *RatingDAO) Aggregate(ctx context.Context, movieID int64) (float64, int64, error) {
	var agg ratingAggregate
	err := d.Model(ctx).
		Select("COALESCE(ROUND(AVG(rating_value), 2), 0) AS avg, COUNT(*) AS cnt").
		Where("movie_id = ?", movieID).
		Scan(&agg).Error
	if err != nil {
		return 0, 0, translate(err)
	}
	return math.Round(agg.Avg*100) / 100, agg.Cnt, nil
}

type ratingBucket struct {
	Bucket int
	Cnt    int64
}

// Distribution 按 [0,1) [1,2) [2,3) [3,4) [4,5] 分桶
func (d *RatingDAO) Distribution(ctx context.Context, movieID int64) ([]int64, error) {
	var rows []ratingBucket
	err := d.Model(ctx).
		Select("CASE WHEN rating_value < 1 THEN 1 WHEN rating_value < 2 THEN 2 "+
			"WHEN rating_value < 3 THEN 3 WHEN rating_value < 4 THEN 4 ELSE 5 END AS bucket, COUNT(*) AS cnt").
		Where("movie_id = ?", movieID).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	dist := make([]int64, 5)
	for _, row := range rows {
		if row.Bucket >= 1 && row.Bucket <= 5 {
			dist[row.Bucket-1] = row.Cnt
		}
	}
	return dist, nil
}
