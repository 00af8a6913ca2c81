package dao

import (
	"context"
	"errors"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type RelationDAO struct {
	Repo[models.UserMovieRelation]
}

func NewRelationDAO(db *gorm.DB) *RelationDAO {
	return &RelationDAO{Repo: NewRepo[models.UserMovieRelation](db)}
}

// Get 无关系时返回 nil
func (d *RelationDAO) Get(ctx context.Context, userID, movieID int64) (*models.UserMovieRelation, error) {
	item, err := d.FindByWhere(ctx, "user_id = ? AND movie_id = ?", userID, movieID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return item, err
}

// Upsert 不存在则创建，存在则覆盖关系类型
func (d *RelationDAO) Upsert(ctx context.Context, userID, movieID int64, relationType int) (*models.UserMovieRelation, error) {
	item, err := d.Get(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &models.UserMovieRelation{UserID: userID, MovieID: movieID, RelationType: relationType}
		err = d.Create(ctx, item)
		if !errors.Is(err, ErrUniqueViolation) {
			return item, err
		}
		// 并发创建，退化为更新
		if item, err = d.Get(ctx, userID, movieID); err != nil || item == nil {
			return nil, errors.Join(ErrTransient, err)
		}
	}
	if item.RelationType == relationType {
		return item, nil
	}
	if _, err = d.UpdateById(ctx, item.ID, map[string]any{"relation_type": relationType}); err != nil {
		return nil, err
	}
	item.RelationType = relationType
	item.UpdatedAt = models.Now()
	return item, nil
}

func (d *RelationDAO) Remove(ctx context.Context, userID, movieID int64) (int64, error) {
	return d.Delete(ctx, "user_id = ? AND movie_id = ?", userID, movieID)
}

func (d *RelationDAO) ListByUser(ctx context.Context, userID int64, relationType int) ([]*models.UserMovieRelation, error) {
	var list []*models.UserMovieRelation
	query := d.DB(ctx).Where("user_id = ?", userID)
	if relationType > 0 {
		query = query.Where("relation_type = ?", relationType)
	}
	err := query.Order("updated_at DESC").Find(&list).Error
	return list, translate(err)
}

type relationCount struct {
	RelationType int
	Cnt          int64
}

// Stats 返回 relation_type -> 数量
func (d *RelationDAO) Stats(ctx context.Context, userID int64) (map[int]int64, error) {
	var rows []relationCount
	err := d.Model(ctx).
		Select("relation_type, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group("relation_type").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make(map[int]int64, len(rows))
	for _, r := range rows {
		out[r.RelationType] = r.Cnt
	}
	return out, nil
}
