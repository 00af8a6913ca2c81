package dao

import (
	"context"
	"time"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type TagDAO struct {
	Repo[models.Tag]
}

func NewTagDAO(db *gorm.DB) *TagDAO {
	return &TagDAO{Repo: NewRepo[models.Tag](db)}
}

func (d *TagDAO) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return d.FindByWhere(ctx, "tag_name = ?", name)
}

func (d *TagDAO) GetByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return d.FindAll(ctx, "tag_id IN ?", ids)
}

// AllIDs 启动时加载布隆过滤器
func (d *TagDAO) AllIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := d.Model(ctx).Pluck("tag_id", &ids).Error
	return ids, translate(err)
}

func (d *TagDAO) keyword(ctx context.Context, pattern string) *gorm.DB {
	query := d.Model(ctx)
	if pattern != "" {
		query = query.Where("tag_name LIKE ?", pattern)
	}
	return query
}

// ListByCursor keyword 为空时返回全部
func (d *TagDAO) ListByCursor(ctx context.Context, keyword string, cursor *time.Time, limit int) ([]*models.Tag, error) {
	pattern := ""
	if keyword != "" {
		pattern = "%" + keyword + "%"
	}
	return d.list(ctx, pattern, cursor, limit)
}

func (d *TagDAO) CountKeyword(ctx context.Context, keyword string) (int64, error) {
	pattern := ""
	if keyword != "" {
		pattern = "%" + keyword + "%"
	}
	var total int64
	err := d.keyword(ctx, pattern).Count(&total).Error
	return total, translate(err)
}

// ListByPrefix 前缀匹配
func (d *TagDAO) ListByPrefix(ctx context.Context, prefix string, cursor *time.Time, limit int) ([]*models.Tag, error) {
	return d.list(ctx, prefix+"%", cursor, limit)
}

func (d *TagDAO) CountPrefix(ctx context.Context, prefix string) (int64, error) {
	var total int64
	err := d.keyword(ctx, prefix+"%").Count(&total).Error
	return total, translate(err)
}

func (d *TagDAO) list(ctx context.Context, pattern string, cursor *time.Time, limit int) ([]*models.Tag, error) {
	var list []*models.Tag
	query := d.keyword(ctx, pattern)
	if cursor != nil {
		query = query.Where("created_at < ?", *cursor)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

// Hot 按已存储的热度排序
func (d *TagDAO) Hot(ctx context.Context, limit int) ([]*models.Tag, error) {
	var list []*models.Tag
	err := d.DB(ctx).Order("hot_score DESC").Order("tag_id ASC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

func (d *TagDAO) SaveHot(ctx context.Context, tagID int64, score float64, usage int64) error {
	_, err := d.UpdateById(ctx, tagID, map[string]any{"hot_score": score, "usage_count": usage})
	return err
}
