package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

// PostFilter 帖子流筛选
type PostFilter struct {
	MovieID     int64
	PostTypes   []int
	ContentForm int
	UserID      int64
}

// 计数列白名单
var postCounters = map[string]struct{}{
	"view_count":    {},
	"like_count":    {},
	"collect_count": {},
	"comment_count": {},
}

type PostDAO struct {
	Repo[models.Post]
}

func NewPostDAO(db *gorm.DB) *PostDAO {
	return &PostDAO{Repo: NewRepo[models.Post](db)}
}

// GetLive 未删除的帖子
func (d *PostDAO) GetLive(ctx context.Context, postID int64) (*models.Post, error) {
	return d.FindByWhere(ctx, "post_id = ? AND is_deleted = 0", postID)
}

func (d *PostDAO) GetByIDs(ctx context.Context, ids []int64) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return d.FindAll(ctx, "post_id IN ? AND is_deleted = 0", ids)
}

func (d *PostDAO) filtered(ctx context.Context, f PostFilter) *gorm.DB {
	query := d.Model(ctx).Where("is_deleted = 0")
	if f.MovieID > 0 {
		query = query.Where("movie_id = ?", f.MovieID)
	}
	if len(f.PostTypes) > 0 {
		query = query.Where("post_type IN ?", f.PostTypes)
	}
	if f.ContentForm > 0 {
		query = query.Where("content_form = ?", f.ContentForm)
	}
	if f.UserID > 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	return query
}

// ListByCursor created_at < cursor，按时间倒序
func (d *PostDAO) ListByCursor(ctx context.Context, f PostFilter, cursor *time.Time, limit int) ([]*models.Post, error) {
	var list []*models.Post
	query := d.filtered(ctx, f)
	if cursor != nil {
		query = query.Where("created_at < ?", *cursor)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

func (d *PostDAO) Count(ctx context.Context, f PostFilter) (int64, error) {
	var total int64
	err := d.filtered(ctx, f).Count(&total).Error
	return total, translate(err)
}

// SampleForSummary 按点赞数、时间取样
func (d *PostDAO) SampleForSummary(ctx context.Context, movieID int64, postTypes []int, limit int) ([]*models.Post, error) {
	var list []*models.Post
	err := d.filtered(ctx, PostFilter{MovieID: movieID, PostTypes: postTypes}).
		Order("like_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, translate(err)
}

// AddCounter 计数增减，不小于 0
func (d *PostDAO) AddCounter(ctx context.Context, postID int64, column string, delta int64) error {
	if _, ok := postCounters[column]; !ok {
		return fmt.Errorf("unknown counter column %q", column)
	}
	expr := gorm.Expr(fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", column, column), delta, delta)
	err := d.Model(ctx).Where("post_id = ?", postID).UpdateColumn(column, expr).Error
	return translate(err)
}

// SetCounter 绝对值写入
func (d *PostDAO) SetCounter(ctx context.Context, postID int64, column string, n int64) error {
	if _, ok := postCounters[column]; !ok {
		return fmt.Errorf("unknown counter column %q", column)
	}
	if n < 0 {
		n = 0
	}
	err := d.Model(ctx).Where("post_id = ?", postID).UpdateColumn(column, n).Error
	return translate(err)
}

// Stat 读取计数，包含已删除帖子
func (d *PostDAO) Stat(ctx context.Context, postID int64) (*models.Post, error) {
	var item models.Post
	tx := d.DB(ctx).
		Select("post_id, view_count, like_count, collect_count, comment_count").
		Where("post_id = ?", postID).
		Limit(1).
		Find(&item)
	if tx.Error != nil {
		return nil, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (d *PostDAO) SoftDelete(ctx context.Context, postID int64) (int64, error) {
	return d.Updates(ctx, map[string]any{"is_deleted": 1, "delete_time": models.Now()},
		"post_id = ? AND is_deleted = 0", postID)
}

func (d *PostDAO) Restore(ctx context.Context, postID int64) (int64, error) {
	return d.Updates(ctx, map[string]any{"is_deleted": 0, "delete_time": nil},
		"post_id = ? AND is_deleted = 1", postID)
}

// GetAny 包含已删除的帖子
func (d *PostDAO) GetAny(ctx context.Context, postID int64) (*models.Post, error) {
	return d.FindByWhere(ctx, "post_id = ?", postID)
}

// ExpiredIDs 删除时间早于 before 的软删帖子
func (d *PostDAO) ExpiredIDs(ctx context.Context, before time.Time, limit int) ([]int64, error) {
	var ids []int64
	err := d.Model(ctx).
		Where("is_deleted = 1 AND delete_time < ?", before).
		Order("delete_time ASC").
		Limit(limit).
		Pluck("post_id", &ids).Error
	return ids, translate(err)
}

func (d *PostDAO) Purge(ctx context.Context, postID int64) (int64, error) {
	return d.Delete(ctx, "post_id = ?", postID)
}
