package dao

import (
	"context"
	"time"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type CommentDAO struct {
	Repo[models.Comment]
}

func NewCommentDAO(db *gorm.DB) *CommentDAO {
	return &CommentDAO{Repo: NewRepo[models.Comment](db)}
}

func (d *CommentDAO) GetLive(ctx context.Context, commentID int64) (*models.Comment, error) {
	return d.FindByWhere(ctx, "comment_id = ? AND is_deleted = 0", commentID)
}

func (d *CommentDAO) GetAny(ctx context.Context, commentID int64) (*models.Comment, error) {
	return d.FindByWhere(ctx, "comment_id = ?", commentID)
}

// ListTopLevel 一级评论，created_at 倒序
func (d *CommentDAO) ListTopLevel(ctx context.Context, postID int64, cursor *time.Time, limit int) ([]*models.Comment, error) {
	var list []*models.Comment
	query := d.DB(ctx).Where("post_id = ? AND parent_id = 0 AND is_deleted = 0", postID)
	if cursor != nil {
		query = query.Where("created_at < ?", *cursor)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

func (d *CommentDAO) CountTopLevel(ctx context.Context, postID int64) (int64, error) {
	return d.FindCount(ctx, "post_id = ? AND parent_id = 0 AND is_deleted = 0", postID)
}

// ListReplies 回复按时间正序
func (d *CommentDAO) ListReplies(ctx context.Context, parentID int64, cursor *time.Time, limit int) ([]*models.Comment, error) {
	var list []*models.Comment
	query := d.DB(ctx).Where("parent_id = ? AND is_deleted = 0", parentID)
	if cursor != nil {
		query = query.Where("created_at > ?", *cursor)
	}
	err := query.Order("created_at ASC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

func (d *CommentDAO) CountReplies(ctx context.Context, parentID int64) (int64, error) {
	return d.FindCount(ctx, "parent_id = ? AND is_deleted = 0", parentID)
}

type replyCount struct {
	ParentID int64
	Cnt      int64
}

// ReplyCounts 批量统计回复数
func (d *CommentDAO) ReplyCounts(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	var rows []replyCount
	err := d.Model(ctx).
		Select("parent_id, COUNT(*) AS cnt").
		Where("parent_id IN ? AND is_deleted = 0", parentIDs).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, r := range rows {
		out[r.ParentID] = r.Cnt
	}
	return out, nil
}

// CountLiveByPost comment_count 的来源
func (d *CommentDAO) CountLiveByPost(ctx context.Context, postID int64) (int64, error) {
	return d.FindCount(ctx, "post_id = ? AND is_deleted = 0", postID)
}

func (d *CommentDAO) SoftDelete(ctx context.Context, commentID int64) (int64, error) {
	return d.Updates(ctx, map[string]any{"is_deleted": 1, "delete_time": models.Now()},
		"comment_id = ? AND is_deleted = 0", commentID)
}

func (d *CommentDAO) Restore(ctx context.Context, commentID int64) (int64, error) {
	return d.Updates(ctx, map[string]any{"is_deleted": 0, "delete_time": nil},
		"comment_id = ? AND is_deleted = 1", commentID)
}

// Expired 过期的软删评论，连同其回复
func (d *CommentDAO) Expired(ctx context.Context, before time.Time, limit int) ([]*models.Comment, error) {
	var roots []*models.Comment
	err := d.DB(ctx).
		Select("comment_id, post_id, parent_id").
		Where("is_deleted = 1 AND delete_time < ?", before).
		Order("delete_time ASC").
		Limit(limit).
		Find(&roots).Error
	if err != nil || len(roots) == 0 {
		return roots, translate(err)
	}

	seen := make(map[int64]struct{}, len(roots))
	ids := make([]int64, 0, len(roots))
	for _, c := range roots {
		seen[c.CommentID] = struct{}{}
		ids = append(ids, c.CommentID)
	}
	var replies []*models.Comment
	err = d.DB(ctx).
		Select("comment_id, post_id, parent_id").
		Where("parent_id IN ?", ids).
		Find(&replies).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, r := range replies {
		if _, ok := seen[r.CommentID]; !ok {
			seen[r.CommentID] = struct{}{}
			roots = append(roots, r)
		}
	}
	return roots, nil
}

func (d *CommentDAO) IDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	var ids []int64
	err := d.Model(ctx).Where("post_id = ?", postID).Pluck("comment_id", &ids).Error
	return ids, translate(err)
}

func (d *CommentDAO) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return d.Delete(ctx, "comment_id IN ?", ids)
}

func (d *CommentDAO) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	return d.Delete(ctx, "post_id = ?", postID)
}

type CommentImageDAO struct {
	Repo[models.CommentImage]
}

func NewCommentImageDAO(db *gorm.DB) *CommentImageDAO {
	return &CommentImageDAO{Repo: NewRepo[models.CommentImage](db)}
}

// ListByComments comment_id -> 图片地址
func (d *CommentImageDAO) ListByComments(ctx context.Context, commentIDs []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}
	var list []*models.CommentImage
	err := d.DB(ctx).
		Where("comment_id IN ?", commentIDs).
		Order("comment_id").
		Order("sort_order ASC").
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, img := range list {
		out[img.CommentID] = append(out[img.CommentID], img.ImageURL)
	}
	return out, nil
}

func (d *CommentImageDAO) DeleteByCommentIDs(ctx context.Context, commentIDs []int64) (int64, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}
	return d.Delete(ctx, "comment_id IN ?", commentIDs)
}
