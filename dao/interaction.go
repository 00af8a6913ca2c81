package dao

import (
	"context"
	"errors"
	"time"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type PostLikeDAO struct {
	Repo[models.PostLike]
}

func NewPostLikeDAO(db *gorm.DB) *PostLikeDAO {
	return &PostLikeDAO{Repo: NewRepo[models.PostLike](db)}
}

// Add 已点赞返回 false
func (d *PostLikeDAO) Add(ctx context.Context, userID, postID int64) (*models.PostLike, bool, error) {
	item := &models.PostLike{UserID: userID, PostID: postID}
	err := d.Create(ctx, item)
	if errors.Is(err, ErrUniqueViolation) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// Remove 未点赞返回 false
func (d *PostLikeDAO) Remove(ctx context.Context, userID, postID int64) (bool, error) {
	n, err := d.Delete(ctx, "user_id = ? AND post_id = ?", userID, postID)
	return n > 0, err
}

func (d *PostLikeDAO) IsLiked(ctx context.Context, userID, postID int64) (bool, error) {
	return d.IsExist(ctx, "user_id = ? AND post_id = ?", userID, postID)
}

func (d *PostLikeDAO) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return d.FindCount(ctx, "post_id = ?", postID)
}

func (d *PostLikeDAO) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	return d.Delete(ctx, "post_id = ?", postID)
}

type CollectionDAO struct {
	Repo[models.Collection]
}

func NewCollectionDAO(db *gorm.DB) *CollectionDAO {
	return &CollectionDAO{Repo: NewRepo[models.Collection](db)}
}

func (d *CollectionDAO) Add(ctx context.Context, userID, postID int64) (bool, error) {
	err := d.Create(ctx, &models.Collection{UserID: userID, PostID: postID})
	if errors.Is(err, ErrUniqueViolation) {
		return false, nil
	}
	return err == nil, err
}

func (d *CollectionDAO) Remove(ctx context.Context, userID, postID int64) (bool, error) {
	n, err := d.Delete(ctx, "user_id = ? AND post_id = ?", userID, postID)
	return n > 0, err
}

func (d *CollectionDAO) IsCollected(ctx context.Context, userID, postID int64) (bool, error) {
	return d.IsExist(ctx, "user_id = ? AND post_id = ?", userID, postID)
}

func (d *CollectionDAO) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return d.FindCount(ctx, "post_id = ?", postID)
}

// ListByUserCursor 游标为收藏时间
func (d *CollectionDAO) ListByUserCursor(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]*models.Collection, error) {
	var list []*models.Collection
	query := d.DB(ctx).
		Joins("JOIN posts ON posts.post_id = collections.post_id AND posts.is_deleted = 0").
		Where("collections.user_id = ?", userID)
	if cursor != nil {
		query = query.Where("collections.created_at < ?", *cursor)
	}
	err := query.Order("collections.created_at DESC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

func (d *CollectionDAO) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := d.Model(ctx).
		Joins("JOIN posts ON posts.post_id = collections.post_id AND posts.is_deleted = 0").
		Where("collections.user_id = ?", userID).
		Count(&total).Error
	return total, translate(err)
}

func (d *CollectionDAO) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	return d.Delete(ctx, "post_id = ?", postID)
}
