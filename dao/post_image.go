package dao

import (
	"context"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type PostImageDAO struct {
	Repo[models.PostImage]
}

func NewPostImageDAO(db *gorm.DB) *PostImageDAO {
	return &PostImageDAO{Repo: NewRepo[models.PostImage](db)}
}

func (d *PostImageDAO) ListByPost(ctx context.Context, postID int64) ([]*models.PostImage, error) {
	var list []*models.PostImage
	err := d.DB(ctx).Where("post_id = ?", postID).Order("sort_order ASC").Find(&list).Error
	return list, translate(err)
}

// Covers 每个帖子 sort_order 最小的图片
func (d *PostImageDAO) Covers(ctx context.Context, postIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var list []*models.PostImage
	err := d.DB(ctx).
		Where("post_id IN ?", postIDs).
		Order("post_id").
		Order("sort_order ASC").
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, img := range list {
		if _, ok := out[img.PostID]; !ok {
			out[img.PostID] = img.ImageURL
		}
	}
	return out, nil
}

func (d *PostImageDAO) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	return d.Delete(ctx, "post_id = ?", postID)
}
