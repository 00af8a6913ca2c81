package dao

import (
	"context"
	"sort"
	"time"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type PostTagDAO struct {
	Repo[models.PostTag]
}

func NewPostTagDAO(db *gorm.DB) *PostTagDAO {
	return &PostTagDAO{Repo: NewRepo[models.PostTag](db)}
}

// TagIDsByPosts post_id -> 按 tag_id 升序的标签
func (d *PostTagDAO) TagIDsByPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var edges []*models.PostTag
	if err := d.DB(ctx).Where("post_id IN ?", postIDs).Find(&edges).Error; err != nil {
		return nil, translate(err)
	}
	for _, e := range edges {
		out[e.PostID] = append(out[e.PostID], e.TagID)
	}
	for _, ids := range out {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return out, nil
}

func (d *PostTagDAO) TagIDsByPost(ctx context.Context, postID int64) ([]int64, error) {
	var ids []int64
	err := d.Model(ctx).Where("post_id = ?", postID).Order("tag_id").Pluck("tag_id", &ids).Error
	return ids, translate(err)
}

func (d *PostTagDAO) DeleteByPost(ctx context.Context, postID int64) (int64, error) {
	return d.Delete(ctx, "post_id = ?", postID)
}

// TagUsage 热度计算所需的原始统计
type TagUsage struct {
	TagID         int64
	TotalUses     int64
	RecentUses    int64
	DistinctPosts int64
}

// Usage 一次分组查询得到各标签的使用统计，only live posts
func (d *PostTagDAO) Usage(ctx context.Context, tagIDs []int64, since time.Time) (map[int64]TagUsage, error) {
	out := make(map[int64]TagUsage, len(tagIDs))
	if len(tagIDs) == 0 {
		return out, nil
	}
	var rows []TagUsage
	err := d.DB(ctx).
		Table("post_tags AS pt").
		Select("pt.tag_id AS tag_id, COUNT(*) AS total_uses, "+
			"SUM(CASE WHEN pt.created_at >= ? THEN 1 ELSE 0 END) AS recent_uses, "+
			"COUNT(DISTINCT pt.post_id) AS distinct_posts", since).
		Joins("JOIN posts AS p ON p.post_id = pt.post_id AND p.is_deleted = 0").
		Where("pt.tag_id IN ?", tagIDs).
		Group("pt.tag_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, r := range rows {
		out[r.TagID] = r
	}
	return out, nil
}
