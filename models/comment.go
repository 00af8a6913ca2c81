package models

import "time"

// Comment 评论表，parent_id=0 为一级评论，最多两层
type Comment struct {
	CommentID  int64      `gorm:"column:comment_id;primaryKey;autoIncrement:false" json:"commentId,string"`
	UserID     int64      `gorm:"column:user_id;not null" json:"userId"`
	PostID     int64      `gorm:"column:post_id;not null;index:idx_comment_post_parent_created,priority:1" json:"postId,string"`
	ParentID   int64      `gorm:"column:parent_id;not null;default:0;index:idx_comment_post_parent_created,priority:2;index:idx_comment_parent" json:"parentId,string"`
	Content    string     `gorm:"column:content;type:text;not null" json:"content"`
	LikeCount  int64      `gorm:"column:like_count;not null;default:0" json:"likeCount"`
	IsDeleted  int8       `gorm:"column:is_deleted;not null;default:0;index:idx_comment_deleted_time,priority:1" json:"-"`
	DeleteTime *time.Time `gorm:"column:delete_time;index:idx_comment_deleted_time,priority:2" json:"-"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime:false;index:idx_comment_post_parent_created,priority:3" json:"createTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime:false" json:"updateTime"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) SetTimestamps(now time.Time, creating bool) {
	if creating && c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// CommentImage 评论图片
type CommentImage struct {
	ImageID   int64  `gorm:"column:image_id;primaryKey;autoIncrement" json:"imageId"`
	CommentID int64  `gorm:"column:comment_id;not null;index:idx_comment_image_comment" json:"commentId,string"`
	ImageURL  string `gorm:"column:image_url;size:512;not null" json:"imageUrl"`
	SortOrder int    `gorm:"column:sort_order;not null;default:1" json:"sortOrder"`
	Timestamps
}

func (CommentImage) TableName() string { return "comment_images" }
