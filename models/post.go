package models

import "time"

// Post 帖子表
type Post struct {
	PostID       int64      `gorm:"column:post_id;primaryKey;autoIncrement:false" json:"postId,string"`
	UserID       int64      `gorm:"column:user_id;not null;index:idx_post_user_created,priority:1" json:"userId"`
	MovieID      int64      `gorm:"column:movie_id;not null;index:idx_post_movie_type_created,priority:1" json:"movieId"`
	Title        string     `gorm:"column:title;size:100;not null" json:"title"`
	Content      string     `gorm:"column:content;type:text" json:"content"`
	PostType     int        `gorm:"column:post_type;not null;index:idx_post_movie_type_created,priority:2" json:"postType"`
	ContentForm  int        `gorm:"column:content_form;not null;default:1" json:"contentForm"`
	VideoURL     string     `gorm:"column:video_url;size:512" json:"videoUrl"`
	ViewCount    int64      `gorm:"column:view_count;not null;default:0" json:"viewCount"`
	LikeCount    int64      `gorm:"column:like_count;not null;default:0" json:"likeCount"`
	CollectCount int64      `gorm:"column:collect_count;not null;default:0" json:"collectCount"`
	CommentCount int64      `gorm:"column:comment_count;not null;default:0" json:"commentCount"`
	IsDeleted    int8       `gorm:"column:is_deleted;not null;default:0;index:idx_post_deleted_time,priority:1" json:"-"`
	DeleteTime   *time.Time `gorm:"column:delete_time;index:idx_post_deleted_time,priority:2" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime:false;index:idx_post_movie_type_created,priority:3;index:idx_post_user_created,priority:2;index:idx_post_created" json:"createTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime:false" json:"updateTime"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) SetTimestamps(now time.Time, creating bool) {
	if creating && p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// PostImage 帖子图片，sort_order 从 1 开始
type PostImage struct {
	ImageID   int64  `gorm:"column:image_id;primaryKey;autoIncrement" json:"imageId"`
	PostID    int64  `gorm:"column:post_id;not null;index:idx_post_image_post" json:"postId,string"`
	ImageURL  string `gorm:"column:image_url;size:512;not null" json:"imageUrl"`
	SortOrder int    `gorm:"column:sort_order;not null;default:1" json:"sortOrder"`
	Timestamps
}

func (PostImage) TableName() string { return "post_images" }

// PostTag 帖子与标签的关联
type PostTag struct {
	PostID    int64     `gorm:"column:post_id;primaryKey;autoIncrement:false" json:"postId,string"`
	TagID     int64     `gorm:"column:tag_id;primaryKey;autoIncrement:false;index:idx_post_tag_tag" json:"tagId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"createTime"`
}

func (PostTag) TableName() string { return "post_tags" }

func (p *PostTag) SetTimestamps(now time.Time, creating bool) {
	if creating && p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// PostLike 点赞边
type PostLike struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uk_like_user_post,priority:1" json:"userId"`
	PostID    int64     `gorm:"column:post_id;not null;uniqueIndex:uk_like_user_post,priority:2;index:idx_like_post" json:"postId,string"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"createTime"`
}

func (PostLike) TableName() string { return "post_likes" }

func (p *PostLike) SetTimestamps(now time.Time, creating bool) {
	if creating && p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// Collection 收藏边，游标按收藏时间
type Collection struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uk_collection_user_post,priority:1;index:idx_collection_user_created,priority:1" json:"userId"`
	PostID    int64     `gorm:"column:post_id;not null;uniqueIndex:uk_collection_user_post,priority:2;index:idx_collection_post" json:"postId,string"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false;index:idx_collection_user_created,priority:2" json:"createTime"`
}

func (Collection) TableName() string { return "collections" }

func (c *Collection) SetTimestamps(now time.Time, creating bool) {
	if creating && c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}
