package types

import "time"

// PostListQuery 帖子流筛选条件
type PostListQuery struct {
	Cursor      int64 `form:"cursor"`
	Size        int   `form:"size"`
	MovieID     int64 `form:"movieId"`
	PostType    int   `form:"postType"`
	ContentForm int   `form:"contentForm"`
	SpoilerType int   `form:"spoilerType"`
	UserID      int64 `form:"-"`
}

// PostPublishRequest 发布帖子，跨字段规则见 service 层校验
type PostPublishRequest struct {
	MovieID     int64    `json:"movieId" validate:"required,gt=0"`
	Title       string   `json:"title" validate:"required,max=100"`
	Content     string   `json:"content" validate:"max=10000"`
	PostType    int      `json:"postType" validate:"required,oneof=1 2 3 4"`
	ContentForm int      `json:"contentForm" validate:"required,oneof=1 2"`
	TagIDs      []int64  `json:"tagIds" validate:"max=10,dive,gt=0"`
	NewTagNames []string `json:"newTagNames" validate:"max=10,dive,min=1,max=50"`
	ImageURLs   []string `json:"imageUrls" validate:"max=9,dive,url"`
	VideoURL    string   `json:"videoUrl" validate:"omitempty,url"`
}

type PostInteractRequest struct {
	PostID int64 `json:"postId,string" binding:"required"`
}

type PostPublishVO struct {
	PostID     int64     `json:"postId,string"`
	Title      string    `json:"title"`
	CreateTime time.Time `json:"createTime"`
}

type TagBrief struct {
	TagID   int64  `json:"tagId"`
	TagName string `json:"tagName"`
}

// PostVO 列表项
type PostVO struct {
	PostID       int64      `json:"postId,string"`
	UserID       int64      `json:"userId"`
	Username     string     `json:"username"`
	Avatar       string     `json:"avatar"`
	MovieID      int64      `json:"movieId"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	PostType     int        `json:"postType"`
	ContentForm  int        `json:"contentForm"`
	CoverURL     string     `json:"coverUrl"`
	VideoURL     string     `json:"videoUrl,omitempty"`
	Tags         []TagBrief `json:"tags"`
	ViewCount    int64      `json:"viewCount"`
	LikeCount    int64      `json:"likeCount"`
	CollectCount int64      `json:"collectCount"`
	CommentCount int64      `json:"commentCount"`
	CreateTime   time.Time  `json:"createTime"`
}

// PostDetailVO 详情
type PostDetailVO struct {
	PostVO
	MovieTitle  string   `json:"movieTitle"`
	ImageURLs   []string `json:"imageUrls"`
	IsLiked     bool     `json:"isLiked"`
	IsCollected bool     `json:"isCollected"`
}

// PostStat 帖子计数，缓存与推送共用
type PostStat struct {
	PostID       int64 `json:"postId,string"`
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
	ViewCount    int64 `json:"viewCount"`
	CollectCount int64 `json:"collectCount"`
	Timestamp    int64 `json:"timestamp"`
}
