package types

import "time"

type PublishCommentRequest struct {
	PostID    int64    `json:"postId,string" binding:"required"`
	ParentID  int64    `json:"parentId,string"`
	Content   string   `json:"content" binding:"required,min=1,max=1000"`
	ImageURLs []string `json:"imageUrls" binding:"max=9"`
}

type CommentVO struct {
	CommentID  int64     `json:"commentId,string"`
	PostID     int64     `json:"postId,string"`
	ParentID   int64     `json:"parentId,string"`
	UserID     int64     `json:"userId"`
	Username   string    `json:"username"`
	Avatar     string    `json:"avatar"`
	Content    string    `json:"content"`
	LikeCount  int64     `json:"likeCount"`
	ReplyCount int64     `json:"replyCount"`
	ImageURLs  []string  `json:"imageUrls"`
	CreateTime time.Time `json:"createTime"`
}
