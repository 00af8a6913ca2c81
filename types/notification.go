package types

import "time"

type NotificationVO struct {
	ID          int64     `json:"id,string"`
	Type        int       `json:"type"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	RelatedID   int64     `json:"relatedId,string"`
	RelatedType int       `json:"relatedType"`
	IsRead      bool      `json:"isRead"`
	CreateTime  time.Time `json:"createTime"`
}

type UnreadCountVO struct {
	Count int64 `json:"count"`
}
