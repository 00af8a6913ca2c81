package types

import "time"

type TagVO struct {
	TagID      int64     `json:"tagId"`
	TagName    string    `json:"tagName"`
	HotScore   float64   `json:"hotScore"`
	UsageCount int64     `json:"usageCount"`
	CreateTime time.Time `json:"createTime"`
}

// TagHotVO 标签热度，标签不存在时各项为零值
type TagHotVO struct {
	TagID         int64   `json:"tagId"`
	TagName       string  `json:"tagName"`
	HotScore      float64 `json:"hotScore"`
	TotalUses     int64   `json:"totalUses"`
	RecentUses    int64   `json:"recentUses"`
	DistinctPosts int64   `json:"distinctPosts"`
}
