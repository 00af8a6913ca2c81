package types

import "time"

type SummaryRequest struct {
	MovieID      int64
	PostType     *int
	Threshold    *int
	ForceRefresh bool
	SummaryStyle int
	MaxLength    int
}

type SummaryStats struct {
	TotalPosts     int64 `json:"totalComments"`
	NoSpoilerPosts int64 `json:"noSpoilerComments"`
	SpoilerPosts   int64 `json:"spoilerComments"`
}

// SummaryVO RecordID 为 0 时表示未落库的提示或兜底内容
type SummaryVO struct {
	RecordID       int64         `json:"recordId"`
	MovieID        int64         `json:"movieId"`
	MovieTitle     string        `json:"movieTitle"`
	PostType       int           `json:"postType"`
	SummaryContent string        `json:"summaryContent"`
	SummaryStyle   int           `json:"summaryStyle"`
	Version        int           `json:"version"`
	PostCount      int64         `json:"postCount"`
	CreateTime     time.Time     `json:"createTime"`
	Stats          *SummaryStats `json:"stats,omitempty"`
}

type AIHealthVO struct {
	Available bool `json:"available"`
}
