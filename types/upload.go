package types

type UploadResp struct {
	URL string `json:"url"`
	// SortOrder 图片在帖子或评论中的顺序，视频为 0
	SortOrder int `json:"sortOrder,omitempty"`
}
