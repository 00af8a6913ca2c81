package types

import "time"

type RetentionConfigVO struct {
	Days            int       `json:"days"`
	Enabled         bool      `json:"enabled"`
	NextCleanupTime time.Time `json:"nextCleanupTime"`
}

type UpdateRetentionRequest struct {
	Days    *int  `json:"days" binding:"omitempty,gt=0"`
	Enabled *bool `json:"enabled"`
}

type CleanupResultVO struct {
	CleanedCount int `json:"cleanedCount"`
}

const (
	EntityPosts    = "posts"
	EntityComments = "comments"
)

// ModerationVO 管理端软删、恢复后的状态
type ModerationVO struct {
	ID         int64      `json:"id,string"`
	IsDeleted  bool       `json:"isDeleted"`
	DeleteTime *time.Time `json:"deleteTime"`
}
