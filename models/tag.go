package models

// Tag 标签
type Tag struct {
	TagID      int64   `gorm:"column:tag_id;primaryKey;autoIncrement" json:"tagId"`
	TagName    string  `gorm:"column:tag_name;size:50;not null;uniqueIndex:uk_tag_name" json:"tagName"`
	HotScore   float64 `gorm:"column:hot_score;not null;default:0;index:idx_tag_hot" json:"hotScore"`
	UsageCount int64   `gorm:"column:usage_count;not null;default:0" json:"usageCount"`
	Timestamps
}

func (Tag) TableName() string { return "tags" }
