package models

import "time"

// Notification 站内通知
type Notification struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id,string"`
	UserID      int64     `gorm:"column:user_id;not null;index:idx_notification_user_created,priority:1" json:"userId"`
	Type        int       `gorm:"column:type;not null" json:"type"`
	Title       string    `gorm:"column:title;size:100;not null" json:"title"`
	Content     string    `gorm:"column:content;size:500" json:"content"`
	RelatedID   int64     `gorm:"column:related_id;not null;default:0" json:"relatedId,string"`
	RelatedType int       `gorm:"column:related_type;not null;default:0" json:"relatedType"`
	IsRead      int8      `gorm:"column:is_read;not null;default:0" json:"isRead"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime:false;index:idx_notification_user_created,priority:2" json:"createTime"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) SetTimestamps(now time.Time, creating bool) {
	if creating && n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
}

// AiRecord AI 总结记录，同一 (movie_id, post_type) 以最新一条为准
type AiRecord struct {
	RecordID  int64     `gorm:"column:record_id;primaryKey;autoIncrement" json:"recordId"`
	UserID    int64     `gorm:"column:user_id;not null" json:"userId"`
	MovieID   int64     `gorm:"column:movie_id;not null;index:idx_ai_movie_type_created,priority:1" json:"movieId"`
	PostType  int       `gorm:"column:post_type;not null;default:0;index:idx_ai_movie_type_created,priority:2" json:"postType"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	PostCount int64     `gorm:"column:post_count;not null" json:"postCount"`
	Version   int       `gorm:"column:version;not null;default:1" json:"version"`
	Threshold int       `gorm:"column:threshold;not null" json:"threshold"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false;index:idx_ai_movie_type_created,priority:3" json:"createTime"`
}

func (AiRecord) TableName() string { return "ai_records" }

func (a *AiRecord) SetTimestamps(now time.Time, creating bool) {
	if creating && a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
}
