package dao

import (
	"context"
	"time"

	"github.com/3xSu/FilmComment/models"
	"gorm.io/gorm"
)

type NotificationDAO struct {
	Repo[models.Notification]
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{Repo: NewRepo[models.Notification](db)}
}

// HasRecent 去重窗口内是否已有相同通知
func (d *NotificationDAO) HasRecent(ctx context.Context, userID int64, typ int, relatedID int64, relatedType int, since time.Time) (bool, error) {
	return d.IsExist(ctx,
		"user_id = ? AND type = ? AND related_id = ? AND related_type = ? AND created_at >= ?",
		userID, typ, relatedID, relatedType, since)
}

func (d *NotificationDAO) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return d.FindCount(ctx, "user_id = ? AND is_read = 0", userID)
}

func (d *NotificationDAO) ListByCursor(ctx context.Context, userID int64, cursor *time.Time, limit int) ([]*models.Notification, error) {
	var list []*models.Notification
	query := d.DB(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where("created_at < ?", *cursor)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&list).Error
	return list, translate(err)
}

func (d *NotificationDAO) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return d.FindCount(ctx, "user_id = ?", userID)
}

// MarkRead 只能标记自己的通知
func (d *NotificationDAO) MarkRead(ctx context.Context, id, userID int64) (int64, error) {
	return d.Updates(ctx, map[string]any{"is_read": 1}, "id = ? AND user_id = ? AND is_read = 0", id, userID)
}

func (d *NotificationDAO) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return d.Updates(ctx, map[string]any{"is_read": 1}, "user_id = ? AND is_read = 0", userID)
}

type AiRecordDAO struct {
	Repo[models.AiRecord]
}

func NewAiRecordDAO(db *gorm.DB) *AiRecordDAO {
	return &AiRecordDAO{Repo: NewRepo[models.AiRecord](db)}
}

// Latest (movie_id, post_type) 最新一条，没有时返回 nil
func (d *AiRecordDAO) Latest(ctx context.Context, movieID int64, postType int) (*models.AiRecord, error) {
	var item models.AiRecord
	tx := d.DB(ctx).
		Where("movie_id = ? AND post_type = ?", movieID, postType).
		Order("created_at DESC").
		Order("version DESC").
		Limit(1).
		Find(&item)
	if tx.Error != nil {
		return nil, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, nil
	}
	return &item, nil
}
