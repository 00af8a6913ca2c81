package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/snowflake"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
)

const (
	commentDedupWindow = time.Minute
	likeDedupWindow    = 5 * time.Minute
	excerptRunes       = 50
)

var _ INotificationService = (*NotificationService)(nil)

type INotificationService interface {
	SendCommentNotification(ctx context.Context, targetUserID, commenterID, postID, commentID int64, content string)
	SendLikeNotification(ctx context.Context, targetUserID, likerID, postID, likeID int64)
	SendSystemNotification(ctx context.Context, targetUserID int64, title, content string, relatedID int64, relatedType int)
	UnreadCount(ctx context.Context, userID int64) (*types.UnreadCountVO, error)
	List(ctx context.Context, userID, cursor int64, size int) (*types.CursorPage[types.NotificationVO], error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

type NotificationService struct {
	NotificationDAO *dao.NotificationDAO
	Directory       *UserDirectory
	Pusher          Pusher
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	return string([]rune(s)[:excerptRunes]) + "..."
}

func (s *NotificationService) displayName(ctx context.Context, userID int64) string {
	u, err := s.Directory.Brief(ctx, userID)
	if err != nil || u.Username == "" {
		return fmt.Sprintf("用户%d", userID)
	}
	return u.Username
}

func (s *NotificationService) SendCommentNotification(ctx context.Context, targetUserID, commenterID, postID, commentID int64, content string) {
	if targetUserID == commenterID {
		return
	}
	n := &models.Notification{
		UserID:      targetUserID,
		Type:        types.NotificationComment,
		Title:       "新的评论",
		Content:     fmt.Sprintf("%s 评论了您的帖子: %s", s.displayName(ctx, commenterID), excerpt(content)),
		RelatedID:   commentID,
		RelatedType: types.RelatedComment,
	}
	s.deliver(ctx, n, commentDedupWindow)
}

func (s *NotificationService) SendLikeNotification(ctx context.Context, targetUserID, likerID, postID, likeID int64) {
	if targetUserID == likerID {
		return
	}
	n := &models.Notification{
		UserID:      targetUserID,
		Type:        types.NotificationLike,
		Title:       "新的点赞",
		Content:     fmt.Sprintf("%s 点赞了您的帖子", s.displayName(ctx, likerID)),
		RelatedID:   postID,
		RelatedType: types.RelatedPost,
	}
	if !s.deliver(ctx, n, likeDedupWindow) {
		return
	}
	log.L.Debug("like notification sent", zap.Int64("post_id", postID), zap.Int64("like_id", likeID))
}

func (s *NotificationService) SendSystemNotification(ctx context.Context, targetUserID int64, title, content string, relatedID int64, relatedType int) {
	n := &models.Notification{
		UserID:      targetUserID,
		Type:        types.NotificationSystem,
		Title:       title,
		Content:     content,
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	s.deliver(ctx, n, 0)
}

// deliver 去重、落库后推送，错误只记录日志
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification, window time.Duration) bool {
	if window > 0 {
		dup, err := s.NotificationDAO.HasRecent(ctx, n.UserID, n.Type, n.RelatedID, n.RelatedType, models.Now().Add(-window))
		if err != nil {
			log.L.Error("notification dedup check failed", zap.Int64("user_id", n.UserID), zap.Error(err))
			return false
		}
		if dup {
			return false
		}
	}

	n.ID = snowflake.GenID()
	if err := s.NotificationDAO.Create(ctx, n); err != nil {
		log.L.Error("notification persist failed", zap.Int64("user_id", n.UserID), zap.Int("type", n.Type), zap.Error(err))
		return false
	}
	push(s.Pusher, n.UserID, &types.WsFrame{
		Type:      types.FrameNotification,
		Data:      toNotificationVO(n),
		Timestamp: time.Now().UnixMilli(),
	})
	return true
}

func toNotificationVO(n *models.Notification) types.NotificationVO {
	return types.NotificationVO{
		ID:          n.ID,
		Type:        n.Type,
		Title:       n.Title,
		Content:     n.Content,
		RelatedID:   n.RelatedID,
		RelatedType: n.RelatedType,
		IsRead:      n.IsRead == 1,
		CreateTime:  n.CreatedAt,
	}
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (*types.UnreadCountVO, error) {
	n, err := s.NotificationDAO.UnreadCount(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &types.UnreadCountVO{Count: n}, nil
}

func (s *NotificationService) List(ctx context.Context, userID, cursor int64, size int) (*types.CursorPage[types.NotificationVO], error) {
	size = types.ClampSize(size)
	list, err := s.NotificationDAO.ListByCursor(ctx, userID, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page := types.NewCursorPage[types.NotificationVO](len(list))
	for _, n := range list {
		page.List = append(page.List, toNotificationVO(n))
	}
	if cursor <= 0 {
		total, err := s.NotificationDAO.CountByUser(ctx, userID)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	if len(list) == size {
		page.HasNext = true
		page.NextCursor = list[len(list)-1].CreatedAt.UnixNano()
	}
	return page, nil
}

// MarkRead 只作用于本人的通知，重复调用无副作用
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	_, err := s.NotificationDAO.MarkRead(ctx, id, userID)
	return storeErr(err, "")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := s.NotificationDAO.MarkAllRead(ctx, userID)
	return storeErr(err, "")
}
