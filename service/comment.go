package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/pkg/snowflake"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
)

const maxCommentRunes = 1000

var _ ICommentService = (*CommentService)(nil)

type ICommentService interface {
	Publish(ctx context.Context, userID int64, req *types.PublishCommentRequest) (*types.CommentVO, error)
	// Delete 作者删除自己的评论（软删）
	Delete(ctx context.Context, userID, commentID int64) error
}

type CommentService struct {
	Tx              *dao.TxManager
	PostDAO         *dao.PostDAO
	CommentDAO      *dao.CommentDAO
	CommentImageDAO *dao.CommentImageDAO
	Directory       *UserDirectory
	Stats           IPostStatService
	Notifier        INotificationService
}

func (s *CommentService) Publish(ctx context.Context, userID int64, req *types.PublishCommentRequest) (*types.CommentVO, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || utf8.RuneCountInString(content) > maxCommentRunes {
		return nil, response.Invalid("评论内容长度应为 1-1000")
	}
	if len(req.ImageURLs) > 9 {
		return nil, response.Invalid("评论图片最多 9 张")
	}

	post, err := s.PostDAO.GetLive(ctx, req.PostID)
	if err != nil {
		return nil, storeErr(err, "帖子不存在")
	}

	var parent *models.Comment
	if req.ParentID != 0 {
		if parent, err = s.CommentDAO.GetLive(ctx, req.ParentID); err != nil {
			return nil, storeErr(err, "父评论不存在")
		}
		if parent.PostID != req.PostID {
			return nil, response.Invalid("父评论不属于该帖子")
		}
	}

	comment := &models.Comment{
		CommentID: snowflake.GenID(),
		UserID:    userID,
		PostID:    req.PostID,
		Content:   content,
	}
	if parent != nil {
		// 回复的回复挂到一级评论下
		comment.ParentID = parent.CommentID
		if parent.ParentID != 0 {
			comment.ParentID = parent.ParentID
		}
	}

	err = s.Tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.CommentDAO.Create(ctx, comment); err != nil {
			return err
		}
		images := make([]*models.CommentImage, 0, len(req.ImageURLs))
		for i, url := range req.ImageURLs {
			images = append(images, &models.CommentImage{CommentID: comment.CommentID, ImageURL: url, SortOrder: i + 1})
		}
		return s.CommentImageDAO.Creates(ctx, images)
	})
	if err != nil {
		return nil, storeErr(err, "")
	}

	if err := s.Stats.RecountComments(ctx, post.PostID); err != nil {
		log.L.Warn("recount comments failed", zap.Int64("post_id", post.PostID), zap.Error(err))
	}

	s.Notifier.SendCommentNotification(ctx, post.UserID, userID, post.PostID, comment.CommentID, content)
	if parent != nil && parent.UserID != post.UserID {
		s.Notifier.SendCommentNotification(ctx, parent.UserID, userID, post.PostID, comment.CommentID, content)
	}

	vo := toCommentVO(comment)
	if len(req.ImageURLs) > 0 {
		vo.ImageURLs = append(vo.ImageURLs, req.ImageURLs...)
	}
	if u, err := s.Directory.Brief(ctx, userID); err == nil {
		vo.Username = u.Username
		vo.Avatar = u.AvatarURL
	}
	return &vo, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, commentID int64) error {
	c, err := s.CommentDAO.GetLive(ctx, commentID)
	if err != nil {
		return storeErr(err, "评论不存在")
	}
	if c.UserID != userID {
		return response.Unauthorized("只能删除自己的评论")
	}
	if _, err := s.CommentDAO.SoftDelete(ctx, commentID); err != nil {
		return storeErr(err, "")
	}
	if err := s.Stats.RecountComments(ctx, c.PostID); err != nil {
		log.L.Warn("recount comments failed", zap.Int64("post_id", c.PostID), zap.Error(err))
	}
	return nil
}
