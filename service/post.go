package service

import (
	"context"
	"errors"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/pkg/snowflake"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
)

var _ IPostService = (*PostService)(nil)

type IPostService interface {
	Publish(ctx context.Context, actor types.Actor, req *types.PostPublishRequest) (*types.PostPublishVO, error)
	Detail(ctx context.Context, actor types.Actor, postID int64) (*types.PostDetailVO, error)
	// Delete 作者删除自己的帖子（软删）
	Delete(ctx context.Context, userID, postID int64) error
}

type PostService struct {
	Tx            *dao.TxManager
	PostDAO       *dao.PostDAO
	PostImageDAO  *dao.PostImageDAO
	PostTagDAO    *dao.PostTagDAO
	TagDAO        *dao.TagDAO
	PostLikeDAO   *dao.PostLikeDAO
	CollectionDAO *dao.CollectionDAO
	Catalog       *MovieCatalog
	Relations     IRelationService
	Tags          ITagService
	Stats         IPostStatService
	Feed          IFeedService
	Notifier      INotificationService
	Store         ObjectStore
}

func (s *PostService) Publish(ctx context.Context, actor types.Actor, req *types.PostPublishRequest) (*types.PostPublishVO, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	vo, err := s.publish(ctx, actor, req)
	if err != nil {
		log.L.Error("publish post failed",
			zap.Int64("user_id", actor.UserID),
			zap.Int64("movie_id", req.MovieID),
			zap.Error(err))
		s.Notifier.SendSystemNotification(ctx, actor.UserID, "帖子发布失败",
			"您的帖子发布失败，原因："+err.Error(), 0, 0)
		s.cleanupUploads(ctx, req)
		return nil, err
	}
	return vo, nil
}

func (s *PostService) publish(ctx context.Context, actor types.Actor, req *types.PostPublishRequest) (*types.PostPublishVO, error) {
	if _, err := s.Catalog.Live(ctx, req.MovieID); err != nil {
		return nil, storeErr(err, "电影不存在")
	}
	if types.IsSpoilerPostType(req.PostType) {
		ok, err := s.Relations.CanViewSpoiler(ctx, actor, req.MovieID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, response.Forbidden("需要将这部电影标记为\"已看过\"才能发布深度讨论区帖子")
		}
	}

	tagIDs := uniq(req.TagIDs)
	if len(tagIDs) > 0 {
		existing, err := s.TagDAO.GetByIDs(ctx, tagIDs)
		if err != nil {
			return nil, storeErr(err, "")
		}
		if len(existing) != len(tagIDs) {
			return nil, response.Invalid("标签不存在")
		}
	}

	post := &models.Post{
		PostID:      snowflake.GenID(),
		UserID:      actor.UserID,
		MovieID:     req.MovieID,
		Title:       req.Title,
		Content:     req.Content,
		PostType:    req.PostType,
		ContentForm: req.ContentForm,
		VideoURL:    req.VideoURL,
	}
	err := s.Tx.Transaction(ctx, func(ctx context.Context) error {
		for _, name := range req.NewTagNames {
			tag, err := s.Tags.CreateTagIfNotExists(ctx, name)
			if err != nil {
				return err
			}
			tagIDs = append(tagIDs, tag.TagID)
		}
		tagIDs = uniq(tagIDs)

		if err := s.PostDAO.Create(ctx, post); err != nil {
			return err
		}
		edges := make([]*models.PostTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			edges = append(edges, &models.PostTag{PostID: post.PostID, TagID: id, CreatedAt: post.CreatedAt})
		}
		if err := s.PostTagDAO.Creates(ctx, edges); err != nil {
			return err
		}
		images := make([]*models.PostImage, 0, len(req.ImageURLs))
		for i, url := range req.ImageURLs {
			images = append(images, &models.PostImage{PostID: post.PostID, ImageURL: url, SortOrder: i + 1})
		}
		return s.PostImageDAO.Creates(ctx, images)
	})
	if err != nil {
		var be *response.BizError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, storeErr(err, "")
	}

	s.Tags.InvalidateHot(ctx, tagIDs...)
	log.L.Info("post published", zap.Int64("post_id", post.PostID), zap.Int("tags", len(tagIDs)))
	return &types.PostPublishVO{PostID: post.PostID, Title: post.Title, CreateTime: post.CreatedAt}, nil
}

// cleanupUploads 发布失败时删除已上传的文件
func (s *PostService) cleanupUploads(ctx context.Context, req *types.PostPublishRequest) {
	urls := append([]string{}, req.ImageURLs...)
	if req.VideoURL != "" {
		urls = append(urls, req.VideoURL)
	}
	deleted := 0
	for _, url := range urls {
		if err := s.Store.DeleteByURL(ctx, url); err != nil {
			log.L.Warn("delete uploaded object failed", zap.String("url", url), zap.Error(err))
			continue
		}
		deleted++
	}
	if len(urls) > 0 {
		log.L.Info("uploaded objects cleaned", zap.Int("deleted", deleted), zap.Int("total", len(urls)))
	}
}

func (s *PostService) Detail(ctx context.Context, actor types.Actor, postID int64) (*types.PostDetailVO, error) {
	post, err := s.PostDAO.GetLive(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "帖子不存在")
	}
	if types.IsSpoilerPostType(post.PostType) && actor.UserID != post.UserID {
		ok, err := s.Relations.CanViewSpoiler(ctx, actor, post.MovieID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, response.Forbidden("需要将这部电影标记为\"已看过\"才能查看深度讨论区帖子")
		}
	}

	if err := s.Stats.IncrementView(ctx, postID); err != nil {
		log.L.Warn("increment view failed", zap.Int64("post_id", postID), zap.Error(err))
	} else {
		post.ViewCount++
	}

	list, err := s.Feed.Hydrate(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	vo := &types.PostDetailVO{PostVO: list[0], ImageURLs: make([]string, 0)}
	if movie, err := s.Catalog.Brief(ctx, post.MovieID); err == nil {
		vo.MovieTitle = movie.Title
	}
	images, err := s.PostImageDAO.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	for _, img := range images {
		vo.ImageURLs = append(vo.ImageURLs, img.ImageURL)
	}

	if !actor.IsAnonymous() {
		if vo.IsLiked, err = s.PostLikeDAO.IsLiked(ctx, actor.UserID, postID); err != nil {
			return nil, storeErr(err, "")
		}
		if vo.IsCollected, err = s.CollectionDAO.IsCollected(ctx, actor.UserID, postID); err != nil {
			return nil, storeErr(err, "")
		}
	}
	return vo, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID int64) error {
	post, err := s.PostDAO.GetLive(ctx, postID)
	if err != nil {
		return storeErr(err, "帖子不存在")
	}
	if post.UserID != userID {
		return response.Unauthorized("只能删除自己的帖子")
	}
	if _, err := s.PostDAO.SoftDelete(ctx, postID); err != nil {
		return storeErr(err, "")
	}
	tagIDs, err := s.PostTagDAO.TagIDsByPost(ctx, postID)
	if err != nil {
		log.L.Warn("load post tags failed", zap.Int64("post_id", postID), zap.Error(err))
	}
	s.Tags.InvalidateHot(ctx, tagIDs...)
	log.L.Info("post soft deleted by owner", zap.Int64("post_id", postID), zap.Int64("user_id", userID))
	return nil
}
