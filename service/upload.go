package service

import (
	"context"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/filecheck"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ IUploadService = (*UploadService)(nil)

type IUploadService interface {
	// UploadPostImage 上传图片并追加到帖子
	UploadPostImage(ctx context.Context, userID, postID int64, header *multipart.FileHeader, sortOrder int) (*types.UploadResp, error)
	// UploadPostVideo 上传视频并替换帖子的视频地址
	UploadPostVideo(ctx context.Context, userID, postID int64, header *multipart.FileHeader) (*types.UploadResp, error)
	UploadCommentImage(ctx context.Context, userID, commentID int64, header *multipart.FileHeader, sortOrder int) (*types.UploadResp, error)
}

type UploadService struct {
	PostDAO         *dao.PostDAO
	PostImageDAO    *dao.PostImageDAO
	CommentDAO      *dao.CommentDAO
	CommentImageDAO *dao.CommentImageDAO
	Store           ObjectStore
}

// objectKey <dir>/<yyyymmdd>/<uuid><ext>
func objectKey(dir, ext string) string {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	return path.Join(dir, time.Now().Format("20060102"), name+ext)
}

type checkFunc func(filename, declared string, size int64, r io.ReadSeeker) (string, error)

// put 校验后上传，返回访问地址
func (s *UploadService) put(ctx context.Context, header *multipart.FileHeader, check checkFunc, dir string, ext func(string) string) (string, error) {
	if header == nil {
		return "", response.Upload(filecheck.ErrEmpty.Error())
	}
	f, err := header.Open()
	if err != nil {
		return "", response.Upload("文件读取失败")
	}
	defer f.Close()

	ct, err := check(header.Filename, header.Header.Get("Content-Type"), header.Size, f)
	if err != nil {
		log.L.Warn("upload rejected", zap.String("filename", header.Filename), zap.Error(err))
		return "", response.Upload(err.Error())
	}

	url, err := s.Store.Put(ctx, objectKey(dir, ext(ct)), f, ct)
	if err != nil {
		log.L.Error("object store put failed", zap.String("dir", dir), zap.Error(err))
		return "", response.Upload("文件上传失败")
	}
	return url, nil
}

func (s *UploadService) ownedPost(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.PostDAO.GetLive(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "帖子不存在或已被删除")
	}
	if post.UserID != userID {
		return nil, response.Unauthorized("无权操作他人帖子")
	}
	return post, nil
}

func (s *UploadService) UploadPostImage(ctx context.Context, userID, postID int64, header *multipart.FileHeader, sortOrder int) (*types.UploadResp, error) {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return nil, err
	}
	url, err := s.put(ctx, header, filecheck.CheckImage, "post-images", filecheck.ImageExt)
	if err != nil {
		return nil, err
	}
	if sortOrder <= 0 {
		sortOrder = 1
	}
	image := &models.PostImage{PostID: postID, ImageURL: url, SortOrder: sortOrder}
	if err := s.PostImageDAO.Create(ctx, image); err != nil {
		s.discard(url)
		return nil, storeErr(err, "")
	}
	return &types.UploadResp{URL: url, SortOrder: sortOrder}, nil
}

func (s *UploadService) UploadPostVideo(ctx context.Context, userID, postID int64, header *multipart.FileHeader) (*types.UploadResp, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.ContentForm != types.ContentFormVideo {
		return nil, response.Invalid("图文帖子不能上传视频")
	}
	url, err := s.put(ctx, header, filecheck.CheckVideo, "post-videos", filecheck.VideoExt)
	if err != nil {
		return nil, err
	}
	if _, err := s.PostDAO.UpdateById(ctx, postID, map[string]any{"video_url": url}); err != nil {
		s.discard(url)
		return nil, storeErr(err, "")
	}
	if post.VideoURL != "" {
		s.discard(post.VideoURL)
	}
	return &types.UploadResp{URL: url}, nil
}

func (s *UploadService) UploadCommentImage(ctx context.Context, userID, commentID int64, header *multipart.FileHeader, sortOrder int) (*types.UploadResp, error) {
	comment, err := s.CommentDAO.GetLive(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "评论不存在或已被删除")
	}
	if comment.UserID != userID {
		return nil, response.Unauthorized("无权操作他人评论")
	}
	url, err := s.put(ctx, header, filecheck.CheckImage, "comment-images", filecheck.ImageExt)
	if err != nil {
		return nil, err
	}
	if sortOrder <= 0 {
		sortOrder = 1
	}
	image := &models.CommentImage{CommentID: commentID, ImageURL: url, SortOrder: sortOrder}
	if err := s.CommentImageDAO.Create(ctx, image); err != nil {
		s.discard(url)
		return nil, storeErr(err, "")
	}
	return &types.UploadResp{URL: url, SortOrder: sortOrder}, nil
}

// discard 入库失败时删除已上传的对象
func (s *UploadService) discard(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Store.DeleteByURL(ctx, url); err != nil {
		log.L.Warn("delete orphan object failed", zap.String("url", url), zap.Error(err))
	}
}
