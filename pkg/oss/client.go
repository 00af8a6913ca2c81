package oss

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/3xSu/FilmComment/config"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

// Store 对象存储，返回 https://<bucket>.<endpoint>/<key> 形式的地址
type Store struct {
	Client     *oss.Client
	BucketName string
	Endpoint   string
}

func NewStore(cfg *config.OssConfig) *Store {
	ossCfg := oss.LoadDefaultConfig().
		WithEndpoint(cfg.Endpoint).
		WithRegion(cfg.Region).
		WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.AccessKeySecret,
			),
		)

	return &Store{
		Client:     oss.NewClient(ossCfg),
		BucketName: cfg.Bucket,
		Endpoint:   trimScheme(cfg.Endpoint),
	}
}

// Put 上传并返回访问地址
func (s *Store) Put(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error) {
	req := &oss.PutObjectRequest{
		Bucket: oss.Ptr(s.BucketName),
		Key:    oss.Ptr(objectKey),
		Body:   body,
	}
	if contentType != "" {
		req.ContentType = oss.Ptr(contentType)
	}
	if _, err := s.Client.PutObject(ctx, req); err != nil {
		return "", err
	}
	return s.URL(objectKey), nil
}

// DeleteByURL 根据访问地址删除对象
func (s *Store) DeleteByURL(ctx context.Context, url string) error {
	key := ObjectKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("invalid object url: %s", url)
	}
	_, err := s.Client.DeleteObject(ctx, &oss.DeleteObjectRequest{
		Bucket: oss.Ptr(s.BucketName),
		Key:    oss.Ptr(key),
	})
	return err
}

func (s *Store) URL(objectKey string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, s.Endpoint, objectKey)
}

// ObjectKeyFromURL 去掉协议后取第一个 / 之后的部分
func ObjectKeyFromURL(url string) string {
	rest := trimScheme(url)
	idx := strings.Index(rest, "/")
	if idx < 0 || idx == len(rest)-1 {
		return ""
	}
	return rest[idx+1:]
}

func trimScheme(s string) string {
	s = strings.TrimPrefix(s, "https://")
	return strings.TrimPrefix(s, "http://")
}
