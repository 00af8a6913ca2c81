package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	PostStatTTL = 24 * time.Hour
	HotTagTTL   = 6 * time.Hour
)

func PostStatKey(postID int64) string {
	return fmt.Sprintf("post:stat:%d", postID)
}

func HotTagKey(tagID int64) string {
	return fmt.Sprintf("hot:tag:%d", tagID)
}

// Storage JSON 编码的 redis 缓存
type Storage struct {
	redis *redis.Client
}

func NewStorage(rds *redis.Client) *Storage {
	return &Storage{redis: rds}
}

// Get 未命中返回 false
func (s *Storage) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, raw, ttl).Err()
}

// MGet 结果与 keys 顺序一致，未命中为 nil
func (s *Storage) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

// SetMany pipeline 批量写入
func (s *Storage) SetMany(ctx context.Context, items map[string]any, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	_, err := s.redis.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, v := range items {
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key, raw, ttl)
		}
		return nil
	})
	return err
}

func (s *Storage) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.redis.Del(ctx, keys...).Err()
}
