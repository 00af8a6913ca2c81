package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/bloom"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// 热度权重
const (
	weightTotal    = 0.5
	weightRecent   = 1.5
	weightDistinct = 0.8
	recentWindow   = 30 * 24 * time.Hour
	defaultHotSize = 5
)

var _ ITagService = (*TagService)(nil)

type ITagService interface {
	GetHotInfo(ctx context.Context, tagID int64) (*types.TagHotVO, error)
	BatchGetHotInfo(ctx context.Context, tagIDs []int64) ([]types.TagHotVO, error)
	CreateTagIfNotExists(ctx context.Context, name string) (*models.Tag, error)
	InvalidateHot(ctx context.Context, tagIDs ...int64)
	HotTags(ctx context.Context, limit int) ([]types.TagVO, error)
	ListTags(ctx context.Context, keyword string, cursor int64, size int) (*types.CursorPage[types.TagVO], error)
	ListTagsPrefix(ctx context.Context, keyword string, cursor int64, size int) (*types.CursorPage[types.TagVO], error)
}

type TagService struct {
	TagDAO     *dao.TagDAO
	PostTagDAO *dao.PostTagDAO
	Cache      *cache.Storage
	Filter     *bloom.TagFilter

	sf singleflight.Group `wire:"-"`
}

// NewTagFilter 启动时加载全部标签ID
func NewTagFilter(tagDAO *dao.TagDAO) (*bloom.TagFilter, error) {
	ids, err := tagDAO.AllIDs(context.Background())
	if err != nil {
		return nil, err
	}
	f := bloom.NewTagFilter()
	f.Load(ids)
	log.L.Info("tag bloom filter loaded", zap.Int("tags", len(ids)))
	return f, nil
}

func hotScore(u dao.TagUsage) float64 {
	score := weightTotal*float64(u.TotalUses) + weightRecent*float64(u.RecentUses) + weightDistinct*float64(u.DistinctPosts)
	return math.Round(score*100) / 100
}

func (s *TagService) GetHotInfo(ctx context.Context, tagID int64) (*types.TagHotVO, error) {
	if !s.Filter.MightContain(tagID) {
		return &types.TagHotVO{TagID: tagID}, nil
	}

	var vo types.TagHotVO
	hit, err := s.Cache.Get(ctx, cache.HotTagKey(tagID), &vo)
	if err != nil {
		log.L.Warn("hot tag cache read failed", zap.Int64("tag_id", tagID), zap.Error(err))
	}
	if hit {
		return &vo, nil
	}

	v, err, _ := s.sf.Do(strconv.FormatInt(tagID, 10), func() (any, error) {
		computed, err := s.compute(context.WithoutCancel(ctx), []int64{tagID})
		if err != nil {
			return nil, err
		}
		return computed[tagID], nil
	})
	if err != nil {
		return nil, storeErr(err, "")
	}
	out := v.(types.TagHotVO)
	return &out, nil
}

func (s *TagService) BatchGetHotInfo(ctx context.Context, tagIDs []int64) ([]types.TagHotVO, error) {
	out := make([]types.TagHotVO, len(tagIDs))
	keys := make([]string, 0, len(tagIDs))
	candidates := make([]int64, 0, len(tagIDs))
	for i, id := range tagIDs {
		out[i] = types.TagHotVO{TagID: id}
		if s.Filter.MightContain(id) {
			keys = append(keys, cache.HotTagKey(id))
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return out, nil
	}

	found := make(map[int64]types.TagHotVO, len(candidates))
	raws, err := s.Cache.MGet(ctx, keys)
	if err != nil {
		log.L.Warn("hot tag batch cache read failed", zap.Error(err))
		raws = make([][]byte, len(keys))
	}
	miss := make([]int64, 0)
	for i, raw := range raws {
		var vo types.TagHotVO
		if raw != nil && json.Unmarshal(raw, &vo) == nil {
			found[candidates[i]] = vo
			continue
		}
		miss = append(miss, candidates[i])
	}
	if len(miss) > 0 {
		computed, err := s.compute(ctx, uniq(miss))
		if err != nil {
			return nil, storeErr(err, "")
		}
		for id, vo := range computed {
			found[id] = vo
		}
	}

	for i, id := range tagIDs {
		if vo, ok := found[id]; ok {
			out[i] = vo
		}
	}
	return out, nil
}

// compute 一次分组查询计算热度，写回 tags 表并回填缓存
func (s *TagService) compute(ctx context.Context, tagIDs []int64) (map[int64]types.TagHotVO, error) {
	tags, err := s.TagDAO.GetByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	usage, err := s.PostTagDAO.Usage(ctx, tagIDs, models.Now().Add(-recentWindow))
	if err != nil {
		return nil, err
	}

	out := make(map[int64]types.TagHotVO, len(tagIDs))
	for _, id := range tagIDs {
		out[id] = types.TagHotVO{TagID: id}
	}
	toCache := make(map[string]any, len(tags))
	for _, tag := range tags {
		u := usage[tag.TagID]
		vo := types.TagHotVO{
			TagID:         tag.TagID,
			TagName:       tag.TagName,
			HotScore:      hotScore(u),
			TotalUses:     u.TotalUses,
			RecentUses:    u.RecentUses,
			DistinctPosts: u.DistinctPosts,
		}
		out[tag.TagID] = vo
		toCache[cache.HotTagKey(tag.TagID)] = vo
		if err := s.TagDAO.SaveHot(ctx, tag.TagID, vo.HotScore, vo.TotalUses); err != nil {
			log.L.Warn("save tag hot score failed", zap.Int64("tag_id", tag.TagID), zap.Error(err))
		}
	}
	if err := s.Cache.SetMany(ctx, toCache, cache.HotTagTTL); err != nil {
		log.L.Warn("hot tag cache write failed", zap.Error(err))
	}
	return out, nil
}

func (s *TagService) CreateTagIfNotExists(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 1 || n > 50 {
		return nil, response.Invalid("标签名长度应为 1-50")
	}
	tag, err := s.TagDAO.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, dao.ErrNotFound) {
		return nil, storeErr(err, "")
	}

	tag = &models.Tag{TagName: name}
	if err := s.TagDAO.Create(ctx, tag); err != nil {
		if errors.Is(err, dao.ErrUniqueViolation) {
			return s.TagDAO.GetByName(ctx, name)
		}
		return nil, storeErr(err, "")
	}
	s.Filter.Put(tag.TagID)
	return tag, nil
}

func (s *TagService) InvalidateHot(ctx context.Context, tagIDs ...int64) {
	if len(tagIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(tagIDs))
	for _, id := range uniq(tagIDs) {
		keys = append(keys, cache.HotTagKey(id))
	}
	if err := s.Cache.Del(ctx, keys...); err != nil {
		log.L.Warn("hot tag cache invalidate failed", zap.Int64s("tag_ids", tagIDs), zap.Error(err))
	}
}

func toTagVO(t *models.Tag) types.TagVO {
	return types.TagVO{
		TagID:      t.TagID,
		TagName:    t.TagName,
		HotScore:   t.HotScore,
		UsageCount: t.UsageCount,
		CreateTime: t.CreatedAt,
	}
}

func (s *TagService) HotTags(ctx context.Context, limit int) ([]types.TagVO, error) {
	if limit <= 0 {
		limit = defaultHotSize
	}
	limit = types.ClampSize(limit)
	tags, err := s.TagDAO.Hot(ctx, limit)
	if err != nil {
		return nil, storeErr(err, "")
	}
	out := make([]types.TagVO, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagVO(t))
	}
	return out, nil
}

func (s *TagService) ListTags(ctx context.Context, keyword string, cursor int64, size int) (*types.CursorPage[types.TagVO], error) {
	keyword = strings.TrimSpace(keyword)
	size = types.ClampSize(size)
	tags, err := s.TagDAO.ListByCursor(ctx, keyword, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page := tagPage(tags, size)
	if cursor <= 0 {
		total, err := s.TagDAO.CountKeyword(ctx, keyword)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	return page, nil
}

func (s *TagService) ListTagsPrefix(ctx context.Context, keyword string, cursor int64, size int) (*types.CursorPage[types.TagVO], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return types.EmptyPage[types.TagVO](), nil
	}
	size = types.ClampSize(size)
	tags, err := s.TagDAO.ListByPrefix(ctx, keyword, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page := tagPage(tags, size)
	if cursor <= 0 {
		total, err := s.TagDAO.CountPrefix(ctx, keyword)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	return page, nil
}

func tagPage(tags []*models.Tag, size int) *types.CursorPage[types.TagVO] {
	page := types.NewCursorPage[types.TagVO](len(tags))
	for _, t := range tags {
		page.List = append(page.List, toTagVO(t))
	}
	if len(tags) == size {
		page.HasNext = true
		page.NextCursor = tags[len(tags)-1].CreatedAt.UnixNano()
	}
	return page
}
