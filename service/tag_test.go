package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// countQueries 统计读库次数
func countQueries(t *testing.T, db *gorm.DB) *atomic.Int32 {
	t.Helper()
	var n atomic.Int32
	inc := func(*gorm.DB) { n.Add(1) }
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count_query", inc))
	require.NoError(t, db.Callback().Row().After("gorm:row").Register("test:count_row", inc))
	return &n
}

func tagPost(t *testing.T, e *testEnv, postID, tagID int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.PostTag{PostID: postID, TagID: tagID, CreatedAt: models.Now()}).Error)
}

func TestBatchGetHotInfo_FilterCacheAndBackfill(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	m := e.seedMovie(t, "Heat")
	p1 := e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())
	p2 := e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())

	var ids []int64
	for _, name := range []string{"犯罪", "枪战", "洛杉矶"} {
		tag, err := e.tags.CreateTagIfNotExists(ctx, name)
		require.NoError(t, err)
		tagPost(t, e, p1.PostID, tag.TagID)
		ids = append(ids, tag.TagID)
	}
	// 绕过服务直接落库的标签不在过滤器中
	hidden := &models.Tag{TagName: "隐藏"}
	require.NoError(t, e.db.Create(hidden).Error)
	tagPost(t, e, p1.PostID, hidden.TagID)
	require.False(t, e.tags.Filter.MightContain(hidden.TagID))

	warm, err := e.tags.GetHotInfo(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 2.8, warm.HotScore)
	// 缓存命中时不会看到新的使用记录
	tagPost(t, e, p2.PostID, ids[0])

	queries := countQueries(t, e.db)

	commands := e.mr.CommandCount()
	out, err := e.tags.BatchGetHotInfo(ctx, []int64{hidden.TagID, 987654321})
	require.NoError(t, err)
	assert.Equal(t, []types.TagHotVO{{TagID: hidden.TagID}, {TagID: 987654321}}, out)
	assert.Zero(t, queries.Load())
	assert.Equal(t, commands, e.mr.CommandCount())

	out, err = e.tags.BatchGetHotInfo(ctx, []int64{ids[2], ids[0], hidden.TagID, ids[1], ids[0]})
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, "洛杉矶", out[0].TagName)
	assert.Equal(t, 2.8, out[0].HotScore)
	assert.Equal(t, *warm, out[1])
	assert.Equal(t, types.TagHotVO{TagID: hidden.TagID}, out[2])
	assert.Equal(t, "枪战", out[3].TagName)
	assert.Equal(t, int64(1), out[3].DistinctPosts)
	assert.Equal(t, out[1], out[4])
	assert.NotZero(t, queries.Load())

	// 未命中的标签已回填
	assert.True(t, e.mr.Exists(cache.HotTagKey(ids[1])))
	assert.True(t, e.mr.Exists(cache.HotTagKey(ids[2])))
	assert.False(t, e.mr.Exists(cache.HotTagKey(hidden.TagID)))

	// 全部命中只需一次 MGET
	queries.Store(0)
	commands = e.mr.CommandCount()
	out, err = e.tags.BatchGetHotInfo(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.8, 2.8, 2.8}, []float64{out[0].HotScore, out[1].HotScore, out[2].HotScore})
	assert.Zero(t, queries.Load())
	assert.Equal(t, commands+1, e.mr.CommandCount())

	// 失效后重新计算出最新热度
	e.tags.InvalidateHot(ctx, ids[0])
	fresh, err := e.tags.GetHotInfo(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 5.6, fresh.HotScore)
}

func TestGetHotInfo_CanceledCallerStillLoads(t *testing.T) {
	e := setupEnv(t)
	m := e.seedMovie(t, "Heat")
	p := e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())
	tag, err := e.tags.CreateTagIfNotExists(context.Background(), "犯罪")
	require.NoError(t, err)
	tagPost(t, e, p.PostID, tag.TagID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	vo, err := e.tags.GetHotInfo(ctx, tag.TagID)
	require.NoError(t, err)
	assert.Equal(t, 2.8, vo.HotScore)
	assert.True(t, e.mr.Exists(cache.HotTagKey(tag.TagID)))
}

func TestListTagsPrefix(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	base := models.Now().Add(-time.Hour)
	for i, name := range []string{"悬疑片", "科幻", "悬疑剧", "推理悬疑", "悬疑小说"} {
		tag := &models.Tag{TagName: name, Timestamps: models.Timestamps{CreatedAt: base.Add(time.Duration(i) * time.Second)}}
		require.NoError(t, e.db.Create(tag).Error)
	}

	empty, err := e.tags.ListTagsPrefix(ctx, "  ", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.List)
	assert.Zero(t, empty.Total)
	assert.False(t, empty.HasNext)

	page, err := e.tags.ListTagsPrefix(ctx, "悬疑", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.List, 2)
	assert.Equal(t, "悬疑小说", page.List[0].TagName)
	assert.Equal(t, "悬疑剧", page.List[1].TagName)
	require.True(t, page.HasNext)

	next, err := e.tags.ListTagsPrefix(ctx, "悬疑", page.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, types.NoTotal, next.Total)
	require.Len(t, next.List, 1)
	assert.Equal(t, "悬疑片", next.List[0].TagName)
	assert.False(t, next.HasNext)

	// 前缀匹配不包含中间命中
	all, err := e.tags.ListTags(ctx, "悬疑", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)

	none, err := e.tags.ListTagsPrefix(ctx, "动画", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none.List)
	assert.Zero(t, none.Total)
}
