package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

func TestSetLikeCount_RefreshesCacheAndBroadcasts(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	m := e.seedMovie(t, "Alien")
	p := e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())

	stat, err := e.stats.GetStats(ctx, p.PostID)
	require.NoError(t, err)
	assert.Zero(t, stat.LikeCount)

	require.NoError(t, e.stats.SetLikeCount(ctx, p.PostID, 42))

	raw, err := e.mr.Get(cache.PostStatKey(p.PostID))
	require.NoError(t, err)
	assert.Equal(t, int64(42), gjson.Get(raw, "likeCount").Int())

	stat, err = e.stats.GetStats(ctx, p.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stat.LikeCount)

	frames := e.pusher.broadcasts()
	require.Len(t, frames, 1)
	assert.Equal(t, types.FramePostStatUpdate, frames[0].Type)
	assert.Equal(t, int64(42), frames[0].Data.(*types.PostStat).LikeCount)

	// 负数按 0 写入
	require.NoError(t, e.stats.SetLikeCount(ctx, p.PostID, -3))
	row, err := e.postDAO.Stat(ctx, p.PostID)
	require.NoError(t, err)
	assert.Zero(t, row.LikeCount)
	frames = e.pusher.broadcasts()
	require.Len(t, frames, 2)
	assert.Zero(t, frames[1].Data.(*types.PostStat).LikeCount)
}

func TestInteraction_CounterFailureRollsBackEdge(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	fan := e.seedUser(t, "fan", types.RoleUser)
	m := e.seedMovie(t, "Alien")
	p := e.seedPost(t, author.UserID, m.MovieID, types.PostTypeNormal, models.Now())

	errCounter := errors.New("counter update failed")
	var failing atomic.Bool
	require.NoError(t, e.db.Callback().Update().Before("gorm:update").Register("test:fail_counter", func(db *gorm.DB) {
		if failing.Load() && db.Statement.Table == "posts" {
			_ = db.AddError(errCounter)
		}
	}))

	failing.Store(true)
	assert.ErrorIs(t, e.stats.Like(ctx, fan.UserID, p.PostID), errCounter)
	assert.ErrorIs(t, e.stats.Collect(ctx, fan.UserID, p.PostID), errCounter)
	assert.Zero(t, e.count(t, &models.PostLike{}))
	assert.Zero(t, e.count(t, &models.Collection{}))
	assert.Empty(t, e.pusher.broadcasts())
	assert.Empty(t, e.pusher.sentTo(author.UserID))

	failing.Store(false)
	require.NoError(t, e.stats.Like(ctx, fan.UserID, p.PostID))
	require.NoError(t, e.stats.Collect(ctx, fan.UserID, p.PostID))

	failing.Store(true)
	assert.ErrorIs(t, e.stats.Unlike(ctx, fan.UserID, p.PostID), errCounter)
	assert.ErrorIs(t, e.stats.Uncollect(ctx, fan.UserID, p.PostID), errCounter)
	failing.Store(false)

	// 边与计数保持一致
	assert.Equal(t, int64(1), e.count(t, &models.PostLike{}))
	assert.Equal(t, int64(1), e.count(t, &models.Collection{}))
	row, err := e.postDAO.Stat(ctx, p.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.LikeCount)
	assert.Equal(t, int64(1), row.CollectCount)
}

func TestGetStats_CanceledCallerStillLoads(t *testing.T) {
	e := setupEnv(t)
	m := e.seedMovie(t, "Alien")
	p := e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stat, err := e.stats.GetStats(ctx, p.PostID)
	require.NoError(t, err)
	assert.Equal(t, p.PostID, stat.PostID)
	assert.True(t, e.mr.Exists(cache.PostStatKey(p.PostID)))
}

func TestListCollections(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	reader := e.seedUser(t, "reader", types.RoleUser)
	m := e.seedMovie(t, "Alien")

	base := models.Now().Add(-time.Hour)
	posts := make([]*models.Post, 4)
	for i := range posts {
		posts[i] = e.seedPost(t, author.UserID, m.MovieID, types.PostTypeNormal, base.Add(time.Duration(i)*time.Minute))
	}
	// 收藏顺序与发帖顺序不同
	for i, idx := range []int{2, 0, 3, 1} {
		c := &models.Collection{UserID: reader.UserID, PostID: posts[idx].PostID, CreatedAt: base.Add(time.Duration(i+10) * time.Minute)}
		require.NoError(t, e.db.Create(c).Error)
	}
	require.NoError(t, e.db.Create(&models.Collection{UserID: author.UserID, PostID: posts[0].PostID, CreatedAt: base}).Error)
	n, err := e.postDAO.SoftDelete(ctx, posts[3].PostID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	page, err := e.feed.ListCollections(ctx, reader.UserID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.List, 2)
	assert.Equal(t, posts[1].PostID, page.List[0].PostID)
	assert.Equal(t, posts[0].PostID, page.List[1].PostID)
	assert.Equal(t, "author", page.List[0].Username)
	require.True(t, page.HasNext)

	next, err := e.feed.ListCollections(ctx, reader.UserID, page.NextCursor, 2)
	require.NoError(t, err)
	assert.Equal(t, types.NoTotal, next.Total)
	require.Len(t, next.List, 1)
	assert.Equal(t, posts[2].PostID, next.List[0].PostID)
	assert.False(t, next.HasNext)

	empty, err := e.feed.ListCollections(ctx, 999, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.List)
	assert.Zero(t, empty.Total)
}
