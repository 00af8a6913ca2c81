package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryReq(movieID int64) *types.SummaryRequest {
	return &types.SummaryRequest{MovieID: movieID}
}

func TestSummarize_StalenessRules(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.summary.Config.Summary.CacheMinutes = 0
	actor := e.seedUser(t, "reader", types.RoleUser)
	m := e.seedMovie(t, "Oldboy")

	vo, err := e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Zero(t, vo.RecordID)
	assert.Contains(t, vo.SummaryContent, "快来发表第一个帖子吧")

	addPosts := func(n int) {
		for i := 0; i < n; i++ {
			e.seedPost(t, actor.UserID, m.MovieID, types.PostTypeNormal, models.Now())
		}
	}

	addPosts(2)
	vo, err = e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Zero(t, vo.RecordID)
	assert.Contains(t, vo.SummaryContent, "(2条)")
	assert.Equal(t, 0, e.model.callCount())

	addPosts(1)
	v1, err := e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.NotZero(t, v1.RecordID)
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, int64(3), v1.PostCount)
	assert.Equal(t, 1, e.model.callCount())

	addPosts(1)
	vo, err = e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Equal(t, v1.RecordID, vo.RecordID)
	assert.Equal(t, 1, e.model.callCount())

	addPosts(2)
	v2, err := e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, int64(6), v2.PostCount)
	assert.Equal(t, 2, e.model.callCount())
	require.NotNil(t, v2.Stats)
	assert.Equal(t, int64(6), v2.Stats.TotalPosts)
	assert.Equal(t, int64(6), v2.Stats.NoSpoilerPosts)
	assert.Equal(t, int64(0), v2.Stats.SpoilerPosts)

	// 帖子数未变化时不再生成
	vo, err = e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Equal(t, v2.RecordID, vo.RecordID)
	assert.Equal(t, 2, e.model.callCount())

	latest, err := e.aiRecordDAO.Latest(ctx, m.MovieID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
}

func TestSummarize_CachedWithinWindow(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	actor := e.seedUser(t, "reader", types.RoleUser)
	m := e.seedMovie(t, "Mother")
	for i := 0; i < 3; i++ {
		e.seedPost(t, actor.UserID, m.MovieID, types.PostTypeNormal, models.Now())
	}
	v1, err := e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		e.seedPost(t, actor.UserID, m.MovieID, types.PostTypeNormal, models.Now())
	}

	vo, err := e.summary.Summarize(ctx, actor, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Equal(t, v1.RecordID, vo.RecordID)

	forced := summaryReq(m.MovieID)
	forced.ForceRefresh = true
	vo, err = e.summary.Summarize(ctx, actor, forced)
	require.NoError(t, err)
	assert.Equal(t, 2, vo.Version)
}

func TestSummarize_CreativeAndInvalidTypes(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	m := e.seedMovie(t, "Parasite")

	creative := types.PostTypeCreative
	vo, err := e.summary.Summarize(ctx, types.Actor{UserID: 1}, &types.SummaryRequest{MovieID: m.MovieID, PostType: &creative})
	require.NoError(t, err)
	assert.Equal(t, "Parasite", vo.MovieTitle)
	assert.Empty(t, vo.SummaryContent)
	assert.Zero(t, vo.RecordID)

	bad := 7
	_, err = e.summary.Summarize(ctx, types.Actor{UserID: 1}, &types.SummaryRequest{MovieID: m.MovieID, PostType: &bad})
	assert.True(t, response.IsKind(err, response.KindInvalid))

	_, err = e.summary.Summarize(ctx, types.Actor{UserID: 1}, summaryReq(m.MovieID+1))
	assert.True(t, response.IsKind(err, response.KindNotFound))
	assert.Equal(t, 0, e.model.callCount())
}

func TestSummarize_LockHeldElsewhere(t *testing.T) {
	old := summaryLockWait
	summaryLockWait = 100 * time.Millisecond
	t.Cleanup(func() { summaryLockWait = old })

	e := setupEnv(t)
	ctx := context.Background()
	m := e.seedMovie(t, "Burning")
	for i := 0; i < 3; i++ {
		e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())
	}
	require.NoError(t, e.mr.Set(summaryLockKey(m.Title), "another-instance"))

	vo, err := e.summary.Summarize(ctx, types.Actor{UserID: 1}, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Zero(t, vo.RecordID)
	assert.Contains(t, vo.SummaryContent, "正在生成中")
	assert.Equal(t, 0, e.model.callCount())
	assert.Equal(t, int64(0), e.count(t, &models.AiRecord{}))
}

func TestSummarize_ModelFailureFallback(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.model.err = errModelDown
	m := e.seedMovie(t, "Shoplifters")
	for i := 0; i < 3; i++ {
		e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())
	}

	vo, err := e.summary.Summarize(ctx, types.Actor{UserID: 1}, summaryReq(m.MovieID))
	require.NoError(t, err)
	assert.Zero(t, vo.RecordID)
	assert.Contains(t, vo.SummaryContent, "基于3条")
	assert.Contains(t, vo.SummaryContent, "《Shoplifters》")
	assert.Equal(t, int64(0), e.count(t, &models.AiRecord{}))
	assert.False(t, e.mr.Exists(summaryLockKey(m.Title)))

	assert.False(t, e.summary.CheckAvailability(ctx).Available)
	e.model.err = nil
	assert.True(t, e.summary.CheckAvailability(ctx).Available)
}

func TestSummarize_ConcurrentCreatesOneRecord(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	e.model.delay = 100 * time.Millisecond
	m := e.seedMovie(t, "Cure")
	for i := 0; i < 3; i++ {
		e.seedPost(t, 1, m.MovieID, types.PostTypeNormal, models.Now())
	}

	var wg sync.WaitGroup
	results := make([]*types.SummaryVO, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vo, err := e.summary.Summarize(ctx, types.Actor{UserID: 1}, summaryReq(m.MovieID))
			assert.NoError(t, err)
			results[i] = vo
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), e.count(t, &models.AiRecord{}))
	assert.Equal(t, 1, e.model.callCount())
	require.NotNil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, results[0].RecordID, results[1].RecordID)
}
