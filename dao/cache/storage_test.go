package cache

import (
	"context"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/types"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rds := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rds.Close() })
	return NewStorage(rds), mr
}

func TestStorage_GetSet(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	var stat types.PostStat
	hit, err := s.Get(ctx, PostStatKey(1), &stat)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.Set(ctx, PostStatKey(1), types.PostStat{PostID: 1, LikeCount: 3}, PostStatTTL))
	hit, err = s.Get(ctx, PostStatKey(1), &stat)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(3), stat.LikeCount)
	assert.Equal(t, PostStatTTL, mr.TTL("post:stat:1"))

	mr.FastForward(PostStatTTL + time.Second)
	hit, err = s.Get(ctx, PostStatKey(1), &stat)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStorage_MGetKeepsOrder(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SetMany(ctx, map[string]any{
		HotTagKey(1): types.TagHotVO{TagID: 1, HotScore: 2.5},
		HotTagKey(3): types.TagHotVO{TagID: 3, HotScore: 1},
	}, HotTagTTL))

	vals, err := s.MGet(ctx, []string{HotTagKey(1), HotTagKey(2), HotTagKey(3)})
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.NotNil(t, vals[0])
	assert.Nil(t, vals[1])
	assert.Contains(t, string(vals[2]), `"tagId":3`)

	require.NoError(t, s.Del(ctx, HotTagKey(1), HotTagKey(3)))
	vals, err = s.MGet(ctx, []string{HotTagKey(1), HotTagKey(3)})
	require.NoError(t, err)
	assert.Nil(t, vals[0])
	assert.Nil(t, vals[1])
}

func TestLocalTiers(t *testing.T) {
	movies := NewMovieLRU()
	movies.Add(types.MovieBrief{MovieID: 7, Title: "Alien"})
	got, ok := movies.Get(7)
	assert.True(t, ok)
	assert.Equal(t, "Alien", got.Title)
	movies.Remove(7)
	_, ok = movies.Get(7)
	assert.False(t, ok)

	users := NewUserProfiles()
	users.Set(types.UserBrief{UserID: 3, Username: "neo"})
	u, ok := users.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "neo", u.Username)
	users.Delete(3)
	_, ok = users.Get(3)
	assert.False(t, ok)
}
