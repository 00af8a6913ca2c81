package service

import (
	"context"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPosts_CursorPaging(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	m := e.seedMovie(t, "Memento")

	base := models.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		e.seedPost(t, author.UserID, m.MovieID, types.PostTypeNormal, base.Add(time.Duration(i)*time.Second))
	}

	q := &types.PostListQuery{MovieID: m.MovieID, Size: 10}
	var sizes []int
	seen := make(map[int64]bool)
	for {
		page, err := e.feed.ListPosts(ctx, types.Actor{}, q)
		require.NoError(t, err)
		if q.Cursor == 0 {
			assert.Equal(t, int64(25), page.Total)
		} else {
			assert.Equal(t, types.NoTotal, page.Total)
		}
		sizes = append(sizes, len(page.List))
		for i, p := range page.List {
			assert.False(t, seen[p.PostID])
			seen[p.PostID] = true
			assert.Equal(t, "author", p.Username)
			if i > 0 {
				assert.True(t, page.List[i-1].CreateTime.After(p.CreateTime))
			}
		}
		if !page.HasNext {
			break
		}
		q.Cursor = page.NextCursor
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Len(t, seen, 25)
}

func TestListPosts_SpoilerGate(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	viewer := e.seedUser(t, "viewer", types.RoleUser)
	admin := e.seedUser(t, "admin", types.RoleAdmin)
	m := e.seedMovie(t, "Se7en")

	now := models.Now()
	e.seedPost(t, author.UserID, m.MovieID, types.PostTypeNormal, now.Add(-3*time.Second))
	e.seedPost(t, author.UserID, m.MovieID, types.PostTypeDeepSpoiler, now.Add(-2*time.Second))
	e.seedPost(t, author.UserID, m.MovieID, types.PostTypeCreativeSpoiler, now.Add(-time.Second))

	spoilers := &types.PostListQuery{MovieID: m.MovieID, SpoilerType: types.SpoilerTypeSpoiler}

	page, err := e.feed.ListPosts(ctx, types.Actor{}, spoilers)
	require.NoError(t, err)
	assert.Empty(t, page.List)
	assert.Equal(t, int64(0), page.Total)

	page, err = e.feed.ListPosts(ctx, viewer, spoilers)
	require.NoError(t, err)
	assert.Empty(t, page.List)

	_, err = e.relations.Mark(ctx, viewer.UserID, &types.MarkRelationRequest{MovieID: m.MovieID, RelationType: types.RelationWantToWatch})
	require.NoError(t, err)
	page, err = e.feed.ListPosts(ctx, viewer, spoilers)
	require.NoError(t, err)
	assert.Empty(t, page.List)

	_, err = e.relations.Mark(ctx, viewer.UserID, &types.MarkRelationRequest{MovieID: m.MovieID, RelationType: types.RelationWatched})
	require.NoError(t, err)
	page, err = e.feed.ListPosts(ctx, viewer, spoilers)
	require.NoError(t, err)
	assert.Len(t, page.List, 2)

	page, err = e.feed.ListPosts(ctx, admin, &types.PostListQuery{SpoilerType: types.SpoilerTypeSpoiler})
	require.NoError(t, err)
	assert.Len(t, page.List, 2)

	// 没有电影维度时普通用户看不到剧透帖
	page, err = e.feed.ListPosts(ctx, viewer, &types.PostListQuery{SpoilerType: types.SpoilerTypeSpoiler})
	require.NoError(t, err)
	assert.Empty(t, page.List)

	page, err = e.feed.ListPosts(ctx, types.Actor{}, &types.PostListQuery{MovieID: m.MovieID, SpoilerType: types.SpoilerTypeNone})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, types.PostTypeNormal, page.List[0].PostType)

	// 类型与剧透筛选冲突
	page, err = e.feed.ListPosts(ctx, admin, &types.PostListQuery{PostType: types.PostTypeNormal, SpoilerType: types.SpoilerTypeSpoiler})
	require.NoError(t, err)
	assert.Empty(t, page.List)

	_, err = e.feed.ListPosts(ctx, admin, &types.PostListQuery{PostType: 9})
	assert.True(t, response.IsKind(err, response.KindInvalid))
}

func TestListPosts_SoftDeletedHidden(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	m := e.seedMovie(t, "Ran")
	p := e.seedPost(t, author.UserID, m.MovieID, types.PostTypeNormal, models.Now())

	require.NoError(t, e.posts.Delete(ctx, author.UserID, p.PostID))
	page, err := e.feed.ListPosts(ctx, types.Actor{}, &types.PostListQuery{MovieID: m.MovieID})
	require.NoError(t, err)
	assert.Empty(t, page.List)

	vo, err := e.retention.RestorePost(ctx, p.PostID)
	require.NoError(t, err)
	assert.False(t, vo.IsDeleted)
	page, err = e.feed.ListPosts(ctx, types.Actor{}, &types.PostListQuery{MovieID: m.MovieID})
	require.NoError(t, err)
	assert.Len(t, page.List, 1)
}

func TestPublish_PostWithTagsAndImages(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	m := e.seedMovie(t, "Paprika")

	vo, err := e.posts.Publish(ctx, author, &types.PostPublishRequest{
		MovieID:     m.MovieID,
		Title:       "梦境",
		Content:     "今敏",
		PostType:    types.PostTypeNormal,
		ContentForm: types.ContentFormTextImage,
		NewTagNames: []string{"动画", "科幻", "动画"},
		ImageURLs:   []string{"https://bucket.oss.test/a.png", "https://bucket.oss.test/b.png"},
	})
	require.NoError(t, err)

	detail, err := e.posts.Detail(ctx, author, vo.PostID)
	require.NoError(t, err)
	assert.Equal(t, "Paprika", detail.MovieTitle)
	assert.Len(t, detail.Tags, 2)
	assert.Equal(t, []string{"https://bucket.oss.test/a.png", "https://bucket.oss.test/b.png"}, detail.ImageURLs)
	assert.Equal(t, "https://bucket.oss.test/a.png", detail.CoverURL)
	assert.Equal(t, int64(1), detail.ViewCount)

	for _, tag := range detail.Tags {
		assert.True(t, e.tags.Filter.MightContain(tag.TagID))
		hot, err := e.tags.GetHotInfo(ctx, tag.TagID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), hot.TotalUses)
		assert.Equal(t, int64(1), hot.RecentUses)
		assert.Equal(t, 2.8, hot.HotScore)
	}
}

func TestPublish_Rejections(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	m := e.seedMovie(t, "Paprika")

	_, err := e.posts.Publish(ctx, author, &types.PostPublishRequest{
		MovieID:     m.MovieID,
		Title:       "空帖",
		PostType:    types.PostTypeNormal,
		ContentForm: types.ContentFormTextImage,
	})
	assert.True(t, response.IsKind(err, response.KindInvalid))

	_, err = e.posts.Publish(ctx, author, &types.PostPublishRequest{
		MovieID:     m.MovieID,
		Title:       "视频帖",
		PostType:    types.PostTypeCreative,
		ContentForm: types.ContentFormVideo,
		ImageURLs:   []string{"https://bucket.oss.test/x.png"},
		VideoURL:    "https://bucket.oss.test/x.mp4",
	})
	assert.True(t, response.IsKind(err, response.KindInvalid))

	// 未看过不能发剧透帖，失败后清理已上传文件并发送系统通知
	_, err = e.posts.Publish(ctx, author, &types.PostPublishRequest{
		MovieID:     m.MovieID,
		Title:       "结局",
		Content:     "剧透",
		PostType:    types.PostTypeDeepSpoiler,
		ContentForm: types.ContentFormTextImage,
		ImageURLs:   []string{"https://bucket.oss.test/s.png"},
	})
	assert.True(t, response.IsKind(err, response.KindForbidden))
	assert.Contains(t, e.store.deleted, "https://bucket.oss.test/s.png")
	page, err := e.notifier.List(ctx, author.UserID, 0, 10)
	require.NoError(t, err)
	require.NotEmpty(t, page.List)
	assert.Equal(t, "帖子发布失败", page.List[0].Title)

	_, err = e.posts.Publish(ctx, author, &types.PostPublishRequest{
		MovieID:     m.MovieID,
		Title:       "标签",
		Content:     "不存在的标签",
		PostType:    types.PostTypeNormal,
		ContentForm: types.ContentFormTextImage,
		TagIDs:      []int64{404},
	})
	assert.True(t, response.IsKind(err, response.KindInvalid))
	assert.Equal(t, int64(0), e.count(t, &models.Post{}))
}

func TestComment_ReplyFlattening(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	alice := e.seedUser(t, "alice", types.RoleUser)
	bob := e.seedUser(t, "bob", types.RoleUser)
	m := e.seedMovie(t, "Stalker")
	p := e.seedPost(t, author.UserID, m.MovieID, types.PostTypeNormal, models.Now())
	other := e.seedPost(t, author.UserID, m.MovieID, types.PostTypeNormal, models.Now())

	root, err := e.comments.Publish(ctx, alice.UserID, &types.PublishCommentRequest{PostID: p.PostID, Content: "一级评论"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), root.ParentID)

	reply, err := e.comments.Publish(ctx, bob.UserID, &types.PublishCommentRequest{PostID: p.PostID, ParentID: root.CommentID, Content: "回复"})
	require.NoError(t, err)
	assert.Equal(t, root.CommentID, reply.ParentID)

	nested, err := e.comments.Publish(ctx, alice.UserID, &types.PublishCommentRequest{PostID: p.PostID, ParentID: reply.CommentID, Content: "回复的回复"})
	require.NoError(t, err)
	assert.Equal(t, root.CommentID, nested.ParentID)

	_, err = e.comments.Publish(ctx, alice.UserID, &types.PublishCommentRequest{PostID: other.PostID, ParentID: root.CommentID, Content: "跨帖"})
	assert.True(t, response.IsKind(err, response.KindInvalid))

	stat, err := e.stats.GetStats(ctx, p.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stat.CommentCount)

	comments, err := e.feed.ListComments(ctx, p.PostID, 0, 10)
	require.NoError(t, err)
	require.Len(t, comments.List, 1)
	assert.Equal(t, int64(2), comments.List[0].ReplyCount)

	replies, err := e.feed.ListReplies(ctx, root.CommentID, 0, 10)
	require.NoError(t, err)
	require.Len(t, replies.List, 2)
	assert.ElementsMatch(t, []int64{reply.CommentID, nested.CommentID},
		[]int64{replies.List[0].CommentID, replies.List[1].CommentID})

	// 作者收到三条评论通知，alice 收到 bob 的回复通知
	authorUnread, err := e.notifier.UnreadCount(ctx, author.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), authorUnread.Count)
	aliceUnread, err := e.notifier.UnreadCount(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), aliceUnread.Count)

	err = e.comments.Delete(ctx, bob.UserID, root.CommentID)
	assert.True(t, response.IsKind(err, response.KindUnauthorized))
	require.NoError(t, e.comments.Delete(ctx, bob.UserID, reply.CommentID))
	stat, err = e.stats.GetStats(ctx, p.PostID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stat.CommentCount)
}
