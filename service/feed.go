package service

import (
	"context"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/sourcegraph/conc/pool"
)

const maxTagsPerPost = 3

var _ IFeedService = (*FeedService)(nil)

type IFeedService interface {
	ListPosts(ctx context.Context, actor types.Actor, q *types.PostListQuery) (*types.CursorPage[types.PostVO], error)
	ListUserPosts(ctx context.Context, userID, cursor int64, size int) (*types.CursorPage[types.PostVO], error)
	ListCollections(ctx context.Context, userID, cursor int64, size int) (*types.CursorPage[types.PostVO], error)
	ListComments(ctx context.Context, postID, cursor int64, size int) (*types.CursorPage[types.CommentVO], error)
	ListReplies(ctx context.Context, commentID, cursor int64, size int) (*types.CursorPage[types.CommentVO], error)
	// Hydrate 补齐作者、标签、封面
	Hydrate(ctx context.Context, posts []*models.Post) ([]types.PostVO, error)
}

type FeedService struct {
	PostDAO         *dao.PostDAO
	PostImageDAO    *dao.PostImageDAO
	PostTagDAO      *dao.PostTagDAO
	TagDAO          *dao.TagDAO
	CollectionDAO   *dao.CollectionDAO
	CommentDAO      *dao.CommentDAO
	CommentImageDAO *dao.CommentImageDAO
	UserDAO         *dao.UserDAO
	Directory       *UserDirectory
	Relations       IRelationService
}

// resolvePostTypes 返回筛选的帖子类型以及是否涉及剧透
func resolvePostTypes(q *types.PostListQuery) ([]int, bool, error) {
	var byType []int
	if q.PostType != 0 {
		if !types.ValidPostType(q.PostType) {
			return nil, false, response.Invalid("帖子类型不合法")
		}
		byType = []int{q.PostType}
	}

	var bySpoiler []int
	switch q.SpoilerType {
	case 0:
	case types.SpoilerTypeNone:
		bySpoiler = []int{types.PostTypeNormal, types.PostTypeCreative}
	case types.SpoilerTypeSpoiler:
		bySpoiler = []int{types.PostTypeDeepSpoiler, types.PostTypeCreativeSpoiler}
	default:
		return nil, false, response.Invalid("剧透类型不合法")
	}

	spoiler := types.IsSpoilerPostType(q.PostType) || q.SpoilerType == types.SpoilerTypeSpoiler
	switch {
	case byType == nil:
		return bySpoiler, spoiler, nil
	case bySpoiler == nil:
		return byType, spoiler, nil
	}
	for _, t := range bySpoiler {
		if t == q.PostType {
			return byType, spoiler, nil
		}
	}
	// 类型与剧透筛选互斥
	return []int{}, spoiler, nil
}

func (s *FeedService) ListPosts(ctx context.Context, actor types.Actor, q *types.PostListQuery) (*types.CursorPage[types.PostVO], error) {
	postTypes, spoiler, err := resolvePostTypes(q)
	if err != nil {
		return nil, err
	}
	if postTypes != nil && len(postTypes) == 0 {
		return types.EmptyPage[types.PostVO](), nil
	}
	if spoiler {
		allowed := actor.IsAdmin()
		if !allowed && q.MovieID > 0 {
			if allowed, err = s.Relations.CanViewSpoiler(ctx, actor, q.MovieID); err != nil {
				return nil, err
			}
		}
		if !allowed {
			return types.EmptyPage[types.PostVO](), nil
		}
	}

	filter := dao.PostFilter{MovieID: q.MovieID, PostTypes: postTypes, ContentForm: q.ContentForm, UserID: q.UserID}
	size := types.ClampSize(q.Size)
	posts, err := s.PostDAO.ListByCursor(ctx, filter, types.CursorTime(q.Cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page, err := s.postPage(ctx, posts, size)
	if err != nil {
		return nil, err
	}
	if q.Cursor <= 0 {
		total, err := s.PostDAO.Count(ctx, filter)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	return page, nil
}

func (s *FeedService) ListUserPosts(ctx context.Context, userID, cursor int64, size int) (*types.CursorPage[types.PostVO], error) {
	exist, err := s.UserDAO.IsExist(ctx, "user_id = ?", userID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if !exist {
		return nil, response.NotFound("用户不存在")
	}
	filter := dao.PostFilter{UserID: userID}
	size = types.ClampSize(size)
	posts, err := s.PostDAO.ListByCursor(ctx, filter, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page, err := s.postPage(ctx, posts, size)
	if err != nil {
		return nil, err
	}
	if cursor <= 0 {
		total, err := s.PostDAO.Count(ctx, filter)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	return page, nil
}

func (s *FeedService) postPage(ctx context.Context, posts []*models.Post, size int) (*types.CursorPage[types.PostVO], error) {
	list, err := s.Hydrate(ctx, posts)
	if err != nil {
		return nil, err
	}
	page := types.NewCursorPage[types.PostVO](len(list))
	page.List = append(page.List, list...)
	if len(posts) == size {
		page.HasNext = true
		page.NextCursor = posts[len(posts)-1].CreatedAt.UnixNano()
	}
	return page, nil
}

func (s *FeedService) ListCollections(ctx context.Context, userID, cursor int64, size int) (*types.CursorPage[types.PostVO], error) {
	size = types.ClampSize(size)
	edges, err := s.CollectionDAO.ListByUserCursor(ctx, userID, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	ids := make([]int64, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.PostID)
	}
	posts, err := s.PostDAO.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "")
	}
	byID := make(map[int64]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.PostID] = p
	}
	ordered := make([]*models.Post, 0, len(edges))
	for _, e := range edges {
		if p, ok := byID[e.PostID]; ok {
			ordered = append(ordered, p)
		}
	}

	list, err := s.Hydrate(ctx, ordered)
	if err != nil {
		return nil, err
	}
	page := types.NewCursorPage[types.PostVO](len(list))
	page.List = append(page.List, list...)
	if len(edges) == size {
		page.HasNext = true
		page.NextCursor = edges[len(edges)-1].CreatedAt.UnixNano()
	}
	if cursor <= 0 {
		total, err := s.CollectionDAO.CountByUser(ctx, userID)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	return page, nil
}

// Hydrate 标签、封面、作者三路并行加载
func (s *FeedService) Hydrate(ctx context.Context, posts []*models.Post) ([]types.PostVO, error) {
	out := make([]types.PostVO, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(posts))
	authorIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.PostID)
		authorIDs = append(authorIDs, p.UserID)
	}

	var (
		tagsOf  map[int64][]types.TagBrief
		covers  map[int64]string
		authors map[int64]types.UserBrief
	)
	p := pool.New().WithContext(ctx).WithMaxGoroutines(3)
	p.Go(func(ctx context.Context) error {
		m, err := s.loadTags(ctx, ids)
		tagsOf = m
		return err
	})
	p.Go(func(ctx context.Context) error {
		m, err := s.PostImageDAO.Covers(ctx, ids)
		covers = m
		return err
	})
	p.Go(func(ctx context.Context) error {
		m, err := s.Directory.Briefs(ctx, authorIDs)
		authors = m
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, storeErr(err, "")
	}

	for _, post := range posts {
		vo := toPostVO(post)
		if a, ok := authors[post.UserID]; ok {
			vo.Username = a.Username
			vo.Avatar = a.AvatarURL
		}
		if post.ContentForm != types.ContentFormVideo {
			vo.CoverURL = covers[post.PostID]
		}
		if t := tagsOf[post.PostID]; t != nil {
			vo.Tags = t
		}
		out = append(out, vo)
	}
	return out, nil
}

func (s *FeedService) loadTags(ctx context.Context, postIDs []int64) (map[int64][]types.TagBrief, error) {
	edges, err := s.PostTagDAO.TagIDsByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	need := make([]int64, 0)
	for pid, tagIDs := range edges {
		if len(tagIDs) > maxTagsPerPost {
			edges[pid] = tagIDs[:maxTagsPerPost]
		}
		need = append(need, edges[pid]...)
	}
	tags, err := s.TagDAO.GetByIDs(ctx, uniq(need))
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(tags))
	for _, t := range tags {
		names[t.TagID] = t.TagName
	}

	out := make(map[int64][]types.TagBrief, len(edges))
	for pid, tagIDs := range edges {
		list := make([]types.TagBrief, 0, len(tagIDs))
		for _, id := range tagIDs {
			if name, ok := names[id]; ok {
				list = append(list, types.TagBrief{TagID: id, TagName: name})
			}
		}
		out[pid] = list
	}
	return out, nil
}

func toPostVO(p *models.Post) types.PostVO {
	return types.PostVO{
		PostID:       p.PostID,
		UserID:       p.UserID,
		MovieID:      p.MovieID,
		Title:        p.Title,
		Content:      p.Content,
		PostType:     p.PostType,
		ContentForm:  p.ContentForm,
		VideoURL:     p.VideoURL,
		Tags:         make([]types.TagBrief, 0),
		ViewCount:    p.ViewCount,
		LikeCount:    p.LikeCount,
		CollectCount: p.CollectCount,
		CommentCount: p.CommentCount,
		CreateTime:   p.CreatedAt,
	}
}

func (s *FeedService) ListComments(ctx context.Context, postID, cursor int64, size int) (*types.CursorPage[types.CommentVO], error) {
	if _, err := s.PostDAO.GetLive(ctx, postID); err != nil {
		return nil, storeErr(err, "帖子不存在")
	}
	size = types.ClampSize(size)
	list, err := s.CommentDAO.ListTopLevel(ctx, postID, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page, err := s.commentPage(ctx, list, size, true)
	if err != nil {
		return nil, err
	}
	if cursor <= 0 {
		total, err := s.CommentDAO.CountTopLevel(ctx, postID)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	return page, nil
}

// ListReplies 回复按时间正序，游标向后翻
func (s *FeedService) ListReplies(ctx context.Context, commentID, cursor int64, size int) (*types.CursorPage[types.CommentVO], error) {
	parent, err := s.CommentDAO.GetLive(ctx, commentID)
	if err != nil {
		return nil, storeErr(err, "评论不存在")
	}
	if parent.ParentID != 0 {
		return nil, response.Invalid("只能查看一级评论的回复")
	}
	size = types.ClampSize(size)
	list, err := s.CommentDAO.ListReplies(ctx, commentID, types.CursorTime(cursor), size)
	if err != nil {
		return nil, storeErr(err, "")
	}
	page, err := s.commentPage(ctx, list, size, false)
	if err != nil {
		return nil, err
	}
	if cursor <= 0 {
		total, err := s.CommentDAO.CountReplies(ctx, commentID)
		if err != nil {
			return nil, storeErr(err, "")
		}
		page.Total = total
	}
	return page, nil
}

func (s *FeedService) commentPage(ctx context.Context, list []*models.Comment, size int, withReplies bool) (*types.CursorPage[types.CommentVO], error) {
	ids := make([]int64, 0, len(list))
	userIDs := make([]int64, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.CommentID)
		userIDs = append(userIDs, c.UserID)
	}
	users, err := s.Directory.Briefs(ctx, userIDs)
	if err != nil {
		return nil, storeErr(err, "")
	}
	images, err := s.CommentImageDAO.ListByComments(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "")
	}
	replies := map[int64]int64{}
	if withReplies {
		if replies, err = s.CommentDAO.ReplyCounts(ctx, ids); err != nil {
			return nil, storeErr(err, "")
		}
	}

	page := types.NewCursorPage[types.CommentVO](len(list))
	for _, c := range list {
		vo := toCommentVO(c)
		if u, ok := users[c.UserID]; ok {
			vo.Username = u.Username
			vo.Avatar = u.AvatarURL
		}
		if imgs := images[c.CommentID]; imgs != nil {
			vo.ImageURLs = imgs
		}
		vo.ReplyCount = replies[c.CommentID]
		page.List = append(page.List, vo)
	}
	if len(list) == size {
		page.HasNext = true
		page.NextCursor = list[len(list)-1].CreatedAt.UnixNano()
	}
	return page, nil
}

func toCommentVO(c *models.Comment) types.CommentVO {
	return types.CommentVO{
		CommentID:  c.CommentID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		UserID:     c.UserID,
		Content:    c.Content,
		LikeCount:  c.LikeCount,
		ImageURLs:  make([]string, 0),
		CreateTime: c.CreatedAt,
	}
}
