package service

import (
	"context"
	"errors"
	"io"

	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
)

// Pusher 实时推送，由 socket.Hub 实现
type Pusher interface {
	Send(userID int64, frame *types.WsFrame) error
	Broadcast(frame *types.WsFrame) int
}

// ObjectStore 对象存储，由 oss.Store 实现
type ObjectStore interface {
	Put(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// Summarizer 大模型总结，由 llm.Client 实现
type Summarizer interface {
	Summarize(ctx context.Context, movieTitle, samples string, style, maxLength int) (string, error)
	Ping(ctx context.Context) error
}

// storeErr 持久层错误转换为业务错误，notFound 为空时保留 ErrNotFound
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dao.ErrNotFound) && notFound != "":
		return response.NotFound(notFound)
	case errors.Is(err, dao.ErrTransient):
		return response.Transient("服务繁忙，请稍后重试")
	}
	return err
}

// MovieCatalog 电影元数据的进程内读穿
type MovieCatalog struct {
	MovieDAO *dao.MovieDAO
	Local    *cache.MovieLRU
}

func (c *MovieCatalog) Brief(ctx context.Context, movieID int64) (types.MovieBrief, error) {
	if m, ok := c.Local.Get(movieID); ok {
		return m, nil
	}
	movie, err := c.MovieDAO.GetByID(ctx, movieID)
	if err != nil {
		return types.MovieBrief{}, err
	}
	brief := movieBrief(movie)
	c.Local.Add(brief)
	return brief, nil
}

// Live 写路径使用，绕过本地缓存确认电影未被删除
func (c *MovieCatalog) Live(ctx context.Context, movieID int64) (types.MovieBrief, error) {
	movie, err := c.MovieDAO.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			c.Invalidate(movieID)
		}
		return types.MovieBrief{}, err
	}
	brief := movieBrief(movie)
	c.Local.Add(brief)
	return brief, nil
}

func (c *MovieCatalog) Briefs(ctx context.Context, ids []int64) (map[int64]types.MovieBrief, error) {
	out := make(map[int64]types.MovieBrief, len(ids))
	miss := make([]int64, 0)
	for _, id := range uniq(ids) {
		if m, ok := c.Local.Get(id); ok {
			out[id] = m
			continue
		}
		miss = append(miss, id)
	}
	if len(miss) == 0 {
		return out, nil
	}
	movies, err := c.MovieDAO.GetByIDs(ctx, miss)
	if err != nil {
		return nil, err
	}
	for _, m := range movies {
		brief := movieBrief(m)
		c.Local.Add(brief)
		out[m.MovieID] = brief
	}
	return out, nil
}

func (c *MovieCatalog) Invalidate(movieID int64) {
	c.Local.Remove(movieID)
}

func movieBrief(m *models.Movie) types.MovieBrief {
	return types.MovieBrief{MovieID: m.MovieID, Title: m.Title, PosterURL: m.PosterURL}
}

// UserDirectory 用户资料的进程内读穿
type UserDirectory struct {
	UserDAO  *dao.UserDAO
	Profiles *cache.UserProfiles
}

func (d *UserDirectory) Briefs(ctx context.Context, ids []int64) (map[int64]types.UserBrief, error) {
	out := make(map[int64]types.UserBrief, len(ids))
	miss := make([]int64, 0)
	for _, id := range uniq(ids) {
		if u, ok := d.Profiles.Get(id); ok {
			out[id] = u
			continue
		}
		miss = append(miss, id)
	}
	if len(miss) == 0 {
		return out, nil
	}
	users, err := d.UserDAO.GetByIDs(ctx, miss)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		brief := userBrief(u)
		d.Profiles.Set(brief)
		out[u.UserID] = brief
	}
	return out, nil
}

func (d *UserDirectory) Brief(ctx context.Context, id int64) (types.UserBrief, error) {
	m, err := d.Briefs(ctx, []int64{id})
	if err != nil {
		return types.UserBrief{}, err
	}
	u, ok := m[id]
	if !ok {
		return types.UserBrief{}, dao.ErrNotFound
	}
	return u, nil
}

func userBrief(u *models.User) types.UserBrief {
	return types.UserBrief{UserID: u.UserID, Username: u.Username, AvatarURL: u.AvatarURL, Role: u.Role}
}

func uniq(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// push 推送失败只记录日志
func push(p Pusher, userID int64, frame *types.WsFrame) {
	if p == nil {
		return
	}
	if err := p.Send(userID, frame); err != nil {
		log.L.Debug("push skipped", zap.Int64("user_id", userID), zap.String("type", frame.Type), zap.Error(err))
	}
}
