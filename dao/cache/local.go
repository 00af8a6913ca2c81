package cache

import (
	"strconv"
	"time"

	"github.com/3xSu/FilmComment/types"
	"github.com/hashicorp/golang-lru/v2/expirable"
	gocache "github.com/patrickmn/go-cache"
)

const (
	movieLRUSize = 1024
	localTTL     = 5 * time.Minute
)

// MovieLRU 进程内电影元数据
type MovieLRU struct {
	lru *expirable.LRU[int64, types.MovieBrief]
}

func NewMovieLRU() *MovieLRU {
	return &MovieLRU{lru: expirable.NewLRU[int64, types.MovieBrief](movieLRUSize, nil, localTTL)}
}

func (m *MovieLRU) Get(movieID int64) (types.MovieBrief, bool) {
	return m.lru.Get(movieID)
}

func (m *MovieLRU) Add(movie types.MovieBrief) {
	m.lru.Add(movie.MovieID, movie)
}

func (m *MovieLRU) Remove(movieID int64) {
	m.lru.Remove(movieID)
}

// UserProfiles 进程内用户资料
type UserProfiles struct {
	c *gocache.Cache
}

func NewUserProfiles() *UserProfiles {
	return &UserProfiles{c: gocache.New(localTTL, 2*localTTL)}
}

func (u *UserProfiles) Get(userID int64) (types.UserBrief, bool) {
	v, ok := u.c.Get(strconv.FormatInt(userID, 10))
	if !ok {
		return types.UserBrief{}, false
	}
	brief, ok := v.(types.UserBrief)
	return brief, ok
}

func (u *UserProfiles) Set(user types.UserBrief) {
	u.c.SetDefault(strconv.FormatInt(user.UserID, 10), user)
}

func (u *UserProfiles) Delete(userID int64) {
	u.c.Delete(strconv.FormatInt(userID, 10))
}
