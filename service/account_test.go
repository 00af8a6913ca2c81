package service

import (
	"context"
	"testing"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/jwt"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterLoginProfile(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	userDAO := dao.NewUserDAO(e.db)
	svc := &AuthService{
		UserDAO:   userDAO,
		Directory: &UserDirectory{UserDAO: userDAO, Profiles: cache.NewUserProfiles()},
		JwtConfig: &config.Jwt{Secret: "test-secret", TTL: 3600},
	}

	reg, err := svc.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotZero(t, reg.UserID)
	assert.Equal(t, types.RoleUser, reg.Role)

	claims, err := jwt.ParseToken([]byte("test-secret"), jwt.TypeAccess, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, claims.UserID)

	_, err = svc.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "other123"})
	assert.True(t, response.IsKind(err, response.KindAlreadyExists))

	login, err := svc.Login(ctx, &types.LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)

	_, err = svc.Login(ctx, &types.LoginRequest{Username: "alice", Password: "wrong"})
	assert.True(t, response.IsKind(err, response.KindUnauthorized))
	_, err = svc.Login(ctx, &types.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.True(t, response.IsKind(err, response.KindUnauthorized))

	profile, err := svc.Profile(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}

func TestMovie_CRUDAndDetail(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	svc := &MovieService{
		MovieDAO:    e.movieDAO,
		RatingDAO:   dao.NewRatingDAO(e.db),
		RelationDAO: dao.NewRelationDAO(e.db),
		Catalog:     &MovieCatalog{MovieDAO: e.movieDAO, Local: cache.NewMovieLRU()},
	}

	created, err := svc.Create(ctx, &types.MovieSaveRequest{Title: "Arrival", Duration: 116, ReleaseDate: "2016-11-11"})
	require.NoError(t, err)
	assert.Equal(t, "2016-11-11", created.ReleaseDate)

	_, err = svc.Create(ctx, &types.MovieSaveRequest{Title: "Arrival", Duration: 90})
	assert.True(t, response.IsKind(err, response.KindAlreadyExists))
	_, err = svc.Create(ctx, &types.MovieSaveRequest{Title: "Dune", ReleaseDate: "11/11/2016"})
	assert.True(t, response.IsKind(err, response.KindInvalid))

	updated, err := svc.Update(ctx, created.MovieID, &types.MovieSaveRequest{Title: "Arrival", Duration: 118})
	require.NoError(t, err)
	assert.Equal(t, 118, updated.Duration)

	viewer := e.seedUser(t, "viewer", types.RoleUser)
	_, err = e.ratings.SubmitRating(ctx, viewer.UserID, &types.SubmitRatingRequest{MovieID: created.MovieID, RatingValue: 4.5})
	require.NoError(t, err)
	_, err = e.relations.Mark(ctx, viewer.UserID, &types.MarkRelationRequest{MovieID: created.MovieID, RelationType: types.RelationWatched})
	require.NoError(t, err)

	anon, err := svc.Detail(ctx, types.Actor{}, created.MovieID)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0, 0, 1}, anon.RatingDistribution)
	assert.Zero(t, anon.RelationType)

	mine, err := svc.Detail(ctx, viewer, created.MovieID)
	require.NoError(t, err)
	assert.Equal(t, types.RelationWatched, mine.RelationType)
	assert.Equal(t, 4.5, mine.MyRating)

	require.NoError(t, svc.Delete(ctx, created.MovieID))
	_, err = svc.Detail(ctx, types.Actor{}, created.MovieID)
	assert.True(t, response.IsKind(err, response.KindNotFound))
	assert.True(t, response.IsKind(svc.Delete(ctx, created.MovieID), response.KindNotFound))
}

func TestMovieCatalog_WritePathsSeeDeletedMovie(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	author := e.seedUser(t, "author", types.RoleUser)
	m := e.seedMovie(t, "Solaris")
	catalog := e.posts.Catalog

	_, err := catalog.Brief(ctx, m.MovieID)
	require.NoError(t, err)
	_, cached := catalog.Local.Get(m.MovieID)
	require.True(t, cached)

	// 绕过电影服务删除，本地缓存未失效
	n, err := e.movieDAO.SoftDelete(ctx, m.MovieID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = e.relations.Mark(ctx, author.UserID, &types.MarkRelationRequest{MovieID: m.MovieID, RelationType: types.RelationWatched})
	assert.True(t, response.IsKind(err, response.KindNotFound))
	_, cached = catalog.Local.Get(m.MovieID)
	assert.False(t, cached)

	catalog.Local.Add(types.MovieBrief{MovieID: m.MovieID, Title: m.Title})
	_, err = e.posts.Publish(ctx, author, &types.PostPublishRequest{
		MovieID:     m.MovieID,
		Title:       "观后感",
		Content:     "还不错",
		PostType:    types.PostTypeNormal,
		ContentForm: types.ContentFormTextImage,
	})
	assert.True(t, response.IsKind(err, response.KindNotFound))
	assert.Zero(t, e.count(t, &models.Post{}))
	assert.Zero(t, e.count(t, &models.UserMovieRelation{}))
}
