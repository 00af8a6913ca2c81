package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/dao/cache"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/database"
	"github.com/3xSu/FilmComment/pkg/lock"
	"github.com/3xSu/FilmComment/pkg/snowflake"
	"github.com/3xSu/FilmComment/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePusher struct {
	mu     sync.Mutex
	sent   map[int64][]*types.WsFrame
	shared []*types.WsFrame
}

func (p *fakePusher) Send(userID int64, frame *types.WsFrame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = make(map[int64][]*types.WsFrame)
	}
	p.sent[userID] = append(p.sent[userID], frame)
	return nil
}

func (p *fakePusher) Broadcast(frame *types.WsFrame) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shared = append(p.shared, frame)
	return 1
}

func (p *fakePusher) sentTo(userID int64) []*types.WsFrame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.WsFrame(nil), p.sent[userID]...)
}

func (p *fakePusher) broadcasts() []*types.WsFrame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*types.WsFrame(nil), p.shared...)
}

type fakeStore struct {
	mu      sync.Mutex
	puts    []string
	deleted []string
}

func (s *fakeStore) Put(_ context.Context, objectKey string, body io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, objectKey)
	return "https://bucket.oss.test/" + objectKey, nil
}

func (s *fakeStore) DeleteByURL(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

type fakeSummarizer struct {
	mu      sync.Mutex
	calls   int
	samples []string
	err     error
	delay   time.Duration
}

func (f *fakeSummarizer) Summarize(ctx context.Context, movieTitle, samples string, style, maxLength int) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.samples = append(f.samples, samples)
	err, delay := f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("《%s》总结 #%d", movieTitle, n), nil
}

func (f *fakeSummarizer) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeSummarizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errModelDown = errors.New("model unavailable")

type testEnv struct {
	db     *gorm.DB
	mr     *miniredis.Miniredis
	pusher *fakePusher
	store  *fakeStore
	model  *fakeSummarizer

	movieDAO    *dao.MovieDAO
	postDAO     *dao.PostDAO
	commentDAO  *dao.CommentDAO
	notifyDAO   *dao.NotificationDAO
	aiRecordDAO *dao.AiRecordDAO

	relations *RelationService
	ratings   *RatingService
	notifier  *NotificationService
	stats     *PostStatService
	tags      *TagService
	feed      *FeedService
	posts     *PostService
	comments  *CommentService
	summary   *SummaryService
	retention *RetentionService
	uploads   *UploadService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	rds := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rds.Close() })

	e := &testEnv{
		db:     db,
		mr:     mr,
		pusher: &fakePusher{},
		store:  &fakeStore{},
		model:  &fakeSummarizer{},
	}

	tx := dao.NewTxManager(db)
	userDAO := dao.NewUserDAO(db)
	e.movieDAO = dao.NewMovieDAO(db)
	ratingDAO := dao.NewRatingDAO(db)
	relationDAO := dao.NewRelationDAO(db)
	e.postDAO = dao.NewPostDAO(db)
	postImageDAO := dao.NewPostImageDAO(db)
	postTagDAO := dao.NewPostTagDAO(db)
	likeDAO := dao.NewPostLikeDAO(db)
	collectionDAO := dao.NewCollectionDAO(db)
	e.commentDAO = dao.NewCommentDAO(db)
	commentImageDAO := dao.NewCommentImageDAO(db)
	tagDAO := dao.NewTagDAO(db)
	e.notifyDAO = dao.NewNotificationDAO(db)
	e.aiRecordDAO = dao.NewAiRecordDAO(db)

	storage := cache.NewStorage(rds)
	catalog := &MovieCatalog{MovieDAO: e.movieDAO, Local: cache.NewMovieLRU()}
	directory := &UserDirectory{UserDAO: userDAO, Profiles: cache.NewUserProfiles()}
	filter, err := NewTagFilter(tagDAO)
	require.NoError(t, err)
	locker := lock.NewLocker(rds)

	e.relations = &RelationService{RelationDAO: relationDAO, Catalog: catalog}
	e.ratings = &RatingService{MovieDAO: e.movieDAO, RatingDAO: ratingDAO, Catalog: catalog}
	e.notifier = &NotificationService{NotificationDAO: e.notifyDAO, Directory: directory, Pusher: e.pusher}
	e.stats = &PostStatService{
		Tx:            tx,
		PostDAO:       e.postDAO,
		PostLikeDAO:   likeDAO,
		CollectionDAO: collectionDAO,
		CommentDAO:    e.commentDAO,
		Cache:         storage,
		Pusher:        e.pusher,
		Notifier:      e.notifier,
	}
	e.tags = &TagService{TagDAO: tagDAO, PostTagDAO: postTagDAO, Cache: storage, Filter: filter}
	e.feed = &FeedService{
		PostDAO:         e.postDAO,
		PostImageDAO:    postImageDAO,
		PostTagDAO:      postTagDAO,
		TagDAO:          tagDAO,
		CollectionDAO:   collectionDAO,
		CommentDAO:      e.commentDAO,
		CommentImageDAO: commentImageDAO,
		UserDAO:         userDAO,
		Directory:       directory,
		Relations:       e.relations,
	}
	e.posts = &PostService{
		Tx:            tx,
		PostDAO:       e.postDAO,
		PostImageDAO:  postImageDAO,
		PostTagDAO:    postTagDAO,
		TagDAO:        tagDAO,
		PostLikeDAO:   likeDAO,
		CollectionDAO: collectionDAO,
		Catalog:       catalog,
		Relations:     e.relations,
		Tags:          e.tags,
		Stats:         e.stats,
		Feed:          e.feed,
		Notifier:      e.notifier,
		Store:         e.store,
	}
	e.comments = &CommentService{
		Tx:              tx,
		PostDAO:         e.postDAO,
		CommentDAO:      e.commentDAO,
		CommentImageDAO: commentImageDAO,
		Directory:       directory,
		Stats:           e.stats,
		Notifier:        e.notifier,
	}
	e.summary = &SummaryService{
		MovieDAO:    e.movieDAO,
		PostDAO:     e.postDAO,
		AiRecordDAO: e.aiRecordDAO,
		Locker:      locker,
		Model:       e.model,
		Config: &config.AIConfig{
			Summary:           config.SummaryConfig{CacheMinutes: 30, UpdateThreshold: 3},
			CommentSampleSize: 50,
		},
	}
	e.retention = &RetentionService{
		Tx:              tx,
		PostDAO:         e.postDAO,
		PostImageDAO:    postImageDAO,
		PostTagDAO:      postTagDAO,
		PostLikeDAO:     likeDAO,
		CollectionDAO:   collectionDAO,
		CommentDAO:      e.commentDAO,
		CommentImageDAO: commentImageDAO,
		Locker:          locker,
		Policies:        NewRetentionPolicies(config.DefaultRetention()),
		Stats:           e.stats,
		Tags:            e.tags,
	}
	e.uploads = &UploadService{
		PostDAO:         e.postDAO,
		PostImageDAO:    postImageDAO,
		CommentDAO:      e.commentDAO,
		CommentImageDAO: commentImageDAO,
		Store:           e.store,
	}
	return e
}

func (e *testEnv) seedUser(t *testing.T, name string, role int) types.Actor {
	t.Helper()
	u := &models.User{Username: name, PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return types.Actor{UserID: u.UserID, Role: role}
}

func (e *testEnv) seedMovie(t *testing.T, title string) *models.Movie {
	t.Helper()
	m := &models.Movie{Title: title, Duration: 120}
	require.NoError(t, e.movieDAO.Create(context.Background(), m))
	return m
}

func (e *testEnv) seedPost(t *testing.T, userID, movieID int64, postType int, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		PostID:      snowflake.GenID(),
		UserID:      userID,
		MovieID:     movieID,
		Title:       "post",
		Content:     fmt.Sprintf("content of type %d", postType),
		PostType:    postType,
		ContentForm: types.ContentFormTextImage,
		CreatedAt:   createdAt,
	}
	require.NoError(t, e.postDAO.Create(context.Background(), p))
	return p
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
