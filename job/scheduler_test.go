package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/service"
	"github.com/3xSu/FilmComment/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetention struct {
	service.IRetentionService
	mu   sync.Mutex
	runs []string
}

func (s *stubRetention) Cleanup(_ context.Context, entity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, entity)
	return 1, nil
}

func TestSchedulerEntries(t *testing.T) {
	s, err := NewScheduler(&stubRetention{})
	require.NoError(t, err)

	entries := s.cron.Entries()
	require.Len(t, entries, 2)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	next := []time.Time{entries[0].Schedule.Next(now), entries[1].Schedule.Next(now)}
	assert.Equal(t, 2, next[0].Hour())
	assert.Equal(t, 3, next[1].Hour())
	assert.Equal(t, 2, next[0].Day())
}

func TestTaskRunsCleanup(t *testing.T) {
	stub := &stubRetention{}
	s, err := NewScheduler(stub)
	require.NoError(t, err)

	s.task(types.EntityPosts)()
	s.task(types.EntityComments)()
	assert.Equal(t, []string{types.EntityPosts, types.EntityComments}, stub.runs)
}

func TestStartStops(t *testing.T) {
	s, err := NewScheduler(&stubRetention{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
