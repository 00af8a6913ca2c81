package lock

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pollInterval = 50 * time.Millisecond

var ErrNotAcquired = errors.New("lock: not acquired")

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 基于 redis SET NX PX 的分布式租约
type Locker struct {
	redis *redis.Client
}

func NewLocker(rds *redis.Client) *Locker {
	return &Locker{redis: rds}
}

// TryAcquire 在 wait 时间内轮询获取租约，hold 为最长持有时间
func (l *Locker) TryAcquire(ctx context.Context, key string, wait, hold time.Duration) (*Lease, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.redis.SetNX(ctx, key, token, hold).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &Lease{redis: l.redis, key: key, token: token}, nil
		}
		if wait <= 0 || time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

type Lease struct {
	redis    *redis.Client
	key      string
	token    string
	released atomic.Bool
}

func (l *Lease) Key() string {
	return l.key
}

// Release 幂等，锁已过期或被他人持有时不做任何事
func (l *Lease) Release(ctx context.Context) error {
	if l == nil || !l.released.CompareAndSwap(false, true) {
		return nil
	}
	return releaseScript.Run(ctx, l.redis, []string{l.key}, l.token).Err()
}

// ReleaseDetached 使用独立的超时上下文释放，请求被取消时也能归还租约
func (l *Lease) ReleaseDetached() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return l.Release(ctx)
}
