package socket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/3xSu/FilmComment/pkg/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	readTimeout  = 60 * time.Second // 读超时，任意入站帧或 pong 刷新
	pingInterval = 25 * time.Second
	writeTimeout = 10 * time.Second
)

// Client 单个用户的 websocket 连接
type Client struct {
	cid      int64
	uid      int64
	conn     *websocket.Conn
	mu       sync.Mutex // 串行化写
	closed   atomic.Bool
	lastTime atomic.Int64
	done     chan struct{}
}

func newClient(cid, uid int64, conn *websocket.Conn) *Client {
	c := &Client{cid: cid, uid: uid, conn: conn, done: make(chan struct{})}
	c.touch()
	return c
}

func (c *Client) Closed() bool {
	return c.closed.Load()
}

func (c *Client) touch() {
	c.lastTime.Store(time.Now().UnixMilli())
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
}

// Write 写入一帧已编码的文本消息
func (c *Client) Write(data []byte) error {
	if c.Closed() {
		return websocket.ErrCloseSent
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// idle 超过读超时未收到任何入站帧或 pong
func (c *Client) idle(now time.Time) bool {
	return now.Sub(time.UnixMilli(c.lastTime.Load())) > readTimeout
}

func (c *Client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// Close 发送关闭帧并断开连接，重复调用无副作用
func (c *Client) Close(code int, reason string) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	close(c.done)

	c.mu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.mu.Unlock()

	if err := c.conn.Close(); err != nil {
		log.L.Debug("close websocket", zap.Int64("user_id", c.uid), zap.Error(err))
	}
}

// heartbeat 定时发送 ping 控制帧，空闲超时或写失败即断开
func (c *Client) heartbeat(interval time.Duration, onDead func(*Client)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			if c.idle(now) {
				log.L.Info("heartbeat timeout", zap.Int64("user_id", c.uid))
				onDead(c)
				return
			}
			if err := c.ping(); err != nil {
				log.L.Info("heartbeat failed", zap.Int64("user_id", c.uid), zap.Error(err))
				onDead(c)
				return
			}
		}
	}
}
