package socket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/types"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := strconv.ParseInt(r.URL.Query().Get("uid"), 10, 64)
		conn, upErr := upgrader.Upgrade(w, r, nil)
		if upErr != nil {
			return
		}
		if err != nil || uid <= 0 {
			Reject(conn, "invalid token")
			return
		}
		hub.Serve(uid, conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, uid string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?uid=" + uid
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) gjson.Result {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return gjson.ParseBytes(msg)
}

func waitOnline(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestConnectAndPing(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dial(t, srv, "7")

	f := readFrame(t, conn)
	assert.Equal(t, types.FrameConnectSuccess, f.Get("type").String())
	assert.Equal(t, int64(7), f.Get("data.userId").Int())
	assert.True(t, hub.Online(7))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"PING","messageId":"m-1"}`)))
	f = readFrame(t, conn)
	assert.Equal(t, types.FramePong, f.Get("type").String())
	assert.Equal(t, "m-1", f.Get("messageId").String())

	// ACK 与未知类型不回包
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ACK","messageId":"m-2"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"PING","messageId":"m-3"}`)))
	f = readFrame(t, conn)
	assert.Equal(t, "m-3", f.Get("messageId").String())
}

func TestRejectInvalidToken(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	conn := dial(t, srv, "bad")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
	assert.Equal(t, 0, hub.Count())
}

func TestReplaceConnection(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	first := dial(t, srv, "3")
	readFrame(t, first)
	second := dial(t, srv, "3")
	readFrame(t, second)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)
	waitOnline(t, hub, 1)

	require.NoError(t, hub.Send(3, &types.WsFrame{Type: types.FrameNotification, Data: "hi"}))
	f := readFrame(t, second)
	assert.Equal(t, "hi", f.Get("data").String())
	assert.NotEmpty(t, f.Get("messageId").String())
}

func TestSendOffline(t *testing.T) {
	hub := NewHub()
	assert.ErrorIs(t, hub.Send(42, &types.WsFrame{Type: types.FrameNotification}), ErrOffline)
}

func TestBroadcastToAll(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	a := dial(t, srv, "1")
	b := dial(t, srv, "2")
	readFrame(t, a)
	readFrame(t, b)
	waitOnline(t, hub, 2)

	n := hub.Broadcast(&types.WsFrame{
		Type: types.FramePostStatUpdate,
		Data: map[string]any{"postId": "9", "likeCount": 1},
	})
	assert.Equal(t, 2, n)

	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		assert.Equal(t, types.FramePostStatUpdate, f.Get("type").String())
		assert.Equal(t, int64(1), f.Get("data.likeCount").Int())
	}
}

func TestUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "5")
	readFrame(t, conn)
	waitOnline(t, hub, 1)

	require.NoError(t, conn.Close())
	waitOnline(t, hub, 0)
	assert.Equal(t, 0, hub.Broadcast(&types.WsFrame{Type: types.FramePostStatUpdate}))
}

func TestConcurrentRegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Broadcast(&types.WsFrame{Type: types.FramePostStatUpdate})
				time.Sleep(time.Millisecond)
			}
		}
	}()

	for i := 1; i <= 10; i++ {
		conn := dial(t, srv, strconv.Itoa(i))
		if i%2 == 0 {
			_ = conn.Close()
		}
	}
	waitOnline(t, hub, 5)
	close(stop)
	wg.Wait()
}

func TestHeartbeatEvictsIdleClient(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "11")
	readFrame(t, conn)
	waitOnline(t, hub, 1)

	c, ok := hub.clients.Get(11)
	require.True(t, ok)
	assert.False(t, c.idle(time.Now()))

	c.lastTime.Store(time.Now().Add(-2 * readTimeout).UnixMilli())
	assert.True(t, c.idle(time.Now()))

	go c.heartbeat(10*time.Millisecond, func(dead *Client) { hub.drop(dead, errors.New("heartbeat lost")) })
	waitOnline(t, hub, 0)
	assert.True(t, c.Closed())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}
