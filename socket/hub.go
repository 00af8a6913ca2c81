package socket

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/types"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var ErrOffline = errors.New("user offline")

var (
	onlineGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "film_ws_online_clients",
		Help: "Registered websocket clients",
	})

	pushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "film_ws_push_total",
			Help: "Websocket frames pushed by kind and result",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(onlineGauge)
	prometheus.MustRegister(pushTotal)
}

// Hub 在线用户注册表，user_id -> *Client
type Hub struct {
	clients cmap.ConcurrentMap[int64, *Client]
	seq     atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients: cmap.NewWithCustomShardingFunction[int64, *Client](func(key int64) uint32 {
			return uint32(key) ^ uint32(key>>32)
		}),
	}
}

// Register 登记连接，同一用户的旧连接被替换并关闭
func (h *Hub) Register(uid int64, conn *websocket.Conn) *Client {
	c := newClient(h.seq.Add(1), uid, conn)

	var old *Client
	h.clients.Upsert(uid, c, func(exist bool, prev *Client, next *Client) *Client {
		if exist {
			old = prev
		}
		return next
	})
	if old != nil {
		old.Close(websocket.CloseNormalClosure, "replaced by new connection")
	}
	onlineGauge.Set(float64(h.clients.Count()))
	log.L.Info("websocket registered", zap.Int64("user_id", uid), zap.Int64("cid", c.cid))
	return c
}

// Unregister 仅当登记的仍是该连接时移除
func (h *Hub) Unregister(c *Client) {
	h.evict(c)
	c.Close(websocket.CloseNormalClosure, "")
}

func (h *Hub) evict(c *Client) bool {
	removed := h.clients.RemoveCb(c.uid, func(_ int64, cur *Client, exists bool) bool {
		return exists && cur.cid == c.cid
	})
	if removed {
		onlineGauge.Set(float64(h.clients.Count()))
	}
	return removed
}

func (h *Hub) Online(uid int64) bool {
	return h.clients.Has(uid)
}

func (h *Hub) Count() int {
	return h.clients.Count()
}

// Send 定向推送，写失败的连接被移除
func (h *Hub) Send(uid int64, frame *types.WsFrame) error {
	c, ok := h.clients.Get(uid)
	if !ok {
		return ErrOffline
	}
	data, err := encode(frame)
	if err != nil {
		return err
	}
	if err := c.Write(data); err != nil {
		pushTotal.WithLabelValues(frame.Type, "failed").Inc()
		h.drop(c, err)
		return err
	}
	pushTotal.WithLabelValues(frame.Type, "ok").Inc()
	return nil
}

// Broadcast 推送给所有在线用户，返回成功数
func (h *Hub) Broadcast(frame *types.WsFrame) int {
	data, err := encode(frame)
	if err != nil {
		log.L.Error("broadcast encode failed", zap.String("type", frame.Type), zap.Error(err))
		return 0
	}

	sent := 0
	for _, c := range h.clients.Items() {
		if err := c.Write(data); err != nil {
			h.drop(c, err)
			continue
		}
		sent++
	}
	pushTotal.WithLabelValues(frame.Type, "ok").Add(float64(sent))
	return sent
}

func (h *Hub) drop(c *Client, cause error) {
	if h.evict(c) {
		log.L.Info("websocket evicted", zap.Int64("user_id", c.uid), zap.Error(cause))
	}
	c.Close(websocket.CloseGoingAway, "write failed")
}

// Serve 登记连接并阻塞读取，连接断开后注销
func (h *Hub) Serve(uid int64, conn *websocket.Conn) {
	c := h.Register(uid, conn)
	defer h.Unregister(c)

	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})
	go c.heartbeat(pingInterval, func(dead *Client) { h.drop(dead, errors.New("heartbeat lost")) })

	_ = h.Send(uid, &types.WsFrame{
		Type:      types.FrameConnectSuccess,
		Data:      map[string]any{"userId": uid},
		Timestamp: time.Now().UnixMilli(),
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.L.Info("websocket read failed", zap.Int64("user_id", uid), zap.Error(err))
			}
			return
		}
		c.touch()
		h.onMessage(c, msg)
	}
}

func (h *Hub) onMessage(c *Client, msg []byte) {
	if !gjson.ValidBytes(msg) {
		return
	}
	res := gjson.GetManyBytes(msg, "type", "messageId")
	switch res[0].String() {
	case types.FramePing:
		data, err := encode(&types.WsFrame{
			Type:      types.FramePong,
			Timestamp: time.Now().UnixMilli(),
			MessageID: res[1].String(),
		})
		if err != nil {
			return
		}
		if err := c.Write(data); err != nil {
			h.drop(c, err)
		}
	case types.FrameAck:
		log.L.Debug("websocket ack", zap.Int64("user_id", c.uid), zap.String("message_id", res[1].String()))
	}
}

// Reject 握手失败时以策略违规关闭
func Reject(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = conn.Close()
}

func encode(frame *types.WsFrame) ([]byte, error) {
	if frame.MessageID == "" && frame.Type != types.FramePong {
		frame.MessageID = uuid.NewString()
	}
	if frame.Timestamp == 0 {
		frame.Timestamp = time.Now().UnixMilli()
	}
	return json.Marshal(frame)
}
