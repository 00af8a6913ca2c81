package types

const (
	FrameConnectSuccess = "CONNECT_SUCCESS"
	FrameNotification   = "NOTIFICATION"
	FramePostStatUpdate = "POST_STAT_UPDATE"
	FramePing           = "PING"
	FramePong           = "PONG"
	FrameAck            = "ACK"
)

// WsFrame 推送帧
type WsFrame struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
	MessageID string `json:"messageId,omitempty"`
}
