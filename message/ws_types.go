package message

import (
	"encoding/json"
	"time"
)

// WS 消息类型
const (
	WsTypeNotification = "notification" // 下行：小组/社区通知
	WsTypeError        = "error"        // 下行：上行消息处理失败
	WsTypePing         = "ping"         // 上行：保活
	WsTypePong         = "pong"         // 下行：保活回应
	WsTypeAck          = "ack"          // 上行：批量标记通知已读
)

// Upstream 客户端上行消息
type Upstream struct {
	Type     string   `json:"type"`                // ping / ack
	IDs      []uint64 `json:"ids,omitempty"`       // ack: delivery id 列表
	PacketID string   `json:"packet_id,omitempty"` // 可选：客户端匹配回应
}

// Event 下行通知，payload 原样透传；url 为 payload 里的 deep link
type Event struct {
	Type      string          `json:"type"`
	EventID   uint64          `json:"event_id"`
	GroupID   uint64          `json:"group_id"`
	ActorID   uint64          `json:"actor_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	URL       string          `json:"url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Reply 下行 pong / error
type Reply struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	PacketID string `json:"packet_id,omitempty"`
}
