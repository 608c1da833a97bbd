package mokjang_sdk

import (
	"encoding/json"

	"github.com/cydxin/mokjang-sdk/message"
	"github.com/rs/zerolog/log"
)

// bindWsHandlersOnMessage 将 WS 回调从 engine.go 抽出来，避免 engine.go 臃肿。
// 上行只有两种：ping 保活 / ack 批量标记通知已读
func (e *Engine) bindWsHandlersOnMessage() {
	e.WsServer.SetOnMessage(func(client *Client, msg []byte) {
		if client == nil {
			return
		}
		var up message.Upstream
		if err := json.Unmarshal(msg, &up); err != nil {
			e.sendWsReply(client.UserID, message.Reply{Type: message.WsTypeError, Message: "invalid message format"})
			return
		}
		switch up.Type {
		case message.WsTypePing:
			e.sendWsReply(client.UserID, message.Reply{Type: message.WsTypePong, PacketID: up.PacketID})
		case message.WsTypeAck:
			if err := e.NotificationService.MarkReadByIDs(client.UserID, up.IDs); err != nil {
				log.Warn().Err(err).Uint64("user_id", client.UserID).Msg("ws ack failed")
				e.sendWsReply(client.UserID, message.Reply{Type: message.WsTypeError, Message: err.Error(), PacketID: up.PacketID})
			}
		default:
			e.sendWsReply(client.UserID, message.Reply{Type: message.WsTypeError, Message: "unknown message type: " + up.Type, PacketID: up.PacketID})
		}
	})
}

func (e *Engine) sendWsReply(userID uint64, r message.Reply) {
	b, _ := json.Marshal(r)
	e.WsServer.SendToUser(userID, b)
}
