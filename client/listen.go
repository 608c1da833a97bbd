package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cydxin/mokjang-sdk/cons"
	"github.com/cydxin/mokjang-sdk/deeplink"
	"github.com/cydxin/mokjang-sdk/message"
	"github.com/cydxin/mokjang-sdk/query"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Listen 连接 WS 并消费通知，直到 ctx 结束或连接断开。
// 每个通知会失效相关缓存，并把 url 交给 deep-link 路由。
func (c *Client) Listen(ctx context.Context, wsURL string) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.Token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Debug().Str("url", wsURL).Msg("ws listener connected")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		c.handleEvent(data)
	}
}

func (c *Client) handleEvent(data []byte) {
	var head message.Reply
	if err := json.Unmarshal(data, &head); err != nil {
		log.Warn().Err(err).Msg("ws: bad event")
		return
	}
	switch head.Type {
	case message.WsTypeNotification:
	case message.WsTypeError:
		log.Warn().Str("message", head.Message).Msg("ws: server error")
		return
	default:
		return
	}
	var evt message.Event
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Warn().Err(err).Msg("ws: bad notification")
		return
	}

	for _, k := range invalidationsFor(evt.EventType, evt.GroupID) {
		c.cache.Invalidate(k)
	}

	url := evt.URL
	if url == "" && len(evt.Payload) > 0 {
		url, _ = deeplink.ParsePayload(evt.Payload)
	}
	if url != "" {
		c.links.Handle(url)
	}
}

// invalidationsFor 事件类型 -> 受影响的缓存前缀
func invalidationsFor(eventType string, groupID uint64) []query.Key {
	keys := []query.Key{notificationsRoot}
	switch {
	case eventType == cons.EventGroupJoinRequested:
		keys = append(keys, PendingRequestsKey(groupID))
	case strings.HasPrefix(eventType, "group."):
		keys = append(keys, groupsRoot)
	case strings.HasPrefix(eventType, "meeting."):
		keys = append(keys, meetingsOfGroup(groupID))
	case eventType == cons.EventAnnouncementPublished:
		keys = append(keys, announcementsRoot)
	case eventType == cons.EventCommentAdded:
		keys = append(keys, commentsRoot)
	case eventType == cons.EventPrayerAnswered:
		keys = append(keys, prayersRoot)
	}
	return keys
}

// IsAPIError 取出服务端业务错误
func IsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
