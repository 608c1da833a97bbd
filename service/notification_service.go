package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cydxin/mokjang-sdk/message"
	"github.com/cydxin/mokjang-sdk/models"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationService 统一处理小组/社区内的操作通知
// 约定：先落库(事件+投递)，再尽力通过 WS 推送；离线/新设备通过 HTTP 拉取。
// 推送到 APNs/FCM 由外部服务读取 push token 完成，这里只负责投递记录。
type NotificationService struct {
	*Service
}

func NewNotificationService(s *Service) *NotificationService {
	return &NotificationService{Service: s}
}

// PublishGroupEvent 创建一条事件，并投递给 members。
// includeActor=是否也投递给操作者。payload 建议带上 url，客户端据此跳转。
func (s *NotificationService) PublishGroupEvent(groupID, actorID uint64, eventType string, payload map[string]any, members []uint64, includeActor bool) (*models.GroupNotification, error) {
	if actorID == 0 {
		return nil, errors.New("actor_id is required")
	}
	if eventType == "" {
		return nil, errors.New("event_type is required")
	}

	var pl datatypes.JSON
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		pl = b
	}

	// 去重 + 可选排除 actor
	uniq := make(map[uint64]struct{}, len(members)+1)
	clean := make([]uint64, 0, len(members)+1)
	for _, uid := range members {
		if uid == 0 {
			continue
		}
		if !includeActor && uid == actorID {
			continue
		}
		if _, ok := uniq[uid]; ok {
			continue
		}
		uniq[uid] = struct{}{}
		clean = append(clean, uid)
	}
	if includeActor {
		if _, ok := uniq[actorID]; !ok {
			clean = append(clean, actorID)
		}
	}

	now := time.Now()
	evt := &models.GroupNotification{
		GroupID:   groupID,
		ActorID:   actorID,
		EventType: eventType,
		Payload:   pl,
		CreatedAt: now,
	}

	// 事件 + 投递同事务，确保离线拉取一定能看到。
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(evt).Error; err != nil {
			return err
		}
		if len(clean) == 0 {
			return nil
		}
		rows := make([]models.GroupNotificationDelivery, 0, len(clean))
		for _, uid := range clean {
			rows = append(rows, models.GroupNotificationDelivery{
				UserID:    uid,
				EventID:   evt.ID,
				GroupID:   groupID,
				CreatedAt: now,
			})
		}
		// OnConflict DoNothing: 避免并发/重试重复投递
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	s.pushToUsers(evt, clean)
	return evt, nil
}

// notifyBestEffort 业务主流程已成功时调用，失败只记日志
func (s *NotificationService) notifyBestEffort(groupID, actorID uint64, eventType string, payload map[string]any, members []uint64) {
	if s == nil {
		return
	}
	if _, err := s.PublishGroupEvent(groupID, actorID, eventType, payload, members, false); err != nil {
		log.Warn().Err(err).Str("event", eventType).Uint64("group_id", groupID).Msg("publish notification failed")
	}
}

func (s *NotificationService) pushToUsers(evt *models.GroupNotification, userIDs []uint64) {
	if s.WsNotifier == nil || evt == nil {
		return
	}
	msg := message.Event{
		Type:      message.WsTypeNotification,
		EventID:   evt.ID,
		GroupID:   evt.GroupID,
		ActorID:   evt.ActorID,
		EventType: evt.EventType,
		Payload:   json.RawMessage(evt.Payload),
		URL:       evt.DeepLink(),
		CreatedAt: evt.CreatedAt,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for _, uid := range userIDs {
		s.WsNotifier(uid, b)
	}
}

// NotificationDTO HTTP 返回结构，ID 为 delivery_id，用作游标。
type NotificationDTO struct {
	ID        uint64         `json:"id"`
	EventID   uint64         `json:"event_id"`
	GroupID   uint64         `json:"group_id"`
	ActorID   uint64         `json:"actor_id"`
	EventType string         `json:"event_type"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListUserNotifications 拉取用户通知（按 delivery id 倒序）
// - sinceDays: 近 N 天（默认 7）
// - cursor: 分页游标（0 表示从最新开始；否则取 id < cursor）
func (s *NotificationService) ListUserNotifications(userID uint64, sinceDays int, cursor uint64, limit int, groupID *uint64, unreadOnly bool) ([]NotificationDTO, uint64, error) {
	if err := requireActor(userID); err != nil {
		return nil, 0, err
	}
	if sinceDays <= 0 {
		sinceDays = 7
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	since := time.Now().Add(-time.Duration(sinceDays) * 24 * time.Hour)
	q := s.DB.Model(&models.GroupNotificationDelivery{}).
		Where("user_id = ? AND created_at >= ?", userID, since)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	if groupID != nil && *groupID > 0 {
		q = q.Where("group_id = ?", *groupID)
	}
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var rows []models.GroupNotificationDelivery
	if err := q.Preload("Event").Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]NotificationDTO, 0, len(rows))
	var nextCursor uint64
	for _, r := range rows {
		out = append(out, NotificationDTO{
			ID:        r.ID,
			EventID:   r.EventID,
			GroupID:   r.GroupID,
			ActorID:   r.Event.ActorID,
			EventType: r.Event.EventType,
			Payload:   r.Event.Payload,
			IsRead:    r.IsRead,
			CreatedAt: r.CreatedAt,
		})
		nextCursor = r.ID
	}
	return out, nextCursor, nil
}

// MarkReadByIDs 批量标记已读
func (s *NotificationService) MarkReadByIDs(userID uint64, ids []uint64) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return s.DB.Model(&models.GroupNotificationDelivery{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
}
