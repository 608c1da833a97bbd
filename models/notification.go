package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GroupNotification 小组/社区事件，一份事件对应多条投递。
// GroupID 为 0 表示社区级事件（公告发布、评论提醒）。
type GroupNotification struct {
	ID        uint64         `gorm:"primarykey"`
	GroupID   uint64         `gorm:"index;not null"`
	ActorID   uint64         `gorm:"index;not null"`
	EventType string         `gorm:"size:64;index;not null"`
	Payload   datatypes.JSON `gorm:"type:json"` // 约定带 url，客户端据此跳转
	CreatedAt time.Time      `gorm:"index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (GroupNotification) TableName() string { return prefix + "group_notification" }

// DeepLink payload 里的 url，没有时返回空串
func (n *GroupNotification) DeepLink() string {
	if n == nil || len(n.Payload) == 0 {
		return ""
	}
	var p struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(n.Payload, &p) != nil {
		return ""
	}
	return p.URL
}

// GroupNotificationDelivery 每个收件人一行。
// (user_id, event_id) 唯一，重复投递被忽略；(user_id, group_id) 支撑按小组过滤。
type GroupNotificationDelivery struct {
	ID        uint64 `gorm:"primarykey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_delivery_user_event;index:idx_delivery_user_created,priority:1;index:idx_delivery_user_group,priority:1"`
	EventID   uint64 `gorm:"not null;uniqueIndex:idx_delivery_user_event"`
	GroupID   uint64 `gorm:"not null;index:idx_delivery_user_group,priority:2"`
	IsRead    bool   `gorm:"not null;default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time      `gorm:"index:idx_delivery_user_created,priority:2"`
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Event GroupNotification `gorm:"foreignKey:EventID"`
}

func (GroupNotificationDelivery) TableName() string { return prefix + "group_notification_delivery" }
