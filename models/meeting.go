package models

import (
	"time"

	"gorm.io/gorm"
)

// 聚会类型
const (
	MeetingTypeMokjang = "mokjang"
	MeetingTypeGeneral = "general"
)

// Meeting 小组聚会。
// HostID 为空表示“待认领”（需要志愿者做东），认领后写入 HostID 与 Location。
type Meeting struct {
	ID          uint64    `gorm:"primarykey"`
	GroupID     uint64    `gorm:"index:idx_group_time,priority:1;not null"`
	Title       string    `gorm:"size:200;not null"`
	MeetingTime time.Time `gorm:"index:idx_group_time,priority:2;not null"`
	Type        string    `gorm:"size:16;not null;default:mokjang"`
	HostID      *uint64   `gorm:"index"`
	Location    *string   `gorm:"size:255"`
	Memo        *string   `gorm:"type:text"`
	CreatedBy   uint64    `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Host *User `gorm:"foreignKey:HostID"`
}

func (Meeting) TableName() string { return prefix + "meeting" }

// IsHosted 是否已有人做东
func (m *Meeting) IsHosted() bool { return m != nil && m.HostID != nil }
