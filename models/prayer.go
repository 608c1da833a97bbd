package models

import (
	"time"

	"gorm.io/gorm"
)

// 代祷可见范围
const (
	VisibilityPublic  = "public"
	VisibilityGroup   = "group"
	VisibilityPrivate = "private"
)

func ValidVisibility(v string) bool {
	return v == VisibilityPublic || v == VisibilityGroup || v == VisibilityPrivate
}

// PrayerRequest 代祷事项
// - public: 所有人可见
// - group: GroupID 对应小组成员可见
// - private: 仅本人
type PrayerRequest struct {
	ID         uint64  `gorm:"primarykey"`
	UserID     uint64  `gorm:"index;not null"`
	Content    string  `gorm:"type:text;not null"`
	Visibility string  `gorm:"size:16;index;not null;default:public"`
	GroupID    *uint64 `gorm:"index"`
	IsAnswered bool    `gorm:"default:false"`
	AnsweredAt *time.Time
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	User User `gorm:"foreignKey:UserID"`
}

func (PrayerRequest) TableName() string { return prefix + "prayer_request" }
