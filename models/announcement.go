package models

import (
	"time"

	"gorm.io/gorm"
)

// 公告类型
const (
	AnnouncementNews    = "news"
	AnnouncementMeeting = "meeting"
	AnnouncementRetreat = "retreat"
	AnnouncementPicnic  = "picnic"
)

// ValidAnnouncementType 校验公告类型
func ValidAnnouncementType(t string) bool {
	switch t {
	case AnnouncementNews, AnnouncementMeeting, AnnouncementRetreat, AnnouncementPicnic:
		return true
	}
	return false
}

// Announcement 社区公告。
// ReadCount 为冗余计数，由 AnnouncementRead 首次写入时 +1。
type Announcement struct {
	ID        uint64    `gorm:"primarykey"`
	Title     string    `gorm:"size:200;not null"`
	Content   string    `gorm:"type:text;not null"`
	Type      string    `gorm:"size:16;index;not null;default:news"`
	AuthorID  uint64    `gorm:"index;not null"`
	ReadCount uint64    `gorm:"default:0"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Author User `gorm:"foreignKey:AuthorID"`
}

func (Announcement) TableName() string { return prefix + "announcement" }

// AnnouncementRead 用户已读记录（每人每条一行）
type AnnouncementRead struct {
	ID             uint64    `gorm:"primarykey"`
	AnnouncementID uint64    `gorm:"not null;uniqueIndex:idx_announcement_user,priority:1"`
	UserID         uint64    `gorm:"not null;uniqueIndex:idx_announcement_user,priority:2;index"`
	ReadAt         time.Time `gorm:"not null"`
}

func (AnnouncementRead) TableName() string { return prefix + "announcement_read" }
