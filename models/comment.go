package models

import (
	"time"

	"gorm.io/gorm"
)

// 评论挂载对象
const (
	ParentAnnouncement = "announcement"
	ParentPrayer       = "prayer"
)

// Comment 评论表，公告与代祷共用，通过 ParentType + ParentID 区分
type Comment struct {
	ID         uint64 `gorm:"primarykey"`
	ParentType string `gorm:"size:16;not null;index:idx_comment_parent,priority:1"`
	ParentID   uint64 `gorm:"not null;index:idx_comment_parent,priority:2"`
	UserID     uint64 `gorm:"index;not null"`
	Content    string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	User User `gorm:"foreignKey:UserID"`
}

func (Comment) TableName() string { return prefix + "comment" }
