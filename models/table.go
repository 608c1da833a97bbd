package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	prefix = "mj_"
)

// Prefix 表前缀
const Prefix = prefix

// User 用户表
type User struct {
	ID        uint64 `gorm:"primarykey"`
	UID       string `gorm:"size:36;uniqueIndex;not null"`      // 对外用户 ID
	Username  string `gorm:"size:50;uniqueIndex;not null"`      // 用户名
	Email     string `gorm:"size:100;uniqueIndex;default:null"` // 邮箱
	FullName  string `gorm:"size:100;not null"`                 // 显示名
	Password  string `gorm:"size:255;not null"`                 // bcrypt
	AvatarURL string `gorm:"size:500"`                          // 头像
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return prefix + "user"
}

// 成员角色
const (
	RoleMember = 0
	RoleLeader = 1
)

// Group MokJang 小组
type Group struct {
	ID           uint64 `gorm:"primarykey"`
	GroupAccount string `gorm:"column:group_account;type:varchar(32);uniqueIndex;not null"` // 对外分享码
	Name         string `gorm:"size:100;not null"`
	Description  string `gorm:"size:500"`
	MeetingTime  string `gorm:"size:100"` // 例行聚会时间（展示用文本，如 "每周五 19:30"）
	Region       string `gorm:"size:100;index"`
	LeaderID     uint64 `gorm:"index;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Leader  User          `gorm:"foreignKey:LeaderID"`
	Members []GroupMember `gorm:"foreignKey:GroupID;references:ID"`
}

func (Group) TableName() string {
	return prefix + "group"
}

// GroupMember 小组成员表
type GroupMember struct {
	ID        uint64    `gorm:"primarykey"`
	GroupID   uint64    `gorm:"index:idx_group_user,unique;not null"`
	UserID    uint64    `gorm:"index:idx_group_user,unique;not null"`
	Role      uint8     `gorm:"default:0"` // 0-成员 1-组长
	JoinedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (GroupMember) TableName() string {
	return prefix + "group_member"
}

// 加入申请状态
const (
	JoinStatusPending  = "pending"
	JoinStatusApproved = "approved"
	JoinStatusRejected = "rejected"
)

// GroupJoinRequest 入组申请
type GroupJoinRequest struct {
	ID          uint64 `gorm:"primarykey"`
	UserID      uint64 `gorm:"not null;index:idx_join_user"`
	GroupID     uint64 `gorm:"not null;index:idx_join_group"`
	Status      string `gorm:"size:16;index;not null;default:pending"`
	Message     string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time

	User  User  `gorm:"foreignKey:UserID"`
	Group Group `gorm:"foreignKey:GroupID"`
}

func (GroupJoinRequest) TableName() string {
	return prefix + "group_join_request"
}

// 设备类型
const (
	DeviceIOS     = "ios"
	DeviceAndroid = "android"
	DeviceWeb     = "web"
)

// PushToken 推送 token，(user_id, token) 唯一
type PushToken struct {
	ID         uint64 `gorm:"primarykey"`
	UserID     uint64 `gorm:"not null;uniqueIndex:idx_user_token,priority:1"`
	Token      string `gorm:"size:255;not null;uniqueIndex:idx_user_token,priority:2"`
	DeviceType string `gorm:"size:16;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PushToken) TableName() string {
	return prefix + "push_token"
}
